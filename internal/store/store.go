/*
 * store.go, part of interaph.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package store archives the reports of analysis runs in a SQLite database,
// so runs over different trajectories or options can be compared later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rmera/interaph/interact"

	_ "modernc.org/sqlite"
)

// Kinds of run.
const (
	KindHC  = "hc"
	KindSB  = "sb"
	KindHB  = "hb"
	KindKBP = "kbp"
)

// Run is one archived analysis.
type Run struct {
	ID      string
	Kind    string
	Created time.Time
	Frames  int
	Params  map[string]string
}

type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func New(path string) *Store {
	return &Store{path: path}
}

// Init opens the database, creating the tables if needed. Calling it again is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("store: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created TEXT NOT NULL,
			frames INTEGER NOT NULL,
			params TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id1 TEXT NOT NULL,
			id2 TEXT NOT NULL,
			res1 INTEGER NOT NULL,
			res2 INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, id1, id2)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("store: not initialized")
	}
	return s.db, nil
}

// SaveRun archives the lines of rep as a run of the given kind, and returns
// the identifier of the new run.
func (s *Store) SaveRun(ctx context.Context, kind string, params map[string]string, frames int, rep interact.Report) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	if params == nil {
		params = map[string]string{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("store: encode params: %w", err)
	}
	id := uuid.NewString()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (id, kind, created, frames, params) VALUES (?, ?, ?, ?, ?)`,
		id, kind, time.Now().UTC().Format(time.RFC3339Nano), frames, string(payload))
	if err != nil {
		return "", err
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO interactions (run_id, id1, id2, res1, res2, value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer ins.Close()
	for _, l := range rep.Lines {
		if _, err := ins.ExecContext(ctx, id, l.ID1, l.ID2, l.I, l.J, l.Value); err != nil {
			return "", fmt.Errorf("store: pair %s %s: %w", l.ID1, l.ID2, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Runs returns the archived runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, kind, created, frames, params FROM runs ORDER BY created, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []Run
	for rows.Next() {
		var r Run
		var created, params string
		if err := rows.Scan(&r.ID, &r.Kind, &created, &r.Frames, &params); err != nil {
			return nil, err
		}
		if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("store: run %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("store: decode params of run %s: %w", r.ID, err)
		}
		ret = append(ret, r)
	}
	return ret, rows.Err()
}

// Run returns the run with identifier id, and false if there is none.
func (s *Store) Run(ctx context.Context, id string) (Run, bool, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return Run{}, false, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r, true, nil
		}
	}
	return Run{}, false, nil
}

// Interactions returns the archived report of the run id, in report order.
func (s *Store) Interactions(ctx context.Context, id string) (interact.Report, error) {
	db, err := s.getDB()
	if err != nil {
		return interact.Report{}, err
	}
	var kind string
	err = db.QueryRowContext(ctx, `SELECT kind FROM runs WHERE id = ?`, id).Scan(&kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interact.Report{}, fmt.Errorf("store: no run %s", id)
		}
		return interact.Report{}, err
	}
	rep := interact.Report{Precision: 1}
	if kind == KindKBP {
		rep.Precision = 3
	}
	rows, err := db.QueryContext(ctx, `SELECT id1, id2, res1, res2, value FROM interactions WHERE run_id = ? ORDER BY value DESC, id1, id2`, id)
	if err != nil {
		return interact.Report{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l interact.Line
		if err := rows.Scan(&l.ID1, &l.ID2, &l.I, &l.J, &l.Value); err != nil {
			return interact.Report{}, err
		}
		rep.Lines = append(rep.Lines, l)
	}
	return rep, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
