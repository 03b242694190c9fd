/*
 * tools.go, part of interaph.
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

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rmera/interaph/interact"
	"github.com/rmera/interaph/internal/store"
)

// sparseCmd converts a statistical potential between its text and binary forms.
func sparseCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sparse", flag.ContinueOnError)
	usage(fs, "Usage: interaph sparse -in table.txt -out ff.bin64 [-reverse]")
	in := fs.String("in", "", "input file")
	out := fs.String("out", "", "output file")
	reverse := fs.Bool("reverse", false, "convert a binary potential to text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("sparse: -in and -out are required")
	}
	var T *interact.SparseTable
	var err error
	if *reverse {
		T, err = interact.SparseFile(*in)
	} else {
		var f *os.File
		if f, err = os.Open(*in); err != nil {
			return err
		}
		T, err = interact.ReadSparseText(bufio.NewReader(f))
		f.Close()
	}
	if err != nil {
		return err
	}
	write := interact.WriteSparse
	if *reverse {
		write = interact.WriteSparseText
	}
	if err := create(*out, func(w io.Writer) error { return write(w, T) }); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d residue type pairs written to %s\n", T.Len(), *out)
	return nil
}

// runsCmd lists the archived runs, or prints the report of one of them.
func runsCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	usage(fs, "Usage: interaph runs -db runs.db [-run ID]")
	db := fs.String("db", "", "SQLite database")
	id := fs.String("run", "", "print the report of this run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *db == "" {
		return errors.New("runs: -db is required")
	}
	ctx := context.Background()
	st := store.New(*db)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()
	if *id != "" {
		rep, err := st.Interactions(ctx, *id)
		if err != nil {
			return err
		}
		return interact.WriteReport(stdout, rep)
	}
	runs, err := st.Runs(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s %-3s %s frames=%d %v\n", r.ID, r.Kind, r.Created.Local().Format(time.DateTime), r.Frames, r.Params)
	}
	return nil
}
