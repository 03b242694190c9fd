/*
 * main.go, part of interaph.
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

// interaph computes interaction networks from molecular dynamics trajectories:
// hydrophobic contacts, salt bridges, hydrogen bonds and a statistical potential.
//
// Usage:
//
//	interaph -s top.pdb -t traj.dcd [-f] [-b] [-y] [-p] [options]
//	interaph sparse -in table.txt -out ff.bin64
//	interaph runs -db runs.db [-run ID]
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("interaph: ")
	args := os.Args[1:]
	var err error
	if len(args) > 0 {
		switch args[0] {
		case "sparse":
			err = sparseCmd(args[1:], os.Stdout)
		case "runs":
			err = runsCmd(args[1:], os.Stdout)
		default:
			err = analyze(args, os.Stderr)
		}
	} else {
		err = analyze(args, os.Stderr)
	}
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// splitNames splits a comma-separated list.
func splitNames(s string) []string {
	var ret []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, strings.ToUpper(v))
		}
	}
	return ret
}

// verboseLogger returns a logger that writes to w if verbose is true, and discards
// everything otherwise.
func verboseLogger(verbose bool, w io.Writer) *log.Logger {
	if !verbose {
		w = io.Discard
	}
	return log.New(w, "interaph: ", 0)
}

func usage(fs *flag.FlagSet, text string) {
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), text)
		fs.PrintDefaults()
	}
}
