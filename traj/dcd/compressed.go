/*
 * compressed.go, part of interaph.
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

package dcd

import (
	"bufio"
	"compress/lzw"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

// zstdReadCloser adapts the zstd decoder, whose Close doesn't return an error.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// prepSource takes a filename and format string, opens the file and returns an object that will
// read data from the file, either 'as is' or decompressing first, depending on the format string.
// If the format string is empty, it will try to deduce it form the file extension. File extensions supported are
// .dcd (non-compressed dcd), .gz (gzip), .zst (zstd) and .lzw. If the extension doesn't
// match any supported type, a message will be logged and the non-compressed dcd format will be assumed.
// thus, prepSource only returns an error if the file can't be opened or the compressed stream
// can't be set up.
func (D *DCDObj) prepSource(fname string, format string) (io.ReadCloser, error) {
	var err error
	var fk string
	if format == "" {
		temp := strings.Split(fname, ".")
		fk = strings.ToLower(temp[len(temp)-1])
	} else {
		fk = format
	}
	D.filename = fname
	D.fhandle, err = os.Open(fname)
	if err != nil {
		return nil, Error{err.Error(), D.filename, []string{"os.Open", "prepSource"}, true}
	}
	reader := bufio.NewReader(D.fhandle)

	switch fk {
	case "dcd":
		return struct {
			io.Reader
			io.Closer
		}{reader, D.fhandle}, nil
	case "lzw":
		return lzw.NewReader(reader, lzwOrder, lzwLitwidth), nil
	case "gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, Error{err.Error(), D.filename, []string{"gzip.NewReader", "prepSource"}, true}
		}
		return gz, nil
	case "zst":
		zs, err := zstd.NewReader(reader)
		if err != nil {
			return nil, Error{err.Error(), D.filename, []string{"zstd.NewReader", "prepSource"}, true}
		}
		return zstdReadCloser{zs}, nil
	default:
		//if it's not a plain DCD, you'll get an error later.
		log.Printf("Format string %s not supported. %s will be assumed to be a plain DCD file", fk, D.filename)
		return struct {
			io.Reader
			io.Closer
		}{reader, D.fhandle}, nil
	}
}
