/*
 * dcd.go, part of interaph.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

// Package dcd reads and writes CHARMM/NAMD binary trajectories, plain or compressed.
package dcd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
)

const mAXTITLE int32 = 80

// DCDObj is a container for an Charmm/NAMD binary trajectory file.
type DCDObj struct {
	natoms     int32
	buffSize   int
	readLast   bool //Have we read the last frame?
	readable   bool //Is it ready to be read?
	filename   string
	charmm     bool //Charmm traj?
	extrablock bool
	fourdim    bool
	fixed      int32 //Fixed atoms (not supported)
	fhandle    *os.File
	source     io.ReadCloser
	dcd        io.Reader //The DCD data, possibly decompressed
	dcdFields  [][]float32
	concBuffer [][][]float32
	endian     binary.ByteOrder
}

// New opens the DCD file filename for reading. The compression, if any,
// is deduced from the file extension (see prepSource).
func New(filename string) (*DCDObj, error) {
	traj := new(DCDObj)
	if err := traj.initRead(filename); err != nil {
		traj.Close()
		return nil, errDecorate(err, "New")
	}
	traj.dcdFields = newFields(int(traj.natoms))
	traj.concBuffer = append(traj.concBuffer, traj.dcdFields)
	traj.buffSize = 1
	return traj, nil

}

func newFields(natoms int) [][]float32 {
	return [][]float32{make([]float32, natoms), make([]float32, natoms), make([]float32, natoms)}
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Close closes the underlying file. The object is not readable afterwards.
func (D *DCDObj) Close() {
	D.readable = false
	if D.source != nil {
		D.source.Close()
	}
	if D.fhandle != nil {
		D.fhandle.Close()
	}
}

// initRead initializes a DCDObj for reading.
// It requires only the filename, which must be valid.
// It support big and little endianness, charmm or (namd>=2.1) and no
// fixed atoms.
func (D *DCDObj) initRead(name string) error {
	D.endian = binary.LittleEndian
	NB := bytes.NewBuffer //shortness sake
	var err error
	D.source, err = D.prepSource(name, "")
	if err != nil {
		return errDecorate(err, "initRead")
	}
	D.dcd = D.source
	rerr := func(err error) error {
		return Error{err.Error(), D.filename, []string{"binary.Read", "initRead"}, true}
	}
	var check int32
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return rerr(err)
	}
	//The first thing we should read is an 84.
	//If this fails it means that the file is big endian.
	if check != 84 {
		D.endian = binary.BigEndian
	}
	//Then the magic number "CORD"
	magic := make([]byte, 4)
	if err := binary.Read(D.dcd, D.endian, magic); err != nil {
		return rerr(err)
	}
	if string(magic) != "CORD" {
		return Error{WrongFormat + ": wrong magic number", D.filename, []string{"initRead"}, true}
	}

	//We first read a big chuck for random access.
	buf := make([]byte, 80)
	if err := binary.Read(D.dcd, D.endian, buf); err != nil {
		return rerr(err)
	}
	//X-plor sets this last int to zero, charmm sets it to its version number.
	//if we have a charmm file we get some additional flags.
	if err := binary.Read(NB(buf[76:]), D.endian, &check); err != nil {
		return rerr(err)
	}
	if check == 0 {
		return Error{"X-plor DCD not supported", D.filename, []string{"initRead"}, true}
	}
	D.charmm = true
	if err := binary.Read(NB(buf[40:]), D.endian, &check); err != nil {
		return rerr(err)
	}
	if check != 0 {
		D.extrablock = true
	}
	if err := binary.Read(NB(buf[44:]), D.endian, &check); err != nil {
		return rerr(err)
	}
	if check == 1 {
		D.fourdim = true
	}
	if err := binary.Read(NB(buf[32:]), D.endian, &D.fixed); err != nil {
		return rerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return rerr(err)
	}
	if check != 84 {
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	var titlesize int32
	if err := binary.Read(D.dcd, D.endian, &titlesize); err != nil {
		return rerr(err)
	}
	//how many units of mAXTITLE does the title have?
	var ntitle int32
	if err := binary.Read(D.dcd, D.endian, &ntitle); err != nil {
		return rerr(err)
	}
	if ntitle < 0 || ntitle*mAXTITLE+4 != titlesize {
		return Error{WrongFormat + ": bad title block", D.filename, []string{"initRead"}, true}
	}
	title := make([]byte, mAXTITLE*ntitle)
	if err := binary.Read(D.dcd, D.endian, title); err != nil {
		return rerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return rerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return rerr(err)
	}
	if check != 4 { //one must read a 4 before the natoms
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &D.natoms); err != nil {
		return rerr(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return rerr(err)
	}
	if check != 4 { //and one more 4
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	if D.fixed != 0 {
		return Error{"Fixed atoms not supported", D.filename, []string{"initRead"}, true}
	}
	D.readable = true
	return nil
}

// Next Reads the next frame in a DCDObj that has been initialized for read
// With initread. If keep is not nil, the coordinates read are placed in it,
// otherwise they are discarded.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	if err := D.nextRaw(D.dcdFields); err != nil {
		return errDecorate(err, "Next")
	}
	if keep == nil {
		return nil
	}
	if r := keep.NVecs(); int32(r) < D.natoms {
		panic("Not enough space in matrix")
	}
	fields2matrix(D.dcdFields, keep)
	return nil
}

func fields2matrix(fields [][]float32, keep *v3.Matrix) {
	for i := range fields[0] {
		keep.Set(i, 0, float64(fields[0][i]))
		keep.Set(i, 1, float64(fields[1][i]))
		keep.Set(i, 2, float64(fields[2][i]))
	}
}

// nextRaw reads the next frame into blocks, one slice of float32 per
// cartesian coordinate.
func (D *DCDObj) nextRaw(blocks [][]float32) error {
	if len(blocks[0]) != int(D.natoms) || len(blocks[1]) != int(D.natoms) || len(blocks[2]) != int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"nextRaw"}, true}
	}
	if D.readLast {
		D.readable = false
		return newlastFrameError(D.filename, "nextRaw")
	}
	//if there is an extra block we just skip it.
	//Even when there is an extra block, it is not present in all
	//snapshots for some trajectories, so we must use the block size to see if
	//there is an extra block or if the X block starts inmediately
	var blocksize int32
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		//A clean end of file before a new frame is the normal termination.
		if errors.Is(err, io.EOF) {
			D.readable = false
			return newlastFrameError(D.filename, "nextRaw")
		}
		return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
	}
	if D.extrablock && blocksize != D.natoms*4 {
		if err := D.skipBlock(blocksize); err != nil {
			return errDecorate(err, "nextRaw")
		}
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
		}
	}
	for i := 0; i < 3; i++ {
		if i > 0 {
			if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
				return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
			}
		}
		if err := D.readFloat32Block(blocksize, blocks[i]); err != nil {
			return errDecorate(err, "nextRaw")
		}
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so we use an EOF here to signal that we have read the last snapshot.
	if D.charmm && D.fourdim {
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			if errors.Is(err, io.EOF) {
				D.readLast = true
				return nil
			}
			return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
		}
		if err := D.skipBlock(blocksize); err != nil {
			return errDecorate(err, "nextRaw")
		}
	}
	return nil

}

// reads the contents of a block, which must have the
// appropiate size, and checks the size given after it.
func (D *DCDObj) readFloat32Block(blocksize int32, block []float32) error {
	var check int32
	if blocksize != int32(len(block))*4 {
		return Error{fmt.Sprintf("%s: block of %d bytes for %d atoms", WrongFormat, blocksize, len(block)), D.filename, []string{"readFloat32Block"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, block); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", "readFloat32Block"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", "readFloat32Block"}, true}
	}
	if check != blocksize {
		return Error{WrongFormat, D.filename, []string{"readFloat32Block"}, true}
	}
	return nil
}

// skipBlock discards blocksize bytes plus the closing size.
func (D *DCDObj) skipBlock(blocksize int32) error {
	var check int32
	if blocksize < 0 {
		return Error{SecurityCheckFailed, D.filename, []string{"skipBlock"}, true}
	}
	if _, err := io.CopyN(io.Discard, D.dcd, int64(blocksize)); err != nil {
		return Error{err.Error(), D.filename, []string{"io.CopyN", "skipBlock"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", "skipBlock"}, true}
	}
	if check != blocksize {
		return Error{SecurityCheckFailed, D.filename, []string{"skipBlock"}, true}
	}
	return nil
}

// Len returns the number of atoms per frame in the DCDObj.
// DCDObj must be initialized. 0 means an uninitialized object.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

func (D *DCDObj) setConcBuffer(batchsize int) {
	for i := D.buffSize; i < batchsize; i++ {
		D.concBuffer = append(D.concBuffer, newFields(D.Len()))
	}
	if batchsize > D.buffSize {
		D.buffSize = batchsize
	}
}

/*NextConc takes a slice of matrices and reads as many frames as elements the list has
form the trajectory. The frames are discarted if the corresponding element of the slice
is nil. The function returns a slice of channels through each of each of which
a *v3.Matrix will be transmited. If the trajectory ends before all the frames are read
the channels for the frames read are returned along with a LastFrameError*/
func (D *DCDObj) NextConc(frames []*v3.Matrix) ([]chan *v3.Matrix, error) {
	if !D.Readable() {
		return nil, Error{TrajUnIni, D.filename, []string{"NextConc"}, true}
	}
	framechans := make([]chan *v3.Matrix, 0, len(frames)) //the slice of chans that will be returned
	D.setConcBuffer(len(frames))
	for key := range frames {
		DFields := D.concBuffer[key]
		if err := D.nextRaw(DFields); err != nil {
			if _, ok := err.(chem.LastFrameError); ok && len(framechans) > 0 {
				return framechans, err
			}
			return nil, errDecorate(err, "NextConc")
		}
		if frames[key] == nil {
			framechans = append(framechans, nil) //ignored frame
			continue
		}
		pipe := make(chan *v3.Matrix)
		framechans = append(framechans, pipe)
		//Now the parallel part
		go func(DFields [][]float32, keep *v3.Matrix, pipe chan *v3.Matrix) {
			fields2matrix(DFields, keep)
			pipe <- keep
		}(DFields, frames[key], pipe)
	}
	return framechans, nil
}
