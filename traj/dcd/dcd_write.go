/*
 * dcd_write.go, part of interaph.
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

package dcd

import (
	"encoding/binary"
	"io"
	"os"

	v3 "github.com/rmera/interaph/v3"
)

// DCDWObj is a container for an Charmm/NAMD binary trajectory file
// opened for writing
type DCDWObj struct {
	natoms    int32
	writable  bool //Is it ready to be written on
	filename  string
	frames    int32
	dcd       *os.File //The DCD file
	dcdFields [][]float32
	endian    binary.ByteOrder
}

// NewWriter initializes a DCD trajectory for writing. DCD requires the number of
// frames in the header, so the file needs to be seekable and is never compressed.
func NewWriter(filename string, natoms int) (*DCDWObj, error) {
	traj := new(DCDWObj)
	traj.natoms = int32(natoms)
	if err := traj.initWrite(filename); err != nil {
		return nil, errDecorate(err, "NewWriter")
	}
	return traj, nil

}

// Close closes the file. The object can't be written to afterwards.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	if err := D.dcd.Close(); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Close", "Close"}, true}
	}
	return nil
}

// initWrite creates the file and writes a CHARMM header for it, with no
// frames, no unit cell, no extra blocks and no fixed atoms.
func (D *DCDWObj) initWrite(name string) error {
	D.filename = name
	if D.natoms <= 0 {
		return Error{"Trajectory not initialized correctly, the number of atoms is set to zero!", D.filename, []string{"initWrite"}, true}
	}
	D.endian = binary.LittleEndian
	var err error
	D.dcd, err = os.Create(name)
	if err != nil {
		return Error{err.Error(), D.filename, []string{"os.Create", "initWrite"}, true}
	}
	//the 20 ints after the magic number: frames (updated after each write), initial time,
	//step interval, 6 zeros (the last one is the number of fixed atoms), delta time (a float, 1.0),
	//unit cell flag, 4-dim flag, 7 zeros and the charmm version.
	var control [20]int32
	control[2] = 1
	control[9] = int32(0x3f800000) //1.0 as a float32
	control[19] = 24
	title := make([]byte, 2*mAXTITLE)
	copy(title, "interaph DCD")
	fields := []any{
		int32(84), []byte("CORD"), control, int32(84),
		int32(2*mAXTITLE + 4), int32(2), title, int32(2*mAXTITLE + 4),
		int32(4), D.natoms, int32(4),
	}
	for _, v := range fields {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			D.dcd.Close()
			return Error{err.Error(), D.filename, []string{"binary.Write", "initWrite"}, true}
		}
	}
	D.writable = true
	return nil
}

// WNext writes the next frame to the trajectory.
// the box isn't actually used, so far. It's only there for compatibility.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return Error{"got nil coordinates", D.filename, []string{"WNext"}, true}

	}
	if int32(towrite.NVecs()) != D.natoms {
		return Error{"Coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	if D.dcdFields == nil {
		D.dcdFields = newFields(int(D.natoms))
	}
	for i := 0; i < int(D.natoms); i++ {
		D.dcdFields[0][i] = float32(towrite.At(i, 0))
		D.dcdFields[1][i] = float32(towrite.At(i, 1))
		D.dcdFields[2][i] = float32(towrite.At(i, 2))
	}
	if err := D.wnextRaw(D.dcdFields); err != nil {
		return errDecorate(err, "WNext")
	}
	D.frames++
	return errDecorate(D.updateFrames(), "WNext")
}

// wnextRaw writes the X, Y and Z blocks for one frame.
func (D *DCDWObj) wnextRaw(blocks [][]float32) error {
	for _, b := range blocks {
		if len(b) != int(D.natoms) {
			return Error{NotEnoughSpace, D.filename, []string{"wnextRaw"}, true}
		}
		if err := D.writeFloat32Block(b); err != nil {
			return errDecorate(err, "wnextRaw")
		}
	}
	return nil
}

// Writes a block of float32s to the file, bracketed by its size
func (D *DCDWObj) writeFloat32Block(block []float32) error {
	var blocksize int32 = int32(len(block)) * 4
	for _, v := range []any{blocksize, block, blocksize} {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "writeFloat32Block"}, true}
		}
	}
	return nil
}

// DCD requires the number of frames at the begining.
func (D *DCDWObj) updateFrames() error {
	currentoffset, err := D.dcd.Seek(0, io.SeekCurrent) //we'll need it to go back
	if err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	//the frame count goes right after the 84 and the magic number.
	if _, err = D.dcd.Seek(8, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	if err := binary.Write(D.dcd, D.endian, D.frames); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Write", "updateFrames"}, true}
	}
	if _, err = D.dcd.Seek(currentoffset, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	return nil

}
