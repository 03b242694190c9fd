/*
 * scan.go, part of interaph.
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

package interact

import (
	"sync"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
	"gonum.org/v1/gonum/floats"
)

// frameEval evaluates one frame and returns one value per record. It must
// be safe to call concurrently on different frames.
type frameEval func(coords *v3.Matrix) []float64

// scanFrames reads traj to the end, calling eval on each frame, and returns the
// element-wise sum of the results and the number of frames read. If workers > 1 and
// traj can be read concurrently, batches of workers frames are evaluated in parallel.
func scanFrames(traj chem.Traj, workers, n int, eval frameEval) ([]float64, int, error) {
	if ct, ok := traj.(chem.ConcTraj); ok && workers > 1 {
		sums, frames, err := scanConc(ct, workers, n, eval)
		return sums, frames, errDecorate(err, "scanFrames")
	}
	sums := make([]float64, n)
	coords := v3.Zeros(traj.Len())
	frames := 0
reading:
	for {
		err := traj.Next(coords)
		if err != nil {
			switch err.(type) {
			case chem.LastFrameError:
				break reading
			default:
				return nil, frames, dataError(err, "scanFrames")
			}
		}
		floats.Add(sums, eval(coords))
		frames++
	}
	return sums, frames, nil
}

// scanConc is the concurrent version of scanFrames. Frames come from
// NextConc, and each is evaluated in its own goroutine.
func scanConc(traj chem.ConcTraj, workers, n int, eval frameEval) ([]float64, int, error) {
	sums := make([]float64, n)
	frames := make([]*v3.Matrix, workers)
	for i := range frames {
		frames[i] = v3.Zeros(traj.Len())
	}
	total := 0
	results := make([][]float64, workers)
	for {
		chans, err := traj.NextConc(frames)
		if err != nil && chans == nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			return nil, total, dataError(err, "scanConc")
		}
		var wg sync.WaitGroup
		for k, c := range chans {
			results[k] = nil
			if c == nil {
				continue
			}
			wg.Add(1)
			go func(k int, c chan *v3.Matrix) {
				defer wg.Done()
				results[k] = eval(<-c)
			}(k, c)
		}
		wg.Wait()
		for _, r := range results[:len(chans)] {
			if r != nil {
				floats.Add(sums, r)
				total++
			}
		}
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			return nil, total, dataError(err, "scanConc")
		}
	}
	return sums, total, nil
}

// checkSize returns a DataError if the trajectory and the topology don't have
// the same number of atoms.
func checkSize(top chem.Atomer, traj chem.Traj, caller string) error {
	if err := chem.Corrupted(top, traj); err != nil {
		return newError(DataError, err, caller, "%v", err)
	}
	return nil
}
