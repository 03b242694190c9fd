/*
 * histo.go, part of interaph.
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

// Package histo collects distance distributions, one histogram per
// interacting pair, and writes them as JSON.
package histo

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Dividers returns n+1 evenly spaced dividers between min and max,
// defining n bins.
func Dividers(min, max float64, n int) []float64 {
	if n < 1 || max <= min {
		panic(fmt.Sprintf("interaph/histo.Dividers: can't make %d bins between %f and %f", n, min, max))
	}
	return floats.Span(make([]float64, n+1), min, max)
}

// Data is a histogram of the distances observed for one pair.
type Data struct {
	label      string
	normalized bool
	total      int //points inside the dividers
	outside    int //points outside
	sum        float64
	dividers   []float64
	histo      []float64
}

type jsonData struct {
	Label      string    `json:"label"`
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Outside    int       `json:"outside"`
	Mean       float64   `json:"mean"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	var mean float64 //JSON has no NaN
	if D.total > 0 {
		mean = D.Mean()
	}
	return json.Marshal(jsonData{
		Label:      D.label,
		Normalized: D.normalized,
		Total:      D.total,
		Outside:    D.outside,
		Mean:       mean,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("interaph/histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.label = a.Label
	D.normalized = a.Normalized
	D.total = a.Total
	D.outside = a.Outside
	D.sum = a.Mean * float64(a.Total)
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

// Label returns the label of the histogram, normally the pair it belongs to.
func (D *Data) Label() string {
	return D.label
}

// String gives a 3-line representation of the histogram.
func (D *Data) String() string {
	ret := fmt.Sprintf("%s, Normalized: %v, TotalData: %d\n", D.label, D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

// NewData returns a new histogram from the dividers and rawdata given.
// rawdata can be nil, in which case an empty histogram is created.
func NewData(label string, dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("interaph/histo.NewData: dividers must be at least 2 and sorted")
	}
	d := &Data{label: label}
	d.dividers = make([]float64, len(dividers))
	copy(d.dividers, dividers)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	return d
}

// AddData adds the given data point(s) to the histogram. Points
// outside the dividers are counted separately.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	last := len(D.dividers) - 1
	for _, v := range point {
		if v < D.dividers[0] || v >= D.dividers[last] {
			D.outside++
			continue
		}
		//first divider larger than v, minus one, is the bin.
		j := sort.SearchFloat64s(D.dividers, v)
		if j == len(D.dividers) || D.dividers[j] > v {
			j--
		}
		D.histo[j]++
		D.total++
		D.sum += v
	}
	if norma {
		D.Normalize()
	}
}

// Total returns the number of points inside the histogram range.
func (D *Data) Total() int {
	return D.total
}

// Outside returns the number of points that fell outside the histogram range.
func (D *Data) Outside() int {
	return D.outside
}

// Mean returns the mean of the points inside the histogram range, or NaN
// for an empty histogram.
func (D *Data) Mean() float64 {
	if D.total == 0 {
		return math.NaN()
	}
	return D.sum / float64(D.total)
}

// Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize normalizes the histogram so its bins add up to 1.
func (D *Data) Normalize() {
	if D.total <= 0 || D.normalized {
		return
	}
	floats.Scale(1/float64(D.total), D.histo)
	D.normalized = true
}

// UnNormalize turns the bins back into counts.
func (D *Data) UnNormalize() {
	if D.total <= 0 || !D.normalized {
		return
	}
	floats.Scale(float64(D.total), D.histo)
	D.normalized = false
}

// View returns the bins themselves, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// ReHisto rebuilds the histogram from rawdata, which is sorted in place.
func (D *Data) ReHisto(rawdata []float64) {
	sort.Float64s(rawdata)
	//stat.Histogram panics with values out of the range
	//so we remove them before the call.
	maxi := sort.SearchFloat64s(rawdata, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, D.dividers[0])
	inside := rawdata[mini:maxi]
	D.outside = len(rawdata) - len(inside)
	D.total = len(inside)
	D.sum = floats.Sum(inside)
	D.normalized = false
	D.histo = stat.Histogram(nil, D.dividers, inside, nil)
}

// Set holds one histogram per pair, all with the same dividers.
// It is safe for concurrent use.
type Set struct {
	dividers []float64
	mu       sync.Mutex
	d        map[string]*Data
}

// NewSet returns an empty set whose histograms will use dividers.
func NewSet(dividers []float64) *Set {
	return &Set{dividers: append([]float64(nil), dividers...), d: make(map[string]*Data)}
}

// Add adds the points to the histogram of the pair label, creating it if needed.
func (S *Set) Add(label string, point ...float64) {
	S.mu.Lock()
	defer S.mu.Unlock()
	h, ok := S.d[label]
	if !ok {
		h = NewData(label, S.dividers, nil)
		S.d[label] = h
	}
	h.AddData(point...)
}

// View returns the histogram for label, or nil.
func (S *Set) View(label string) *Data {
	S.mu.Lock()
	defer S.mu.Unlock()
	return S.d[label]
}

// Labels returns the labels in the set, sorted.
func (S *Set) Labels() []string {
	S.mu.Lock()
	defer S.mu.Unlock()
	ret := make([]string, 0, len(S.d))
	for k := range S.d {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Len is the number of histograms in the set.
func (S *Set) Len() int {
	S.mu.Lock()
	defer S.mu.Unlock()
	return len(S.d)
}

// NormalizeAll normalizes every histogram in the set.
func (S *Set) NormalizeAll() {
	S.mu.Lock()
	defer S.mu.Unlock()
	for _, v := range S.d {
		v.Normalize()
	}
}

func (S *Set) MarshalJSON() ([]byte, error) {
	labels := S.Labels()
	S.mu.Lock()
	defer S.mu.Unlock()
	d := make([]*Data, 0, len(labels))
	for _, l := range labels {
		d = append(d, S.d[l])
	}
	return json.Marshal(struct {
		Dividers []float64 `json:"dividers"`
		D        []*Data   `json:"data"`
	}{S.dividers, d})
}

func (S *Set) UnmarshalJSON(b []byte) error {
	var a struct {
		Dividers []float64 `json:"dividers"`
		D        []*Data   `json:"data"`
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	S.mu.Lock()
	defer S.mu.Unlock()
	S.dividers = a.Dividers
	S.d = make(map[string]*Data, len(a.D))
	for _, v := range a.D {
		if !floats.Equal(v.dividers, S.dividers) {
			return fmt.Errorf("interaph/histo: histogram %s doesn't have the set's dividers", v.label)
		}
		S.d[v.label] = v
	}
	return nil
}

// WriteJSON writes the set to w as indented JSON.
func (S *Set) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(S)
}
