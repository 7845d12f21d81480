package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Data is a histogram. It also keeps the raw data added, so the mean and
//standard deviation of the data can be obtained.
type Data struct {
	id         int
	normalized bool
	total      int
	above      int //points beyond the last divider
	dividers   []float64
	histo      []float64
	raw        []float64
}

//UniformDividers returns n+1 dividers for n bins of equal width between min and max.
func UniformDividers(min, max float64, n int) []float64 {
	if n < 1 || !(max > min) {
		panic(fmt.Sprintf("goLattice/histo.UniformDividers: can't make %d bins between %g and %g", n, min, max))
	}
	return floats.Span(make([]float64, n+1), min, max)
}

//NewData returns a new histogram from the dividers and rawdata given.
//rawdata can be nil. In that case, an empty histogram is created.
//If an ID for the histogram is given, it will be set. If not, the ID will
//be set to -1. There must be at least 2 dividers, in increasing order.
func NewData(dividers []float64, rawdata []float64, ID ...int) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("goLattice/histo.NewData: at least 2 dividers, in increasing order, are needed")
	}
	d := new(Data)
	//I prefer to copy the slice to avoid somebody changing it from outside
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	d.id = -1
	if len(ID) > 0 {
		d.id = ID[0]
	}
	d.AddData(rawdata...)
	return d
}

//ID returns the ID of the histogram
func (D *Data) ID() int {
	return D.id
}

//AddData adds the given data point(s) to the histogram.
//Values that are below the first divider or not below the last one are counted
//in the total, and for the statistics, but not in any bin.
func (D *Data) AddData(point ...float64) {
	if len(point) == 0 {
		return
	}
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	last := D.dividers[len(D.dividers)-1]
	for _, v := range point {
		if v >= last {
			D.above++
			continue
		}
		//index of the first divider larger than v
		i := sort.Search(len(D.dividers), func(i int) bool { return D.dividers[i] > v })
		if i > 0 {
			D.histo[i-1]++
		}
	}
	D.raw = append(D.raw, point...)
	D.total += len(point)
	//if it was normalized, we should return it to that state
	if norma {
		D.Normalize()
	}
}

//Merge adds all the data in b to D. Both histograms must have the same dividers.
func (D *Data) Merge(b *Data) error {
	if !floats.Equal(D.dividers, b.dividers) {
		return fmt.Errorf("goLattice/histo.Data.Merge: dividers must match in merged histograms")
	}
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	bn := b.normalized
	if bn {
		b.UnNormalize()
	}
	floats.Add(D.histo, b.histo)
	D.raw = append(D.raw, b.raw...)
	D.total += b.total
	D.above += b.above
	if bn {
		b.Normalize()
	}
	if norma {
		D.Normalize()
	}
	return nil
}

//Total returns the number of data points added to the histogram.
func (D *Data) Total() int {
	return D.total
}

//Above returns the number of data points that were not below the last divider.
func (D *Data) Above() int {
	return D.above
}

//Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

//Normalize normalizes the histogram
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

//UnNormalize un-normalizes the histogram
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

//normalizes or un-normalizes the histogram depending
//on whether normalize is true
func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	D.normalized = false
	if normalize {
		n = 1 / float64(D.total)
		D.normalized = true
	}
	floats.Scale(n, D.histo)
}

//Dividers returns a copy of the dividers of the histogram
func (D *Data) Dividers() []float64 {
	return append([]float64(nil), D.dividers...)
}

//View returns the bins of the histogram, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

//Sum returns the sum of all the bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

//MeanStdDev returns the mean and standard deviation of all the data added.
//NaNs are returned for an empty histogram.
func (D *Data) MeanStdDev() (float64, float64) {
	if len(D.raw) == 0 {
		return math.NaN(), math.NaN()
	}
	if len(D.raw) == 1 {
		return D.raw[0], 0
	}
	return stat.MeanStdDev(D.raw, nil)
}

//Max returns the largest value added, or NaN for an empty histogram.
func (D *Data) Max() float64 {
	if len(D.raw) == 0 {
		return math.NaN()
	}
	return floats.Max(D.raw)
}

//String prints a -hopefully- pretty string representation of
//the histogram. The representation uses 3 lines of text.
func (D *Data) String() string {
	mean, sd := D.MeanStdDev()
	ret := fmt.Sprintf("ID: %d, Normalized: %v, TotalData: %d, Mean: %.3g, StdDev: %.3g\n", D.id, D.normalized, D.total, mean, sd)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%9s", fmt.Sprintf("%g-%g", D.dividers[i], D.dividers[i+1])))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

type jsonData struct {
	ID         int       `json:"id"`
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Above      int       `json:"above"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
	Raw        []float64 `json:"raw,omitempty"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{
		ID:         D.id,
		Normalized: D.normalized,
		Total:      D.total,
		Above:      D.above,
		Dividers:   D.dividers,
		Histo:      D.histo,
		Raw:        D.raw,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("goLattice/histo.Data.UnmarshalJSON: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.id = a.ID
	D.normalized = a.Normalized
	D.total = a.Total
	D.above = a.Above
	D.dividers = a.Dividers
	D.histo = a.Histo
	D.raw = a.Raw
	return nil
}
