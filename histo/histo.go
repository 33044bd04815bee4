package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Dividers returns bins+1 evenly spaced dividers from min to max, which
//define bins bins. If max is not larger than min, the range is taken to be 1 wide.
func Dividers(min, max float64, bins int) []float64 {
	if bins < 1 {
		panic("sqlmd/histo.Dividers: at least one bin is needed")
	}
	if max <= min {
		max = min + 1
	}
	d := make([]float64, bins+1)
	return floats.Span(d, min, max)
}

//Hist2D is a 2D histogram of (x,y) points.
type Hist2D struct {
	normalized bool
	total      int //points in range
	omitted    int //points out of range
	xdiv       []float64
	ydiv       []float64
	counts     []float64 //row-major, one row per x bin
}

//New2D returns an empty 2D histogram with the given dividers in
//the x and y directions. Dividers are copied. The function panics if
//any of the two sets has less than 2 elements or is not sorted.
func New2D(xdiv, ydiv []float64) *Hist2D {
	check := func(d []float64) {
		if len(d) < 2 || !sort.Float64sAreSorted(d) {
			panic("sqlmd/histo.New2D: Ill-formed dividers")
		}
	}
	check(xdiv)
	check(ydiv)
	H := new(Hist2D)
	//I prefer to copy the slices to avoid somebody changing them from outside
	H.xdiv = append([]float64(nil), xdiv...)
	H.ydiv = append([]float64(nil), ydiv...)
	H.counts = make([]float64, (len(xdiv)-1)*(len(ydiv)-1))
	return H
}

//FromXY returns a histogram with bins x bins bins, spanning the whole
//range of the given points, the maximum values included.
//Points with a NaN or infinite coordinate are counted as omitted.
func FromXY(xs, ys []float64, bins int) (*Hist2D, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("sqlmd/histo.FromXY: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("sqlmd/histo.FromXY: no data")
	}
	if bins < 1 {
		return nil, fmt.Errorf("sqlmd/histo.FromXY: invalid number of bins %d", bins)
	}
	fx, fy := finite(xs, ys)
	if len(fx) == 0 {
		return nil, fmt.Errorf("sqlmd/histo.FromXY: no finite data among %d points", len(xs))
	}
	xmin, xmax := limits(fx)
	ymin, ymax := limits(fy)
	H := New2D(Dividers(xmin, xmax, bins), Dividers(ymin, ymax, bins))
	H.AddXY(fx, fy)
	H.omitted += len(xs) - len(fx)
	return H, nil
}

//finite returns the points of xs,ys where both coordinates are finite numbers.
func finite(xs, ys []float64) ([]float64, []float64) {
	fx := make([]float64, 0, len(xs))
	fy := make([]float64, 0, len(ys))
	for i, x := range xs {
		y := ys[i]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		fx = append(fx, x)
		fy = append(fy, y)
	}
	return fx, fy
}

//limits returns the range to be histogrammed for the values vs.
//A range of width zero is widened to 1.
func limits(vs []float64) (float64, float64) {
	min, max := floats.Min(vs), floats.Max(vs)
	if min == max {
		return min - 0.5, max + 0.5
	}
	//The last divider is excluded from the last bin, so we move it a hair up.
	return min, math.Nextafter(max, math.Inf(1))
}

//Dims returns the number of bins in the x and y directions.
func (H *Hist2D) Dims() (int, int) {
	return len(H.xdiv) - 1, len(H.ydiv) - 1
}

func (H *Hist2D) rc2i(ix, iy int) int {
	nx, ny := H.Dims()
	if ix < 0 || ix >= nx || iy < 0 || iy >= ny {
		panic(fmt.Sprintf("sqlmd/histo: bin (%d,%d) out of range", ix, iy))
	}
	return ix*ny + iy
}

//bin returns the index of the bin of v given the dividers div,
//or -1 if v is out of range.
func bin(div []float64, v float64) int {
	if !(v >= div[0] && v < div[len(div)-1]) { //also catches NaNs
		return -1
	}
	i := sort.SearchFloat64s(div, v)
	if div[i] == v {
		return i
	}
	return i - 1
}

//AddData adds one point to the histogram.
//Points out of range are omitted.
func (H *Hist2D) AddData(x, y float64) {
	var norma bool
	if H.normalized {
		norma = true
		H.UnNormalize()
	}
	ix, iy := bin(H.xdiv, x), bin(H.ydiv, y)
	if ix < 0 || iy < 0 {
		H.omitted++
	} else {
		H.counts[H.rc2i(ix, iy)]++
		H.total++
	}
	if norma {
		H.Normalize()
	}
}

//AddXY adds many points to the histogram. xs and ys must have the same length,
//the function panics otherwise. Points out of range are omitted.
func (H *Hist2D) AddXY(xs, ys []float64) {
	if len(xs) != len(ys) {
		panic("sqlmd/histo.AddXY: Ill-formed data")
	}
	var norma bool
	if H.normalized {
		norma = true
		H.UnNormalize()
	}
	nx, ny := H.Dims()
	//we put the y values in columns by x bin,
	//and let stat.Histogram sort them in bins.
	cols := make([][]float64, nx)
	for i, x := range xs {
		ix := bin(H.xdiv, x)
		if ix < 0 {
			H.omitted++
			continue
		}
		cols[ix] = append(cols[ix], ys[i])
	}
	row := make([]float64, ny)
	for ix, col := range cols {
		if len(col) == 0 {
			continue
		}
		sort.Float64s(col)
		//stat.Histogram just panics instead of omitting the values that are off limits
		//so we remove them here before the call.
		mini := sort.SearchFloat64s(col, H.ydiv[0])
		maxi := sort.SearchFloat64s(col, H.ydiv[ny])
		H.omitted += mini + len(col) - maxi
		col = col[mini:maxi]
		if len(col) == 0 {
			continue
		}
		for i := range row {
			row[i] = 0
		}
		row = stat.Histogram(row, H.ydiv, col, nil)
		floats.Add(H.counts[ix*ny:(ix+1)*ny], row)
		H.total += len(col)
	}
	if norma {
		H.Normalize()
	}
}

//At returns the value of the ix,iy bin.
func (H *Hist2D) At(ix, iy int) float64 {
	return H.counts[H.rc2i(ix, iy)]
}

//Total returns the number of points in the histogram.
func (H *Hist2D) Total() int {
	return H.total
}

//Omitted returns the number of points given to the histogram that fell out of range.
func (H *Hist2D) Omitted() int {
	return H.omitted
}

//Max returns the largest value among all bins.
func (H *Hist2D) Max() float64 {
	return floats.Max(H.counts)
}

//XDividers returns a copy of the dividers in the x direction.
func (H *Hist2D) XDividers() []float64 {
	return append([]float64(nil), H.xdiv...)
}

//YDividers returns a copy of the dividers in the y direction.
func (H *Hist2D) YDividers() []float64 {
	return append([]float64(nil), H.ydiv...)
}

//XCenter returns the center of the ix-th bin in the x direction.
func (H *Hist2D) XCenter(ix int) float64 {
	return (H.xdiv[ix] + H.xdiv[ix+1]) / 2
}

//YCenter returns the center of the iy-th bin in the y direction.
func (H *Hist2D) YCenter(iy int) float64 {
	return (H.ydiv[iy] + H.ydiv[iy+1]) / 2
}

//MarginalX returns the 1D histogram along x, i.e. the sum over all y bins.
func (H *Hist2D) MarginalX() []float64 {
	nx, ny := H.Dims()
	ret := make([]float64, nx)
	for i := range ret {
		ret[i] = floats.Sum(H.counts[i*ny : (i+1)*ny])
	}
	return ret
}

//MarginalY returns the 1D histogram along y, i.e. the sum over all x bins.
func (H *Hist2D) MarginalY() []float64 {
	nx, ny := H.Dims()
	ret := make([]float64, ny)
	for i := 0; i < nx; i++ {
		floats.Add(ret, H.counts[i*ny:(i+1)*ny])
	}
	return ret
}

//Normalized Returns true if the histogram is normalized
func (H *Hist2D) Normalized() bool {
	return H.normalized
}

//Normalize normalizes the histogram
func (H *Hist2D) Normalize() {
	H.normaunnorma(true)
}

//UnNormalize un-normalizes the histogram
func (H *Hist2D) UnNormalize() {
	H.normaunnorma(false)
}

func (H *Hist2D) normaunnorma(normalize bool) {
	if H.total <= 0 || H.normalized == normalize {
		return
	}
	n := float64(H.total)
	H.normalized = false
	if normalize {
		n = 1 / float64(H.total)
		H.normalized = true
	}
	floats.Scale(n, H.counts)
}

//String prints a short description of the histogram.
func (H *Hist2D) String() string {
	nx, ny := H.Dims()
	return fmt.Sprintf("Hist2D %dx%d x:[%4.2f,%4.2f) y:[%4.2f,%4.2f) Normalized: %v, TotalData: %d, Omitted: %d",
		nx, ny, H.xdiv[0], H.xdiv[nx], H.ydiv[0], H.ydiv[ny], H.normalized, H.total, H.omitted)
}

type jsonHist2D struct {
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Omitted    int       `json:"omitted"`
	XDividers  []float64 `json:"xdividers"`
	YDividers  []float64 `json:"ydividers"`
	Counts     []float64 `json:"counts"`
}

func (H *Hist2D) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonHist2D{
		Normalized: H.normalized,
		Total:      H.total,
		Omitted:    H.omitted,
		XDividers:  H.xdiv,
		YDividers:  H.ydiv,
		Counts:     H.counts,
	})
}

func (H *Hist2D) UnmarshalJSON(b []byte) error {
	var a jsonHist2D
	err := json.Unmarshal(b, &a)
	if err != nil {
		return err
	}
	if len(a.XDividers) < 2 || len(a.YDividers) < 2 || len(a.Counts) != (len(a.XDividers)-1)*(len(a.YDividers)-1) {
		return fmt.Errorf("sqlmd/histo.Hist2D.UnmarshalJSON: Ill-formed histogram")
	}
	H.normalized = a.Normalized
	H.total = a.Total
	H.omitted = a.Omitted
	H.xdiv = a.XDividers
	H.ydiv = a.YDividers
	H.counts = a.Counts
	return nil
}
