package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
)

func TestHisto2D(Te *testing.T) {
	H := New2D([]float64{0, 1, 2, 3}, []float64{0, 2, 4})
	xs := []float64{0, 0.5, 1, 2.9, 3, -1, 1.5}
	ys := []float64{0, 1, 3, 3.99, 1, 1, 4}
	H.AddXY(xs, ys)
	fmt.Println(H)
	if H.Total() != 4 || H.Omitted() != 3 {
		Te.Errorf("expected 4 points in and 3 out, got %d and %d", H.Total(), H.Omitted())
	}
	want := [][]float64{{2, 0}, {0, 1}, {0, 1}}
	for i, r := range want {
		for j, v := range r {
			if H.At(i, j) != v {
				Te.Errorf("bin %d,%d: expected %v, got %v", i, j, v, H.At(i, j))
			}
		}
	}
	H.AddData(0.1, 0.1)
	H.AddData(10, 0.1)
	if H.At(0, 0) != 3 || H.Total() != 5 || H.Omitted() != 4 {
		Te.Errorf("AddData failed: %v", H)
	}
	if mx := H.MarginalX(); mx[0] != 3 || mx[1] != 1 || mx[2] != 1 {
		Te.Errorf("unexpected x marginal %v", mx)
	}
	if my := H.MarginalY(); my[0] != 3 || my[1] != 2 {
		Te.Errorf("unexpected y marginal %v", my)
	}
	if H.Max() != 3 {
		Te.Errorf("expected max 3, got %v", H.Max())
	}
}

func TestFromXY(Te *testing.T) {
	xs := []float64{-1, 0, 1, 2, 3, 3}
	ys := []float64{5, 5, 5, 5, 5, 5}
	H, err := FromXY(xs, ys, 4)
	if err != nil {
		Te.Fatal(err)
	}
	nx, ny := H.Dims()
	if nx != 4 || ny != 4 {
		Te.Errorf("expected 4x4 bins, got %dx%d", nx, ny)
	}
	if H.Total() != len(xs) || H.Omitted() != 0 {
		Te.Errorf("all points should be in range: %v", H)
	}
	if s := H.MarginalX(); s[3] != 2 {
		Te.Errorf("the maximum should fall in the last bin: %v", s)
	}
	if d := H.YDividers(); d[0] != 4.5 || d[len(d)-1] != 5.5 {
		Te.Errorf("unexpected y dividers for a constant set: %v", d)
	}
	if _, err := FromXY(xs, ys[:2], 4); err == nil {
		Te.Error("expected an error for mismatched data")
	}
	if _, err := FromXY(nil, nil, 4); err == nil {
		Te.Error("expected an error for no data")
	}
}

func TestFromXYNonFinite(Te *testing.T) {
	xs := []float64{0, 1, math.Inf(1), 0.5, 1}
	ys := []float64{0, 1, 2, math.NaN(), math.Inf(-1)}
	H, err := FromXY(xs, ys, 4)
	if err != nil {
		Te.Fatal(err)
	}
	if H.Total() != 2 || H.Omitted() != 3 {
		Te.Errorf("expected 2 points in and 3 omitted, got %d and %d", H.Total(), H.Omitted())
	}
	d := H.XDividers()
	if d[0] != 0 || math.IsInf(d[len(d)-1], 0) || d[len(d)-1] < 1 || d[len(d)-1] > 1.0001 {
		Te.Errorf("non-finite values should not shape the dividers: %v", d)
	}
	if H.At(0, 0) != 1 || H.At(3, 3) != 1 {
		Te.Errorf("finite points in the wrong bins: %v", H)
	}
	if _, err := FromXY([]float64{math.NaN()}, []float64{1}, 4); err == nil {
		Te.Error("expected an error when no point is finite")
	}
}

func TestNormalize(Te *testing.T) {
	H := New2D(Dividers(0, 2, 2), Dividers(0, 2, 2))
	H.AddXY([]float64{0.5, 0.5, 1.5, 1.5}, []float64{0.5, 0.5, 0.5, 1.5})
	H.Normalize()
	if !H.Normalized() || H.At(0, 0) != 0.5 {
		Te.Errorf("unexpected normalized histogram %v %v", H, H.At(0, 0))
	}
	H.AddData(1.5, 1.5)
	if !H.Normalized() || H.At(1, 1) != 0.4 {
		Te.Errorf("adding to a normalized histogram failed: %v", H.At(1, 1))
	}
	H.UnNormalize()
	if H.At(1, 1) != 2 {
		Te.Errorf("expected 2 after un-normalizing, got %v", H.At(1, 1))
	}
}

func TestHistoIO(Te *testing.T) {
	fmt.Println("Histogram JSON output test!")
	H, err := FromXY([]float64{1, 6, 3, 2, 4, 5, 7}, []float64{1, 1, 2, 2, 3, 3, 8}, 3)
	if err != nil {
		Te.Fatal(err)
	}
	j, err := json.Marshal(H)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("JSON:", string(j))
	H2 := new(Hist2D)
	if err := json.Unmarshal(j, H2); err != nil {
		Te.Fatal(err)
	}
	if H2.String() != H.String() {
		Te.Errorf("JSON round trip changed the histogram:\n%v\n%v", H, H2)
	}
	if err := json.Unmarshal([]byte(`{"xdividers":[0,1],"ydividers":[0,1],"counts":[]}`), H2); err == nil {
		Te.Error("expected an error for an ill-formed histogram")
	}
}
