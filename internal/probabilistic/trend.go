package probabilistic

import (
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// Point is one vertex of a probability trend graph.
type Point struct {
	Minutes int `json:"x"`
	Percent int `json:"y"`
}

// Shape names a probability-trend button.
type Shape string

const (
	Draw   Shape = "Draw"
	Linear Shape = "Linear"
	Exp1   Shape = "Exp1"
	Exp2   Shape = "Exp2"
	Bell   Shape = "Bell"
	Plus5  Shape = "+5"
	Minus5 Shape = "-5"
)

// ApplyShape returns a copy of points reshaped by s. Values are clipped to
// [0, 100] and the final point is always 0.
func ApplyShape(s Shape, points []Point) ([]Point, error) {
	out := slices.Clone(points)
	if len(out) == 0 {
		return out, nil
	}
	ys := make([]float64, len(out))
	for i, p := range out {
		ys[i] = float64(p.Percent)
	}

	end := len(ys) - 1
	first, last := ys[0], ys[end]
	switch s {
	case Draw:
	case Linear:
		for i := range ys {
			ys[i] = first + (last-first)*frac(i, end)
		}
	case Exp1:
		for i := range ys {
			f := frac(i, end)
			ys[i] = first + (last-first)*f*f
		}
	case Exp2:
		for i := range ys {
			f := 1 - frac(i, end)
			ys[i] = last + (first-last)*f*f
		}
	case Bell:
		peakAt := argmax(ys)
		peak := ys[peakAt]
		for i := 0; i < peakAt; i++ {
			f := frac(i, peakAt)
			ys[i] = first + (peak-first)*f*f
		}
		for i := peakAt + 1; i <= end; i++ {
			f := frac(i-peakAt, end-peakAt)
			ys[i] = peak + (last-peak)*f*f
		}
	case Plus5:
		for i := range ys {
			ys[i] += 5
		}
	case Minus5:
		for i := range ys {
			ys[i] -= 5
		}
	default:
		return nil, fmt.Errorf("%w: unknown trend shape %q", domain.ErrValidation, s)
	}

	for i := range out {
		out[i].Percent = int(math.Round(min(max(ys[i], 0), 100)))
	}
	out[end].Percent = 0
	return out, nil
}

func frac(i, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(i) / float64(n)
}

// argmax returns the first index of the largest value.
func argmax(ys []float64) int {
	best := 0
	for i, y := range ys {
		if y > ys[best] {
			best = i
		}
	}
	return best
}
