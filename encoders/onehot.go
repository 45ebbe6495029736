package encoders

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// OneHotEncoder expands each categorical column into one indicator column per
// category seen during Fit. Categories not seen during Fit encode as all
// zeros rather than failing, so a pipeline trained on one year can still
// score trips from the next.
type OneHotEncoder struct {
	// Categories holds the sorted distinct values of each input column.
	Categories [][]float64
}

func (e *OneHotEncoder) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return ErrEmptyInput
	}
	e.Categories = make([][]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		seen := make(map[float64]struct{})
		var cats []float64
		for _, v := range col {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				cats = append(cats, v)
			}
		}
		sort.Float64s(cats)
		e.Categories[j] = cats
	}
	return nil
}

// Width returns the number of output columns.
func (e *OneHotEncoder) Width() int {
	n := 0
	for _, cats := range e.Categories {
		n += len(cats)
	}
	return n
}

func (e *OneHotEncoder) Transform(X mat.Matrix) (*mat.Dense, error) {
	if e.Categories == nil {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, ErrEmptyInput
	}
	if c != len(e.Categories) {
		return nil, ErrColumnMismatch
	}
	out := mat.NewDense(r, e.Width(), nil)
	for i := 0; i < r; i++ {
		offset := 0
		for j, cats := range e.Categories {
			v := X.At(i, j)
			if k := sort.SearchFloat64s(cats, v); k < len(cats) && cats[k] == v {
				out.Set(i, offset+k, 1)
			}
			offset += len(cats)
		}
	}
	return out, nil
}
