package gen

import "github.com/ojrac/opensimplex-go"

// Noise is a deterministic 2-D field in [0,1) sampled at tile coordinates.
type Noise interface {
	At(x, y float64) float64
}

// Field is OpenSimplex noise seeded from the world seed.
type Field struct {
	n     opensimplex.Noise
	scale float64
}

func NewField(seed int64, scale float64) *Field {
	if scale <= 0 {
		scale = 1
	}
	return &Field{n: opensimplex.NewNormalized(seed), scale: scale}
}

func (f *Field) At(x, y float64) float64 {
	v := f.n.Eval2(x*f.scale, y*f.scale)
	switch {
	case v < 0:
		return 0
	case v >= 1:
		return 0.999999
	}
	return v
}

// ConstNoise returns the same value everywhere.
type ConstNoise float64

func (c ConstNoise) At(_, _ float64) float64 { return float64(c) }
