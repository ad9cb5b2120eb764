package sdftext

import (
	"image/color"
	"math"
	"testing"
)

func TestCoverage(t *testing.T) {
	const fw = 0.25

	t.Run("boundary", func(t *testing.T) {
		// A sample exactly at the threshold reconstructs to half
		// coverage regardless of the filter width.
		for _, w := range []float64{0.05, 0.25, 1.0} {
			if got := Coverage(DefaultThreshold, DefaultThreshold, w); got != 0.5 {
				t.Errorf("Coverage at threshold, fw=%v: %v, want 0.5", w, got)
			}
		}
	})

	t.Run("clamps", func(t *testing.T) {
		// Half a filter width past the threshold saturates.
		if got := Coverage(DefaultThreshold+0.5*fw, DefaultThreshold, fw); got != 1 {
			t.Errorf("upper edge = %v, want 1", got)
		}
		if got := Coverage(DefaultThreshold-0.5*fw, DefaultThreshold, fw); got != 0 {
			t.Errorf("lower edge = %v, want 0", got)
		}
		if got := Coverage(1, DefaultThreshold, fw); got != 1 {
			t.Errorf("deep inside = %v, want 1", got)
		}
		if got := Coverage(0, DefaultThreshold, fw); got != 0 {
			t.Errorf("deep outside = %v, want 0", got)
		}
	})

	t.Run("linear ramp", func(t *testing.T) {
		// Coverage is linear in d across the transition band.
		d := DefaultThreshold + 0.25*fw
		if got := Coverage(d, DefaultThreshold, fw); math.Abs(got-0.75) > 1e-12 {
			t.Errorf("quarter width inside = %v, want 0.75", got)
		}
		d = DefaultThreshold - 0.25*fw
		if got := Coverage(d, DefaultThreshold, fw); math.Abs(got-0.25) > 1e-12 {
			t.Errorf("quarter width outside = %v, want 0.25", got)
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		// An outline pass shifts the threshold; the band follows it.
		if got := Coverage(0.3, 0.3, fw); got != 0.5 {
			t.Errorf("shifted threshold = %v, want 0.5", got)
		}
	})
}

func TestFilterWidth(t *testing.T) {
	const (
		texW   = 256.0
		texH   = 128.0
		spread = DefaultSpread
	)

	t.Run("axis aligned", func(t *testing.T) {
		// One texel per screen pixel on U only.
		du := 1.0 / texW
		got := FilterWidth(du, 0, 0, 0, texW, texH, spread)
		want := 1 / (4 * spread)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("FilterWidth = %v, want %v", got, want)
		}
	})

	t.Run("manhattan combination", func(t *testing.T) {
		// The U and V footprints add, as do the X and Y derivatives
		// within one axis; nothing is combined in quadrature.
		got := FilterWidth(0.5, 0.5, 0.25, 0.25, texW, texH, spread)
		fx := (0.5 + 0.5) * texW / (4 * spread)
		fy := (0.25 + 0.25) * texH / (4 * spread)
		if math.Abs(got-(fx+fy)) > 1e-12 {
			t.Errorf("FilterWidth = %v, want %v", got, fx+fy)
		}
	})

	t.Run("sign independent", func(t *testing.T) {
		a := FilterWidth(0.5, -0.25, -0.125, 0.0625, texW, texH, spread)
		b := FilterWidth(-0.5, 0.25, 0.125, -0.0625, texW, texH, spread)
		if a != b {
			t.Errorf("mirrored derivatives differ: %v vs %v", a, b)
		}
	})

	t.Run("one axis variant", func(t *testing.T) {
		got := FilterWidthX(0.5, 0.25, texW, spread)
		want := (0.5 + 0.25) * texW / (4 * spread)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("FilterWidthX = %v, want %v", got, want)
		}
		// FilterWidthX matches FilterWidth with the V axis zeroed.
		full := FilterWidth(0.5, 0.25, 0, 0, texW, texH, spread)
		if math.Abs(got-full) > 1e-12 {
			t.Errorf("FilterWidthX = %v, FilterWidth with zero V = %v", got, full)
		}
	})
}

func TestReconstructRGBA(t *testing.T) {
	tint := color.RGBA{R: 200, G: 100, B: 50, A: 240}
	const fw = 0.25

	t.Run("full coverage", func(t *testing.T) {
		got := ReconstructRGBA(tint, 1, DefaultThreshold, fw)
		if got != tint {
			t.Errorf("ReconstructRGBA = %v, want %v", got, tint)
		}
	})

	t.Run("zero coverage", func(t *testing.T) {
		got := ReconstructRGBA(tint, 0, DefaultThreshold, fw)
		want := tint
		want.A = 0
		if got != want {
			t.Errorf("ReconstructRGBA = %v, want %v", got, want)
		}
	})

	t.Run("half coverage", func(t *testing.T) {
		got := ReconstructRGBA(tint, DefaultThreshold, DefaultThreshold, fw)
		if got.A != 120 {
			t.Errorf("alpha = %d, want 120", got.A)
		}
		if got.R != tint.R || got.G != tint.G || got.B != tint.B {
			t.Errorf("tint channels changed: %v", got)
		}
	})
}
