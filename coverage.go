package sdftext

import (
	"image/color"
	"math"
)

// DefaultSpread is the distance-field spread in source pixels: the
// maximum distance the SDF encoding represents before saturating, and
// the padding added around each glyph bitmap.
const DefaultSpread = 8.0

// DefaultThreshold is the stored sample value corresponding to the
// glyph outline for a single-channel SDF with the default spread.
// Callers compositing outlines or shadows supply their own per-vertex
// threshold instead.
const DefaultThreshold = 0.5

// filterScale combines the SDF normalization with an empirical factor
// of 4 that maps distance-field slope to a screen-pixel-wide
// transition band.
const filterScale = 4.0

// FilterWidth estimates the size of one screen pixel's footprint in
// distance-field units from the screen-space partial derivatives of
// the glyph's texture coordinates.
//
// dudx, dudy are the derivatives of the U texture coordinate with
// respect to screen X and Y; dvdx, dvdy likewise for V. texW and texH
// are the SDF texture resolution in texels, spread the field's spread
// parameter in source pixels.
//
// The per-axis footprints are combined with a Manhattan sum rather
// than a Euclidean norm. That is intentionally conservative: wider
// near diagonals, biased toward not under-blurring.
func FilterWidth(dudx, dudy, dvdx, dvdy, texW, texH, spread float64) float64 {
	fx := (math.Abs(dudx) + math.Abs(dudy)) * texW / (filterScale * spread)
	fy := (math.Abs(dvdx) + math.Abs(dvdy)) * texH / (filterScale * spread)
	return math.Abs(fx) + math.Abs(fy)
}

// FilterWidthX is the degenerate one-axis variant of FilterWidth. It
// omits the V-derivative term and scales only by the U-axis texel
// footprint. Used for effects such as outline and shadow passes where
// only horizontal legibility matters.
func FilterWidthX(dudx, dudy, texW, spread float64) float64 {
	return (math.Abs(dudx) + math.Abs(dudy)) * texW / (filterScale * spread)
}

// Coverage converts a stored distance sample d into an anti-aliased
// coverage value in [0, 1].
//
// threshold is the sample value that corresponds to the outline
// boundary (DefaultThreshold for plain fills). fw is the filter width
// from FilterWidth and must be positive: callers must reject
// zero-area quads before reconstructing coverage, since fw == 0 makes
// the transition band undefined.
//
// The +0.5*fw bias shifts the transition so that small glyphs, where
// fw approaches the full spread, remain legible instead of washing
// out against a fixed threshold.
func Coverage(d, threshold, fw float64) float64 {
	c := (d - threshold + 0.5*fw) / fw
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ReconstructRGBA applies reconstructed coverage to a straight-alpha
// tint color: the output is the tint with its alpha multiplied by the
// coverage of sample d.
func ReconstructRGBA(tint color.RGBA, d, threshold, fw float64) color.RGBA {
	c := Coverage(d, threshold, fw)
	tint.A = uint8(math.Round(float64(tint.A) * c))
	return tint
}
