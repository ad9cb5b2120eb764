package font

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Spread is the SDF spread in source pixels: the maximum distance the
// encoding represents before saturating, and the padding added around
// each glyph bitmap. It matches the rasterizer's configured spread and
// sdftext.DefaultSpread.
const Spread = 8.0

// GlyphID is a native glyph index within one font. It is not a Unicode
// code point. Index 0 is the sentinel "notdef / missing glyph".
type GlyphID uint32

// Fixed1616 is a signed 16.16 fixed-point value, the unit the native
// rasterizer uses for design-space axis coordinates.
type Fixed1616 int32

// Fixed1616FromFloat converts a floating design value to 16.16
// fixed point, rounding to the nearest representable value.
func Fixed1616FromFloat(v float64) Fixed1616 {
	return Fixed1616(math.Round(v * 65536))
}

// Float converts back to a floating design value.
func (f Fixed1616) Float() float64 {
	return float64(f) / 65536
}

// Glyph holds the horizontal metrics of one glyph, converted to
// floating pixels with the SDF spread folded in: BearingX already
// subtracts the spread padding on the left, and BearingY is measured
// from the line top (baseline plus spread) down to the bitmap top, so
// callers can place the padded texture without further adjustment.
type Glyph struct {
	// ID is the native glyph index.
	ID GlyphID

	// BearingX is the horizontal offset from the pen position to the
	// left edge of the padded bitmap, in pixels.
	BearingX float64

	// BearingY is the vertical offset from the top of the line box to
	// the top edge of the padded bitmap, in pixels.
	BearingY float64

	// Advance is the horizontal advance in pixels.
	Advance float64

	// Baseline is the distance from the top of the line box to the
	// baseline, in pixels.
	Baseline float64

	// Source is the glyph store this record was retrieved from, or nil
	// when the record came straight from a Handle.
	Source *Source
}

// RawGlyphMetrics are unconverted native metrics in 26.6 fixed-point
// pixel units, as the rasterizer reports them.
type RawGlyphMetrics struct {
	// BearingX is the horizontal distance from the pen position to the
	// left edge of the glyph.
	BearingX fixed.Int26_6

	// BearingY is the vertical distance from the baseline up to the
	// top edge of the glyph.
	BearingY fixed.Int26_6

	// Advance is the horizontal advance.
	Advance fixed.Int26_6
}

// Bitmap is a single-channel glyph bitmap produced by the rasterizer
// in SDF mode. Each sample encodes a signed distance: the outline
// boundary corresponds to the mid value, inside values increase toward
// the foreground.
type Bitmap struct {
	Width  int
	Height int

	// Pitch is the number of bytes per row in Buffer.
	Pitch int

	// Buffer holds Height rows of Width samples each.
	Buffer []byte
}
