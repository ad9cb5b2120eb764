package font

import (
	"errors"
	"fmt"
)

// Sentinel errors for the font package.
var (
	// ErrAssetNotFound is returned when a font byte stream cannot be
	// located under any probed name.
	ErrAssetNotFound = errors.New("font: asset not found")

	// ErrUnknownInstance is returned when a named-instance request
	// does not match any instance in the font's variation table.
	// Resolution never falls back silently to the default instance.
	ErrUnknownInstance = errors.New("font: unknown named instance")

	// ErrNotLoaded is returned by operations that require a
	// successfully loaded handle.
	ErrNotLoaded = errors.New("font: handle not loaded")

	// ErrEmptyFontData is returned when an asset resolves to an empty
	// byte stream.
	ErrEmptyFontData = errors.New("font: empty font data")
)

// OpenError is returned when the native rasterizer rejects the font
// data (corrupt or unsupported format). Code is the native status.
type OpenError struct {
	Code int
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("font: native open failed (status %d)", e.Code)
}

// SizeError is returned when the native rasterizer rejects the
// requested rasterization resolution.
type SizeError struct {
	Code int
	Ppem int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("font: native size %dppem rejected (status %d)", e.Ppem, e.Code)
}

// RasterizeError is returned when a native glyph load or render call
// fails. Per-glyph failures are fatal to that operation only; callers
// degrade to "missing glyph" rather than aborting a text run.
type RasterizeError struct {
	Code  int
	Glyph GlyphID
}

func (e *RasterizeError) Error() string {
	return fmt.Sprintf("font: rasterize glyph %d failed (status %d)", e.Glyph, e.Code)
}

// EncodingError is returned when a name-table entry uses an
// unsupported platform/encoding combination. It is fatal only while
// building the variation table, where it blocks instance-name
// resolution; glyph rasterization never encounters it.
type EncodingError struct {
	PlatformID uint16
	EncodingID uint16
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("font: unsupported name encoding (platform %d, encoding %d)",
		e.PlatformID, e.EncodingID)
}
