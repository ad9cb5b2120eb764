package font

import (
	"io"
	"sync"

	"golang.org/x/image/math/fixed"
)

// ByteStream is the byte source a Library opens a face from: random
// access reads plus a close callback. Size reports the total length.
type ByteStream interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// VarAxis describes one design-space axis of a variable font.
type VarAxis struct {
	// Tag is the 4-character axis tag, e.g. "wght".
	Tag string

	// Minimum, Default and Maximum are design-space values.
	Minimum float64
	Default float64
	Maximum float64

	// NameID references the axis display name in the name table.
	NameID uint16
}

// VarInstance describes one named instance of a variable font.
type VarInstance struct {
	// NameID references the subfamily name in the name table.
	NameID uint16

	// Coords holds one design-space value per axis, in axis order.
	Coords []float64
}

// NameRecord is one raw entry of the font's name table. Raw holds the
// undecoded string bytes in the record's platform encoding.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Raw        []byte
}

// Library is a native rasterization backend. Opening and closing faces
// is not reentrant-safe across faces sharing one library instance, so
// the Handle layer serializes OpenFace and RasterFace.Close calls
// through one library-global lock; implementations need not lock
// those themselves.
type Library interface {
	// Name returns the backend name used for registry lookup.
	Name() string

	// OpenFace opens the face at faceIndex (for collections) from the
	// stream and configures it for rasterization at ppem pixels per
	// em. Returns *OpenError if the data is rejected and *SizeError if
	// the resolution is rejected.
	OpenFace(stream ByteStream, faceIndex, ppem int) (RasterFace, error)
}

// RasterFace is one opened native face. It keeps one mutable "current
// glyph slot" and one mutable "current variation", so a variation
// change and the native call that depends on it must be issued under
// one critical section. Handle owns that lock; RasterFace
// implementations may assume calls are serialized.
type RasterFace interface {
	// IsVariable reports whether the font exposes variable axes.
	IsVariable() bool

	// Axes returns the design-space axes, in table order. Empty for
	// static fonts.
	Axes() []VarAxis

	// Instances returns the named instances, in table order.
	Instances() []VarInstance

	// DefaultInstance returns the 1-based index of the font's declared
	// default named instance, or 0 if it declares none.
	DefaultInstance() int

	// NameRecords returns the raw name table entries.
	NameRecords() []NameRecord

	// SetNamedInstance selects the 1-based named instance. Index 0
	// resets every axis to its default.
	SetNamedInstance(index int) error

	// SetDesignCoords applies explicit design coordinates. coords has
	// one 16.16 value per axis in table order; explicit marks which
	// slots were requested. Unmarked slots keep the rasterizer's
	// default for that axis — omission is not an explicit zero.
	SetDesignCoords(coords []Fixed1616, explicit []bool) error

	// GlyphIndex returns the glyph index for a code point, 0 if
	// unmapped.
	GlyphIndex(r rune) GlyphID

	// LoadMetrics loads the glyph outline without hinting and without
	// bitmap generation and returns its raw horizontal metrics.
	LoadMetrics(gid GlyphID) (RawGlyphMetrics, error)

	// RenderSDF loads the glyph and renders it as a single-channel
	// signed-distance bitmap.
	RenderSDF(gid GlyphID) (Bitmap, error)

	// Kern returns the horizontal kerning between two glyphs in 26.6
	// pixel units.
	Kern(left, right GlyphID) (fixed.Int26_6, error)

	// FirstChar starts character-map iteration; NextChar continues it
	// from the given code point. ok is false when the map is
	// exhausted.
	FirstChar() (r rune, gid GlyphID, ok bool)
	NextChar(after rune) (r rune, gid GlyphID, ok bool)

	// Ascent is the distance from the baseline to the top of the line
	// box in pixels at the configured resolution.
	Ascent() float64

	// Close releases the native face.
	Close() error
}

// libMu guards native library open/close calls across all handles.
var libMu sync.Mutex

// libraryRegistry holds registered rasterizer backends.
// The default backend is "gotext" (pure Go, go-text/typesetting).
var (
	registryMu      sync.RWMutex
	libraryRegistry = map[string]Library{
		"gotext": &gotextLibrary{},
	}
)

// defaultLibraryName is the name of the default backend.
const defaultLibraryName = "gotext"

// RegisterLibrary registers a custom rasterizer backend under the
// given name. This allows plugging in alternative rasterizers (for
// example a FreeType binding) without changing handle code.
func RegisterLibrary(name string, lib Library) {
	registryMu.Lock()
	defer registryMu.Unlock()
	libraryRegistry[name] = lib
}

// getLibrary returns the backend by name, or the default if not found.
func getLibrary(name string) Library {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if l, ok := libraryRegistry[name]; ok {
		return l
	}
	return libraryRegistry[defaultLibraryName]
}
