package font

import (
	"sort"
	"sync/atomic"
	"time"
	"unicode/utf16"

	"golang.org/x/image/math/fixed"
)

// fakeLibrary is an in-memory rasterizer backend for tests. It counts
// native opens and hands out one configured fakeFace.
type fakeLibrary struct {
	face      *fakeFace
	openErr   error
	openDelay time.Duration

	opens atomic.Int32
}

func (l *fakeLibrary) Name() string { return "fake" }

func (l *fakeLibrary) OpenFace(stream ByteStream, faceIndex, ppem int) (RasterFace, error) {
	l.opens.Add(1)
	if l.openDelay > 0 {
		time.Sleep(l.openDelay)
	}
	if l.openErr != nil {
		return nil, l.openErr
	}
	_ = stream.Close()
	if l.face == nil {
		l.face = newFakeVariableFace()
	}
	return l.face, nil
}

// fakeFace is a scriptable RasterFace. The handle layer serializes
// access, so plain fields suffice except for the call counters that
// tests read concurrently.
type fakeFace struct {
	axes        []VarAxis
	instances   []VarInstance
	names       []NameRecord
	defaultInst int
	ascent      float64

	glyphs  map[rune]GlyphID
	metrics map[GlyphID]RawGlyphMetrics
	bitmaps map[GlyphID]Bitmap
	kern    map[[2]GlyphID]fixed.Int26_6

	metricsErr map[GlyphID]error
	renderErr  map[GlyphID]error
	kernErr    error

	metricsDelay time.Duration
	renderDelay  time.Duration

	metricsCalls atomic.Int32
	renderCalls  atomic.Int32
	closes       atomic.Int32

	// Variation state recorded for assertions.
	lastInstance  int
	lastCoords    []Fixed1616
	lastExplicit  []bool
	variationSets int

	runes []rune
}

// utf16beBytes encodes a string as big-endian UTF-16, the layout of
// Unicode name records.
func utf16beBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		out[2*i] = byte(u >> 8)
		out[2*i+1] = byte(u)
	}
	return out
}

// newFakeVariableFace builds the standard 2-axis test font:
// wght 100..900 (default 400) and ital 0..1 (default 0), named
// instances "Test-Regular" and "Bold", and a small glyph set.
func newFakeVariableFace() *fakeFace {
	f := &fakeFace{
		axes: []VarAxis{
			{Tag: "wght", Minimum: 100, Default: 400, Maximum: 900, NameID: 256},
			{Tag: "ital", Minimum: 0, Default: 0, Maximum: 1, NameID: 257},
		},
		instances: []VarInstance{
			{NameID: 258, Coords: []float64{400, 0}},
			{NameID: 259, Coords: []float64{700, 0}},
		},
		names: []NameRecord{
			{PlatformID: 3, EncodingID: 1, NameID: 258, Raw: utf16beBytes("Test-Regular")},
			{PlatformID: 3, EncodingID: 1, NameID: 259, Raw: utf16beBytes("Bold")},
		},
		defaultInst: 1,
		ascent:      52,
		glyphs: map[rune]GlyphID{
			' ':      3,
			'A':      1,
			'B':      2,
			'中':      4,
			0x1F600: 5, // outside the BMP, must never be yielded
		},
		metrics: map[GlyphID]RawGlyphMetrics{
			0: {BearingX: 0, BearingY: 0, Advance: 10 << 6},
			1: {BearingX: 192, BearingY: 2560, Advance: 1296}, // 3.0, 40.0, 20.25
			2: {BearingX: 64, BearingY: 2048, Advance: 1024},
			3: {BearingX: 0, BearingY: 0, Advance: 512},
			4: {BearingX: 128, BearingY: 2560, Advance: 2048},
		},
		bitmaps: map[GlyphID]Bitmap{
			0: {Width: 2, Height: 2, Pitch: 2, Buffer: []byte{1, 2, 3, 4}},
			1: fakeGradientBitmap(4, 4, 5),
			2: fakeGradientBitmap(3, 3, 3),
			3: {}, // space: zero-sized
			4: fakeGradientBitmap(5, 5, 5),
		},
		kern: map[[2]GlyphID]fixed.Int26_6{
			{1, 2}: -64, // -1px
		},
	}
	for r := range f.glyphs {
		f.runes = append(f.runes, r)
	}
	sort.Slice(f.runes, func(i, j int) bool { return f.runes[i] < f.runes[j] })
	return f
}

// newFakeStaticFace builds a non-variable face with the same glyphs.
func newFakeStaticFace() *fakeFace {
	f := newFakeVariableFace()
	f.axes = nil
	f.instances = nil
	f.defaultInst = 0
	return f
}

// fakeGradientBitmap fills a bitmap with a deterministic per-sample
// pattern, leaving pitch padding bytes untouched.
func fakeGradientBitmap(w, h, pitch int) Bitmap {
	bm := Bitmap{Width: w, Height: h, Pitch: pitch, Buffer: make([]byte, h*pitch)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bm.Buffer[y*pitch+x] = byte(16*y + x + 1)
		}
	}
	return bm
}

func (f *fakeFace) IsVariable() bool         { return len(f.axes) > 0 }
func (f *fakeFace) Axes() []VarAxis          { return f.axes }
func (f *fakeFace) Instances() []VarInstance { return f.instances }
func (f *fakeFace) DefaultInstance() int     { return f.defaultInst }
func (f *fakeFace) NameRecords() []NameRecord {
	return f.names
}

func (f *fakeFace) SetNamedInstance(index int) error {
	f.lastInstance = index
	f.lastCoords = nil
	f.lastExplicit = nil
	f.variationSets++
	return nil
}

func (f *fakeFace) SetDesignCoords(coords []Fixed1616, explicit []bool) error {
	f.lastInstance = -1
	f.lastCoords = append([]Fixed1616(nil), coords...)
	f.lastExplicit = append([]bool(nil), explicit...)
	f.variationSets++
	return nil
}

func (f *fakeFace) GlyphIndex(r rune) GlyphID { return f.glyphs[r] }

func (f *fakeFace) LoadMetrics(gid GlyphID) (RawGlyphMetrics, error) {
	f.metricsCalls.Add(1)
	if f.metricsDelay > 0 {
		time.Sleep(f.metricsDelay)
	}
	if err := f.metricsErr[gid]; err != nil {
		return RawGlyphMetrics{}, err
	}
	m, ok := f.metrics[gid]
	if !ok {
		return RawGlyphMetrics{}, &RasterizeError{Glyph: gid}
	}
	return m, nil
}

func (f *fakeFace) RenderSDF(gid GlyphID) (Bitmap, error) {
	f.renderCalls.Add(1)
	if f.renderDelay > 0 {
		time.Sleep(f.renderDelay)
	}
	if err := f.renderErr[gid]; err != nil {
		return Bitmap{}, err
	}
	bm, ok := f.bitmaps[gid]
	if !ok {
		return Bitmap{}, &RasterizeError{Glyph: gid}
	}
	return bm, nil
}

func (f *fakeFace) Kern(left, right GlyphID) (fixed.Int26_6, error) {
	if f.kernErr != nil {
		return 0, f.kernErr
	}
	return f.kern[[2]GlyphID{left, right}], nil
}

func (f *fakeFace) FirstChar() (rune, GlyphID, bool) {
	if len(f.runes) == 0 {
		return 0, 0, false
	}
	return f.runes[0], f.glyphs[f.runes[0]], true
}

func (f *fakeFace) NextChar(after rune) (rune, GlyphID, bool) {
	i := sort.Search(len(f.runes), func(i int) bool { return f.runes[i] > after })
	if i == len(f.runes) {
		return 0, 0, false
	}
	return f.runes[i], f.glyphs[f.runes[i]], true
}

func (f *fakeFace) Ascent() float64 { return f.ascent }

func (f *fakeFace) Close() error {
	f.closes.Add(1)
	return nil
}
