package font

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"iter"
	"sync"

	"github.com/gogpu/sdftext"
)

// loadState is the lifecycle state of a Handle.
type loadState int

const (
	// stateUnopened: Load has not been called.
	stateUnopened loadState = iota
	// stateLoading: exactly one caller is performing the native open.
	stateLoading
	// stateLoaded: terminal; the native face is valid.
	stateLoaded
	// stateFailed: terminal; the captured error replays to every waiter.
	stateFailed
)

// defaultResolution is the rasterization resolution in pixels per em.
const defaultResolution = 64

// Handle owns exactly one opened native font face and funnels every
// native operation through a single per-handle lock, because the
// underlying rasterizer keeps one mutable current glyph slot and one
// mutable current variation per face: applying a variation and reading
// results are not independently atomic, so each public operation takes
// "apply variation + native call" as one critical section.
//
// A Handle starts unopened; Load moves it through loading to exactly
// one terminal state (loaded or failed). Concurrent callers observing
// the load in flight block until the terminal state resolves instead
// of starting a second native open — opening is neither reentrant-safe
// nor cheap. Handle is safe for concurrent use.
type Handle struct {
	name      string
	faceIndex int
	ppem      int
	assets    *AssetSource
	lib       Library

	// mu guards the state transitions below; done is closed exactly
	// once, when the terminal state is set. loadErr and the fields
	// written during load are published before done closes and are
	// read-only afterward.
	mu      sync.Mutex
	state   loadState
	done    chan struct{}
	loadErr error

	// faceMu is the per-handle native critical section.
	faceMu sync.Mutex
	face   RasterFace
	closed bool

	variable bool
	varTable *VariationTable
	baseline float64
}

// HandleOption configures a Handle.
type HandleOption func(*Handle)

// WithFaceIndex selects a face inside a font collection. Collection
// index auto-detection is not attempted; the default is face 0.
func WithFaceIndex(index int) HandleOption {
	return func(h *Handle) {
		h.faceIndex = index
	}
}

// WithResolution sets the rasterization resolution in pixels per em.
// The default is 64.
func WithResolution(ppem int) HandleOption {
	return func(h *Handle) {
		if ppem > 0 {
			h.ppem = ppem
		}
	}
}

// WithAssets sets the asset source font bytes are resolved through.
func WithAssets(assets *AssetSource) HandleOption {
	return func(h *Handle) {
		h.assets = assets
	}
}

// WithBackend selects a registered rasterizer backend by name.
// The default is "gotext".
func WithBackend(name string) HandleOption {
	return func(h *Handle) {
		h.lib = getLibrary(name)
	}
}

// WithLibrary injects a rasterizer backend directly, bypassing the
// registry.
func WithLibrary(lib Library) HandleOption {
	return func(h *Handle) {
		if lib != nil {
			h.lib = lib
		}
	}
}

// NewHandle creates an unopened handle for the named font asset.
// Call Load before use.
func NewHandle(name string, opts ...HandleOption) *Handle {
	h := &Handle{
		name: name,
		ppem: defaultResolution,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.assets == nil {
		h.assets = NewAssetSource()
	}
	if h.lib == nil {
		h.lib = getLibrary(defaultLibraryName)
	}
	return h
}

// Name returns the asset name the handle was created for.
func (h *Handle) Name() string { return h.name }

// Resolution returns the rasterization resolution in pixels per em.
func (h *Handle) Resolution() int { return h.ppem }

// FaceIndex returns the collection face index.
func (h *Handle) FaceIndex() int { return h.faceIndex }

// Load opens the font. It is idempotent: the first caller performs
// the native open, every other concurrent or subsequent caller waits
// for and returns that first call's outcome. A load failure is
// captured once and replayed to every waiter.
//
// On success, if the font exposes variable axes, the variation table
// is built synchronously as part of the load, so consumers never race
// a separate "is this variable" check.
func (h *Handle) Load(ctx context.Context) error {
	h.mu.Lock()
	switch h.state {
	case stateLoaded, stateFailed:
		err := h.loadErr
		h.mu.Unlock()
		return err
	case stateLoading:
		h.mu.Unlock()
		return h.Await(ctx)
	}
	h.state = stateLoading
	h.mu.Unlock()

	err := h.open()
	h.mu.Lock()
	if err != nil {
		h.state = stateFailed
		h.loadErr = err
	} else {
		h.state = stateLoaded
	}
	close(h.done)
	h.mu.Unlock()

	if err != nil {
		sdftext.Logger().Warn("font load failed", "name", h.name, "error", err)
	} else {
		sdftext.Logger().Info("font loaded",
			"name", h.name, "ppem", h.ppem, "variable", h.variable)
	}
	return err
}

// open performs the actual native open. It runs outside h.mu so that
// waiters can block on done without holding the lock, and serializes
// the native open itself through the library-global lock.
func (h *Handle) open() error {
	stream, err := h.assets.Open(h.name)
	if err != nil {
		return err
	}

	libMu.Lock()
	face, err := h.lib.OpenFace(stream, h.faceIndex, h.ppem)
	libMu.Unlock()
	if err != nil {
		_ = stream.Close()
		return err
	}

	if face.IsVariable() {
		table, err := newVariationTable(face)
		if err != nil {
			libMu.Lock()
			_ = face.Close()
			libMu.Unlock()
			return err
		}
		h.varTable = table
		h.variable = true
	}

	h.baseline = face.Ascent()
	h.face = face
	return nil
}

// Await blocks until the load reaches its terminal state and returns
// that state's outcome. Every waiter observes the same captured error,
// not just the first.
func (h *Handle) Await(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		err := h.loadErr
		h.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loaded reports whether the handle reached the loaded state.
func (h *Handle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateLoaded
}

// Variable reports whether the loaded font exposes variable axes.
func (h *Handle) Variable() bool {
	return h.Loaded() && h.variable
}

// VariationTable returns the table built during load, or nil for
// static fonts and unloaded handles.
func (h *Handle) VariationTable() *VariationTable {
	if !h.Loaded() {
		return nil
	}
	return h.varTable
}

// Baseline returns the distance from the line top to the baseline in
// pixels, 0 if not loaded.
func (h *Handle) Baseline() float64 {
	if !h.Loaded() {
		return 0
	}
	return h.baseline
}

// GlyphIndex returns the native glyph index for a code point. It
// returns 0 — the notdef sentinel — if the handle is not loaded or the
// code point has no mapping; it never fails.
func (h *Handle) GlyphIndex(r rune) GlyphID {
	if !h.Loaded() {
		return 0
	}
	h.faceMu.Lock()
	defer h.faceMu.Unlock()
	if h.closed {
		return 0
	}
	return h.face.GlyphIndex(r)
}

// applyVariationLocked configures the face's current variation.
// Callers must hold faceMu.
//
// Variation requests against static fonts are ignored. A nil variation
// on a variable font selects the font's declared default named
// instance, queried on every call: callers may never assume variation
// state persists between calls.
func (h *Handle) applyVariationLocked(v *RawVariation) error {
	if !h.variable {
		return nil
	}
	if v == nil {
		return h.face.SetNamedInstance(h.face.DefaultInstance())
	}
	if v.Coords != nil {
		return h.face.SetDesignCoords(v.Coords, v.Explicit)
	}
	return h.face.SetNamedInstance(v.Instance)
}

// Metrics returns the converted metrics of one glyph under the given
// variation, or nil (with no error) if the handle is not loaded.
//
// The native 26.6 values convert to floating pixels with the SDF
// spread folded in: the spread padding is subtracted from the X
// bearing, and the Y bearing is re-expressed as the offset from the
// line top (baseline plus spread) to the padded bitmap top.
func (h *Handle) Metrics(gid GlyphID, v *RawVariation) (*Glyph, error) {
	if !h.Loaded() {
		return nil, nil
	}

	h.faceMu.Lock()
	if h.closed {
		h.faceMu.Unlock()
		return nil, ErrNotLoaded
	}
	var raw RawGlyphMetrics
	err := h.applyVariationLocked(v)
	if err == nil {
		raw, err = h.face.LoadMetrics(gid)
	}
	h.faceMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("font: metrics for glyph %d: %w", gid, err)
	}

	return &Glyph{
		ID:       gid,
		BearingX: float64(raw.BearingX)/64 - Spread,
		BearingY: h.baseline + Spread - float64(raw.BearingY)/64,
		Advance:  float64(raw.Advance) / 64,
		Baseline: h.baseline,
	}, nil
}

// Kern returns the horizontal kerning between two glyphs in whole
// pixels. Kerning is best-effort and never fatal: an unloaded handle
// or a native error yields 0.
func (h *Handle) Kern(left, right GlyphID, v *RawVariation) int {
	if !h.Loaded() {
		return 0
	}

	h.faceMu.Lock()
	defer h.faceMu.Unlock()
	if h.closed {
		return 0
	}
	if err := h.applyVariationLocked(v); err != nil {
		return 0
	}
	k, err := h.face.Kern(left, right)
	if err != nil {
		return 0
	}
	return k.Round()
}

// Rasterize renders one glyph to an SDF texture under the given
// variation. The single-channel distance sample is broadcast across
// R, G and B with full opacity. The result is never smaller than 1x1,
// even for zero-sized glyphs such as spaces, so callers always receive
// an addressable image. Returns nil with no error if the handle is not
// loaded, and a *RasterizeError-wrapping error on native failure.
func (h *Handle) Rasterize(gid GlyphID, v *RawVariation) (*image.RGBA, error) {
	if !h.Loaded() {
		return nil, nil
	}

	h.faceMu.Lock()
	if h.closed {
		h.faceMu.Unlock()
		return nil, ErrNotLoaded
	}
	var bm Bitmap
	err := h.applyVariationLocked(v)
	if err == nil {
		bm, err = h.face.RenderSDF(gid)
	}
	h.faceMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("font: rasterize glyph %d: %w", gid, err)
	}

	return bitmapToRGBA(bm), nil
}

// RasterizeContext is Rasterize with a cancellation signal. The signal
// is checked before native work starts; once the native render has
// begun it is not preemptible and runs to completion or native error.
func (h *Handle) RasterizeContext(ctx context.Context, gid GlyphID, v *RawVariation) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.Rasterize(gid, v)
}

// bitmapToRGBA copies a single-channel SDF bitmap into an RGBA image,
// replicating the distance sample to R, G and B at full opacity.
// Guarantees at least 1x1 output.
func bitmapToRGBA(bm Bitmap) *image.RGBA {
	w, h := bm.Width, bm.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < bm.Height; y++ {
		row := bm.Buffer[y*bm.Pitch:]
		for x := 0; x < bm.Width; x++ {
			s := row[x]
			img.SetRGBA(x, y, color.RGBA{R: s, G: s, B: s, A: 0xFF})
		}
	}
	if bm.Width < 1 || bm.Height < 1 {
		img.SetRGBA(0, 0, color.RGBA{A: 0xFF})
	}
	return img
}

// Characters returns a lazy, restartable sequence of the code points
// the font maps, walked through the rasterizer's first/next character
// iteration. Each call starts over. Only the Basic Multilingual Plane
// is yielded; code points above it are skipped. An unloaded handle
// yields an empty sequence, not an error.
func (h *Handle) Characters() iter.Seq[rune] {
	return func(yield func(rune) bool) {
		if !h.Loaded() {
			return
		}
		h.faceMu.Lock()
		var (
			r  rune
			ok bool
		)
		if !h.closed {
			r, _, ok = h.face.FirstChar()
		}
		h.faceMu.Unlock()
		for ok {
			if r <= 0xFFFF && !yield(r) {
				return
			}
			h.faceMu.Lock()
			if h.closed {
				ok = false
			} else {
				r, _, ok = h.face.NextChar(r)
			}
			h.faceMu.Unlock()
		}
	}
}

// Close releases the native face. It is a no-op unless the handle
// loaded successfully, and releases the face exactly once no matter
// how often it is called.
func (h *Handle) Close() error {
	h.mu.Lock()
	loaded := h.state == stateLoaded
	h.mu.Unlock()
	if !loaded {
		return nil
	}

	h.faceMu.Lock()
	defer h.faceMu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	libMu.Lock()
	err := h.face.Close()
	libMu.Unlock()
	if err != nil {
		sdftext.Logger().Warn("font face release failed", "name", h.name, "error", err)
	}
	return err
}
