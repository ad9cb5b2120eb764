package font

import (
	"context"
	"image"
	"iter"
	"strings"
	"unicode/utf8"
)

// Source is a named glyph store: one view over a shared Handle with
// one resolved variation baked into every operation. It is the unit a
// text shaper depends on; multiple Sources may share one Handle.
//
// Each Source owns a stable synthesized instance name used as the
// namespace prefix for resource lookups of the form
// "<instanceName>/<char>". Source is safe for concurrent use.
type Source struct {
	handle *Handle
	raw    *RawVariation
	name   string
}

// NewSource creates a glyph store over the handle for one variation.
// The handle is loaded (or awaited) first, so that the request can be
// resolved against the variation table exactly once. A request naming
// an unknown instance fails with ErrUnknownInstance; axis tags the
// font does not declare are dropped silently. Variations requested on
// a static font have no effect.
func NewSource(ctx context.Context, h *Handle, v *Variation) (*Source, error) {
	if err := h.Load(ctx); err != nil {
		return nil, err
	}

	var raw *RawVariation
	table := h.VariationTable()
	if table != nil {
		var err error
		raw, err = table.Decode(v)
		if err != nil {
			return nil, err
		}
	}

	return &Source{
		handle: h,
		raw:    raw,
		name:   SyntheticInstanceName(h.Name(), v, table),
	}, nil
}

// Name returns the synthesized instance name, the namespace prefix of
// every resource this store serves.
func (s *Source) Name() string { return s.name }

// Handle returns the backing font handle.
func (s *Source) Handle() *Handle { return s.handle }

// Variation returns the resolved raw variation, nil for the font
// default.
func (s *Source) Variation() *RawVariation { return s.raw }

// Baseline returns the distance from the line top to the baseline in
// pixels, for the shaper's line-metrics computation.
func (s *Source) Baseline() float64 {
	return s.handle.Baseline()
}

// HasGlyph reports whether the font maps the code point.
func (s *Source) HasGlyph(r rune) bool {
	return s.handle.GlyphIndex(r) != 0
}

// Glyph returns the metrics record for a code point, or nil when the
// font does not map it or the native load fails. A missing glyph
// never aborts the caller's text run.
func (s *Source) Glyph(r rune) *Glyph {
	gid := s.handle.GlyphIndex(r)
	if gid == 0 {
		return nil
	}
	g, err := s.handle.Metrics(gid, s.raw)
	if err != nil || g == nil {
		return nil
	}
	g.Source = s
	return g
}

// Kern returns the horizontal kerning between two code points in whole
// pixels, 0 when either is unmapped. Best-effort, never fatal.
func (s *Source) Kern(left, right rune) int {
	l := s.handle.GlyphIndex(left)
	r := s.handle.GlyphIndex(right)
	if l == 0 || r == 0 {
		return 0
	}
	return s.handle.Kern(l, r, s.raw)
}

// Texture returns the SDF texture for a resource name, either
// "<instanceName>/<char>" or a bare single character. A name whose
// prefix belongs to another instance yields nil, never an error, so
// many stores can share one resource namespace without cross-talk.
// Rasterization failures degrade to nil the same way.
func (s *Source) Texture(resource string) *image.RGBA {
	r, ok := s.resolveResource(resource)
	if !ok {
		return nil
	}
	return s.TextureForRune(r)
}

// resolveResource parses a resource name against this store's
// namespace, returning the addressed code point.
func (s *Source) resolveResource(resource string) (rune, bool) {
	if i := strings.IndexByte(resource, '/'); i >= 0 {
		if resource[:i] != s.name {
			return 0, false
		}
		resource = resource[i+1:]
	}
	r, size := utf8.DecodeRuneInString(resource)
	if r == utf8.RuneError || size != len(resource) || size == 0 {
		return 0, false
	}
	return r, true
}

// TextureForRune returns the SDF texture for one code point, nil when
// the font does not map it or rasterization fails.
func (s *Source) TextureForRune(r rune) *image.RGBA {
	gid := s.handle.GlyphIndex(r)
	if gid == 0 {
		return nil
	}
	img, err := s.handle.Rasterize(gid, s.raw)
	if err != nil {
		return nil
	}
	return img
}

// Resources returns a lazy, restartable sequence of the resource names
// this store serves, "<instanceName>/<char>" for every mapped BMP code
// point. Empty if the backing handle never finished loading
// successfully.
func (s *Source) Resources() iter.Seq[string] {
	return func(yield func(string) bool) {
		for r := range s.handle.Characters() {
			if !yield(s.name + "/" + string(r)) {
				return
			}
		}
	}
}
