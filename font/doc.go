// Package font loads outline fonts (TrueType/OpenType, including
// variable fonts and collections) and serves per-glyph metrics,
// kerning and SDF textures to a text-layout pipeline.
//
// The pipeline follows a separation of concerns:
//
//   - Handle: heavyweight, shared font resource. Owns exactly one
//     native rasterizer face and serializes all native calls.
//   - Source: lightweight named view over one Handle plus one resolved
//     variation. This is the unit a text shaper depends on; many
//     Sources may share one Handle.
//   - CachedSource: optional decorator memoizing metrics and textures
//     with a time-to-live policy.
//
// # Pluggable rasterizer backend
//
// Outline parsing and SDF rasterization are abstracted through the
// Library interface. The default backend ("gotext") is pure Go, built
// on github.com/go-text/typesetting. Custom backends can be registered
// for alternative rasterizers:
//
//	font.RegisterLibrary("freetype", myFreetypeBackend)
//	h := font.NewHandle("Roboto", font.WithBackend("freetype"))
//
// # Variable fonts
//
// A Handle opened on a variable font builds a VariationTable during
// load. Sources resolve a Variation request (named instance or
// explicit axis coordinates) against that table once, then bake the
// resolved coordinates into every glyph operation:
//
//	src, err := font.NewSource(ctx, h, &font.Variation{
//	    Axes: map[string]float64{"wght": 700},
//	})
//
// Each Source exposes a stable synthesized instance name (for example
// "Roboto-700wght") used as the namespace prefix for glyph resource
// lookups of the form "<instance>/<char>".
package font
