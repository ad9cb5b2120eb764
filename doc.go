// Package sdftext reconstructs crisp, anti-aliased glyph coverage from
// signed-distance-field (SDF) glyph textures at arbitrary render sizes.
//
// The module splits into two layers:
//
//   - sdftext (this package): the render-time coverage reconstruction
//     algorithm. It turns a stored distance sample plus a locally
//     estimated filter width into a coverage value in [0, 1]. The same
//     math ships as WGSL source (CoverageShaderWGSL) for the GPU path.
//   - font: font-handle lifecycle, variable-font variation resolution,
//     glyph stores and caching. Glyph textures produced there encode a
//     distance sample in each channel; this package decodes them at
//     draw time.
//
// # Example usage
//
//	// Load a font once, share the handle across the application.
//	h := font.NewHandle("Roboto", font.WithResolution(64))
//	if err := h.Load(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	// Create a glyph store for one weight of a variable font.
//	src, err := font.NewSource(context.Background(), h, &font.Variation{
//	    Axes: map[string]float64{"wght": 700},
//	})
//
//	// At draw time, per fragment:
//	fw := sdftext.FilterWidth(dudx, dudy, dvdx, dvdy, texW, texH, sdftext.DefaultSpread)
//	alpha := sdftext.Coverage(sample, sdftext.DefaultThreshold, fw)
//
// Coverage reconstruction is pure and stateless; it is safe to evaluate
// concurrently per fragment.
package sdftext
