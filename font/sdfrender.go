package font

import (
	"math"

	gtfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
)

// SDF rendering for the gotext backend: glyph outlines are flattened
// to polylines and sampled into a single-channel distance bitmap. The
// encoding maps the outline boundary to mid-gray (0.5), saturating at
// the spread distance on either side, with inside values increasing
// toward the foreground.

// curveSteps is the flattening resolution for one Bezier segment.
// Distance sampling tolerates coarse flattening well: the error stays
// below the encoding granularity at typical ppem.
const (
	quadSteps  = 16
	cubicSteps = 24
)

// sdfPoint is a 2D point in pixel space.
type sdfPoint struct {
	x, y float64
}

// RenderSDF renders one glyph as a single-channel SDF bitmap. Glyphs
// without an outline (spaces, bitmap-only entries) yield a zero-sized
// bitmap; the Handle layer pads those to 1x1.
func (f *gotextFace) RenderSDF(gid GlyphID) (Bitmap, error) {
	data := f.face.GlyphData(ot.GID(gid))
	outline, ok := data.(gtfont.GlyphOutline)
	if !ok {
		return Bitmap{}, nil
	}

	contours := flattenOutline(outline.Segments, f.scale)
	if len(contours) == 0 {
		return Bitmap{}, nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range contours {
		for _, p := range c {
			minX = math.Min(minX, p.x)
			minY = math.Min(minY, p.y)
			maxX = math.Max(maxX, p.x)
			maxY = math.Max(maxY, p.y)
		}
	}
	if maxX < minX || maxY < minY {
		return Bitmap{}, nil
	}

	w := int(math.Ceil(maxX-minX)) + 2*int(Spread)
	h := int(math.Ceil(maxY-minY)) + 2*int(Spread)
	originX := minX - Spread
	originY := maxY + Spread // outline space has Y up, bitmap rows go down

	bm := Bitmap{
		Width:  w,
		Height: h,
		Pitch:  w,
		Buffer: make([]byte, w*h),
	}
	for y := 0; y < h; y++ {
		py := originY - (float64(y) + 0.5)
		for x := 0; x < w; x++ {
			px := originX + float64(x) + 0.5
			d := signedDistance(contours, px, py)
			bm.Buffer[y*w+x] = encodeDistance(d)
		}
	}
	return bm, nil
}

// encodeDistance maps a signed pixel distance (positive inside) to a
// byte sample with the boundary at mid-range.
func encodeDistance(d float64) byte {
	v := 0.5 + d/(2*Spread)
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(math.Round(v * 255))
}

// flattenOutline converts scaled outline segments into closed
// polyline contours. Bezier segments are subdivided uniformly.
func flattenOutline(segments []ot.Segment, scale float64) [][]sdfPoint {
	var contours [][]sdfPoint
	var current []sdfPoint

	pt := func(p ot.SegmentPoint) sdfPoint {
		return sdfPoint{x: float64(p.X) * scale, y: float64(p.Y) * scale}
	}
	closeCurrent := func() {
		if len(current) > 1 {
			contours = append(contours, current)
		}
		current = nil
	}

	for _, seg := range segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			closeCurrent()
			current = append(current, pt(seg.Args[0]))
		case ot.SegmentOpLineTo:
			current = append(current, pt(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			if len(current) == 0 {
				continue
			}
			p0 := current[len(current)-1]
			c, p1 := pt(seg.Args[0]), pt(seg.Args[1])
			for i := 1; i <= quadSteps; i++ {
				t := float64(i) / quadSteps
				u := 1 - t
				current = append(current, sdfPoint{
					x: u*u*p0.x + 2*u*t*c.x + t*t*p1.x,
					y: u*u*p0.y + 2*u*t*c.y + t*t*p1.y,
				})
			}
		case ot.SegmentOpCubeTo:
			if len(current) == 0 {
				continue
			}
			p0 := current[len(current)-1]
			c1, c2, p1 := pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			for i := 1; i <= cubicSteps; i++ {
				t := float64(i) / cubicSteps
				u := 1 - t
				current = append(current, sdfPoint{
					x: u*u*u*p0.x + 3*u*u*t*c1.x + 3*u*t*t*c2.x + t*t*t*p1.x,
					y: u*u*u*p0.y + 3*u*u*t*c1.y + 3*u*t*t*c2.y + t*t*t*p1.y,
				})
			}
		}
	}
	closeCurrent()
	return contours
}

// signedDistance returns the distance from (px, py) to the nearest
// contour edge, positive inside the shape under the nonzero winding
// rule, clamped implicitly by the caller's encoding.
func signedDistance(contours [][]sdfPoint, px, py float64) float64 {
	minDist := math.Inf(1)
	winding := 0

	for _, c := range contours {
		n := len(c)
		for i := 0; i < n; i++ {
			a := c[i]
			b := c[(i+1)%n]

			if d := segmentDistance(px, py, a, b); d < minDist {
				minDist = d
			}

			// Signed crossing count for a ray toward +X.
			if (a.y <= py) != (b.y <= py) {
				t := (py - a.y) / (b.y - a.y)
				if a.x+t*(b.x-a.x) > px {
					if b.y > a.y {
						winding++
					} else {
						winding--
					}
				}
			}
		}
	}

	if winding != 0 {
		return minDist
	}
	return -minDist
}

// segmentDistance returns the distance from (px, py) to segment a-b.
func segmentDistance(px, py float64, a, b sdfPoint) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-a.x)*dx + (py-a.y)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(px-(a.x+t*dx), py-(a.y+t*dy))
}
