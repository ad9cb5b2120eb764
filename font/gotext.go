package font

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	gtfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/math/fixed"
)

// gotextLibrary is the default rasterizer backend: pure Go, built on
// github.com/go-text/typesetting for outline access and glyph
// metrics, with the SDF render implemented in this package.
type gotextLibrary struct{}

// Compile-time interface check.
var _ Library = (*gotextLibrary)(nil)

func (*gotextLibrary) Name() string { return "gotext" }

// OpenFace parses the font and precomputes the character map and the
// variation metadata. The stream is fully read and released on
// success; the returned face holds no reference to it.
func (*gotextLibrary) OpenFace(stream ByteStream, faceIndex, ppem int) (RasterFace, error) {
	if ppem <= 0 {
		return nil, &SizeError{Ppem: ppem}
	}

	size := stream.Size()
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(stream, 0, size), data); err != nil {
		return nil, &OpenError{}
	}

	var face *gtfont.Face
	if len(data) >= 4 && u32(data, 0) == tagTTCF {
		faces, err := gtfont.ParseTTC(bytes.NewReader(data))
		if err != nil || faceIndex < 0 || faceIndex >= len(faces) {
			return nil, &OpenError{}
		}
		face = faces[faceIndex]
	} else {
		if faceIndex != 0 {
			return nil, &OpenError{}
		}
		f, err := gtfont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, &OpenError{}
		}
		face = f
	}

	info, err := parseSFNT(data, faceIndex)
	if err != nil {
		return nil, &OpenError{}
	}

	upem := float64(face.Font.Upem())
	if upem <= 0 {
		return nil, &OpenError{}
	}

	gf := &gotextFace{
		face:  face,
		info:  info,
		ppem:  ppem,
		scale: float64(ppem) / upem,
	}
	gf.runes, gf.gids = freezeCmap(face.Font.Cmap.Iter())
	gf.defaultInstance = findDefaultInstance(info)

	_ = stream.Close()
	return gf, nil
}

// cmapIter matches the typesetting character-map iterator: Next
// advances and reports whether a mapping is available, Char returns
// the current pair.
type cmapIter interface {
	Next() bool
	Char() (rune, gtfont.GID)
}

// freezeCmap walks the character map once, at open time, into a sorted
// rune list and a rune-to-glyph map. The first mapping for a code
// point wins.
func freezeCmap(it cmapIter) ([]rune, map[rune]GlyphID) {
	gids := make(map[rune]GlyphID)
	var runes []rune
	for it.Next() {
		r, gid := it.Char()
		if _, seen := gids[r]; seen {
			continue
		}
		gids[r] = GlyphID(gid)
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes, gids
}

// findDefaultInstance returns the 1-based index of the first named
// instance sitting exactly on every axis default, 0 if none does.
func findDefaultInstance(info *sfntInfo) int {
	for i, inst := range info.instances {
		onDefault := true
		for a, axis := range info.axes {
			if inst.Coords[a] != axis.Default {
				onDefault = false
				break
			}
		}
		if onDefault {
			return i + 1
		}
	}
	return 0
}

// gotextFace is one opened face of the gotext backend. The embedded
// typesetting face carries the mutable current variation; the Handle
// layer serializes access.
type gotextFace struct {
	face *gtfont.Face
	info *sfntInfo
	ppem int

	// scale converts font units to pixels at the configured ppem.
	scale float64

	// runes and gids are the character map, frozen at open time.
	runes []rune
	gids  map[rune]GlyphID

	defaultInstance int
}

// Compile-time interface check.
var _ RasterFace = (*gotextFace)(nil)

func (f *gotextFace) IsVariable() bool { return len(f.info.axes) > 0 }

func (f *gotextFace) Axes() []VarAxis { return f.info.axes }

func (f *gotextFace) Instances() []VarInstance { return f.info.instances }

func (f *gotextFace) DefaultInstance() int { return f.defaultInstance }

func (f *gotextFace) NameRecords() []NameRecord { return f.info.names }

func (f *gotextFace) SetNamedInstance(index int) error {
	if index == 0 {
		f.face.SetVariations(nil)
		return nil
	}
	if index < 1 || index > len(f.info.instances) {
		return fmt.Errorf("%w: index %d", ErrUnknownInstance, index)
	}
	inst := f.info.instances[index-1]
	vars := make([]gtfont.Variation, len(f.info.axes))
	for i, axis := range f.info.axes {
		vars[i] = gtfont.Variation{
			Tag:   ot.MustNewTag(axis.Tag),
			Value: float32(inst.Coords[i]),
		}
	}
	f.face.SetVariations(vars)
	return nil
}

func (f *gotextFace) SetDesignCoords(coords []Fixed1616, explicit []bool) error {
	var vars []gtfont.Variation
	for i, axis := range f.info.axes {
		if i >= len(coords) || i >= len(explicit) || !explicit[i] {
			continue
		}
		vars = append(vars, gtfont.Variation{
			Tag:   ot.MustNewTag(axis.Tag),
			Value: float32(coords[i].Float()),
		})
	}
	f.face.SetVariations(vars)
	return nil
}

func (f *gotextFace) GlyphIndex(r rune) GlyphID {
	return f.gids[r]
}

func (f *gotextFace) LoadMetrics(gid GlyphID) (RawGlyphMetrics, error) {
	ext, ok := f.face.GlyphExtents(ot.GID(gid))
	if !ok {
		return RawGlyphMetrics{}, &RasterizeError{Glyph: gid}
	}
	advance := float64(f.face.HorizontalAdvance(ot.GID(gid))) * f.scale
	return RawGlyphMetrics{
		BearingX: toFixed26_6(float64(ext.XBearing) * f.scale),
		BearingY: toFixed26_6(float64(ext.YBearing) * f.scale),
		Advance:  toFixed26_6(advance),
	}, nil
}

func (f *gotextFace) Kern(left, right GlyphID) (fixed.Int26_6, error) {
	if f.info.kernPairs == nil {
		return 0, nil
	}
	v, ok := f.info.kernPairs[uint32(left)<<16|uint32(right)]
	if !ok {
		return 0, nil
	}
	return toFixed26_6(float64(v) * f.scale), nil
}

func (f *gotextFace) FirstChar() (rune, GlyphID, bool) {
	if len(f.runes) == 0 {
		return 0, 0, false
	}
	r := f.runes[0]
	return r, f.gids[r], true
}

func (f *gotextFace) NextChar(after rune) (rune, GlyphID, bool) {
	i := sort.Search(len(f.runes), func(i int) bool { return f.runes[i] > after })
	if i == len(f.runes) {
		return 0, 0, false
	}
	r := f.runes[i]
	return r, f.gids[r], true
}

func (f *gotextFace) Ascent() float64 {
	return float64(f.info.ascentUnits) * f.scale
}

// Close releases nothing: the face is pure Go and the stream was
// released at open time.
func (f *gotextFace) Close() error { return nil }

// toFixed26_6 converts floating pixels to 26.6 fixed point.
func toFixed26_6(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
