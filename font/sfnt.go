package font

import (
	"encoding/binary"
	"errors"
)

// The gotext backend reads a handful of sfnt tables directly from the
// font bytes: fvar for the variation descriptor, name for the raw
// name records, hhea for the ascender and kern (format 0) for
// best-effort pair kerning. go-text/typesetting handles everything
// glyph-shaped; these tables are only metadata.

var errMalformedFont = errors.New("font: malformed sfnt data")

const (
	tagTTCF = 0x74746366 // 'ttcf'
	tagOTTO = 0x4f54544f // 'OTTO'
	tagFvar = 0x66766172 // 'fvar'
	tagName = 0x6e616d65 // 'name'
	tagHhea = 0x68686561 // 'hhea'
	tagKern = 0x6b65726e // 'kern'
)

// sfntInfo is the parsed metadata of one face.
type sfntInfo struct {
	axes      []VarAxis
	instances []VarInstance
	names     []NameRecord

	// ascentUnits is the hhea ascender in font units.
	ascentUnits int

	// kernPairs maps (left<<16 | right) to a kerning value in font
	// units. Nil when the font carries no format 0 kern subtable.
	kernPairs map[uint32]int16
}

func u16(b []byte, off int) uint16 { return binary.BigEndian.Uint16(b[off:]) }
func u32(b []byte, off int) uint32 { return binary.BigEndian.Uint32(b[off:]) }

// fixedToFloat converts a big-endian 16.16 fixed-point value.
func fixed1616ToFloat(v uint32) float64 {
	return float64(int32(v)) / 65536
}

// parseSFNT locates the table directory for faceIndex (resolving the
// ttcf header for collections) and parses the metadata tables.
func parseSFNT(data []byte, faceIndex int) (*sfntInfo, error) {
	if len(data) < 12 {
		return nil, errMalformedFont
	}

	dirOffset := 0
	if u32(data, 0) == tagTTCF {
		numFonts := int(u32(data, 8))
		if faceIndex < 0 || faceIndex >= numFonts {
			return nil, errMalformedFont
		}
		if len(data) < 12+4*numFonts {
			return nil, errMalformedFont
		}
		dirOffset = int(u32(data, 12+4*faceIndex))
	} else if faceIndex != 0 {
		return nil, errMalformedFont
	}

	tables, err := parseTableDirectory(data, dirOffset)
	if err != nil {
		return nil, err
	}

	info := &sfntInfo{}

	hhea, ok := tables[tagHhea]
	if !ok || len(hhea) < 36 {
		return nil, errMalformedFont
	}
	info.ascentUnits = int(int16(u16(hhea, 4)))

	if name, ok := tables[tagName]; ok {
		info.names, err = parseNameTable(name)
		if err != nil {
			return nil, err
		}
	}

	if fvar, ok := tables[tagFvar]; ok {
		info.axes, info.instances, err = parseFvarTable(fvar)
		if err != nil {
			return nil, err
		}
	}

	// Kerning is best-effort: a malformed kern table is treated as
	// absent, never as an open failure.
	if kern, ok := tables[tagKern]; ok {
		info.kernPairs = parseKernTable(kern)
	}

	return info, nil
}

// parseTableDirectory reads the sfnt directory at dirOffset and
// returns each table's byte range.
func parseTableDirectory(data []byte, dirOffset int) (map[uint32][]byte, error) {
	if dirOffset < 0 || dirOffset+12 > len(data) {
		return nil, errMalformedFont
	}
	version := u32(data, dirOffset)
	if version != 0x00010000 && version != tagOTTO && version != 0x74727565 {
		return nil, errMalformedFont
	}
	numTables := int(u16(data, dirOffset+4))
	recordsEnd := dirOffset + 12 + 16*numTables
	if recordsEnd > len(data) {
		return nil, errMalformedFont
	}

	tables := make(map[uint32][]byte, numTables)
	for i := 0; i < numTables; i++ {
		rec := dirOffset + 12 + 16*i
		tag := u32(data, rec)
		offset := int(u32(data, rec+8))
		length := int(u32(data, rec+12))
		if offset < 0 || length < 0 || offset+length > len(data) {
			return nil, errMalformedFont
		}
		tables[tag] = data[offset : offset+length]
	}
	return tables, nil
}

// parseNameTable returns the raw name records with their undecoded
// string bytes.
func parseNameTable(name []byte) ([]NameRecord, error) {
	if len(name) < 6 {
		return nil, errMalformedFont
	}
	count := int(u16(name, 2))
	stringOffset := int(u16(name, 4))
	if 6+12*count > len(name) {
		return nil, errMalformedFont
	}

	records := make([]NameRecord, 0, count)
	for i := 0; i < count; i++ {
		rec := 6 + 12*i
		length := int(u16(name, rec+8))
		offset := stringOffset + int(u16(name, rec+10))
		if offset+length > len(name) {
			// Skip records pointing outside the table.
			continue
		}
		records = append(records, NameRecord{
			PlatformID: u16(name, rec),
			EncodingID: u16(name, rec+2),
			LanguageID: u16(name, rec+4),
			NameID:     u16(name, rec+6),
			Raw:        name[offset : offset+length],
		})
	}
	return records, nil
}

// parseFvarTable returns the design-space axes and named instances.
func parseFvarTable(fvar []byte) ([]VarAxis, []VarInstance, error) {
	if len(fvar) < 16 {
		return nil, nil, errMalformedFont
	}
	axesOffset := int(u16(fvar, 4))
	axisCount := int(u16(fvar, 8))
	axisSize := int(u16(fvar, 10))
	instanceCount := int(u16(fvar, 12))
	instanceSize := int(u16(fvar, 14))
	if axisSize < 20 || axesOffset+axisCount*axisSize > len(fvar) {
		return nil, nil, errMalformedFont
	}

	axes := make([]VarAxis, axisCount)
	for i := range axes {
		rec := axesOffset + i*axisSize
		tag := u32(fvar, rec)
		axes[i] = VarAxis{
			Tag: string([]byte{
				byte(tag >> 24), byte(tag >> 16), byte(tag >> 8), byte(tag),
			}),
			Minimum: fixed1616ToFloat(u32(fvar, rec+4)),
			Default: fixed1616ToFloat(u32(fvar, rec+8)),
			Maximum: fixed1616ToFloat(u32(fvar, rec+12)),
			NameID:  u16(fvar, rec+18),
		}
	}

	// An instance record is subfamilyNameID, flags, one coordinate per
	// axis and an optional PostScript name ID.
	minInstanceSize := 4 + 4*axisCount
	instancesOffset := axesOffset + axisCount*axisSize
	if instanceCount > 0 && instanceSize < minInstanceSize {
		return nil, nil, errMalformedFont
	}
	if instancesOffset+instanceCount*instanceSize > len(fvar) {
		return nil, nil, errMalformedFont
	}

	instances := make([]VarInstance, instanceCount)
	for i := range instances {
		rec := instancesOffset + i*instanceSize
		coords := make([]float64, axisCount)
		for a := range coords {
			coords[a] = fixed1616ToFloat(u32(fvar, rec+4+4*a))
		}
		instances[i] = VarInstance{
			NameID: u16(fvar, rec),
			Coords: coords,
		}
	}
	return axes, instances, nil
}

// parseKernTable extracts horizontal pairs from the first format 0
// subtable of a version 0 kern table. Anything else yields nil.
func parseKernTable(kern []byte) map[uint32]int16 {
	if len(kern) < 4 || u16(kern, 0) != 0 {
		return nil
	}
	nTables := int(u16(kern, 2))
	off := 4
	for i := 0; i < nTables; i++ {
		if off+6 > len(kern) {
			return nil
		}
		length := int(u16(kern, off+2))
		coverage := u16(kern, off+4)
		horizontal := coverage&0x0001 != 0
		format := coverage >> 8
		if horizontal && format == 0 {
			return parseKernFormat0(kern, off+6)
		}
		if length == 0 {
			return nil
		}
		off += length
	}
	return nil
}

func parseKernFormat0(kern []byte, off int) map[uint32]int16 {
	if off+8 > len(kern) {
		return nil
	}
	nPairs := int(u16(kern, off))
	off += 8
	if off+6*nPairs > len(kern) {
		return nil
	}
	pairs := make(map[uint32]int16, nPairs)
	for i := 0; i < nPairs; i++ {
		rec := off + 6*i
		left := uint32(u16(kern, rec))
		right := uint32(u16(kern, rec+2))
		pairs[left<<16|right] = int16(u16(kern, rec+4))
	}
	return pairs
}
