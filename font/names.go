package font

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// maxInstanceNameLen is the longest synthesized textual instance name.
// Past this the hashed form is emitted instead.
const maxInstanceNameLen = 128

// Name table platform IDs.
const (
	platformUnicode   = 0
	platformMacintosh = 1
	platformMicrosoft = 3
)

// Microsoft platform encoding IDs.
const (
	msEncodingSymbol      = 0
	msEncodingUnicodeBMP  = 1
	msEncodingShiftJIS    = 2
	msEncodingPRC         = 3
	msEncodingBig5        = 4
	msEncodingWansung     = 5
	msEncodingUnicodeFull = 10
)

// utf16be decodes big-endian UTF-16 without BOM handling, the layout
// both the Unicode and Microsoft platforms use for name strings.
var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// nameDecoder returns the x/text decoder for a name record's
// platform/encoding pair, or false if the combination is unsupported.
func nameDecoder(platformID, encodingID uint16) (*encoding.Decoder, bool) {
	switch platformID {
	case platformUnicode:
		return utf16be.NewDecoder(), true
	case platformMacintosh:
		if encodingID == 0 {
			return charmap.Macintosh.NewDecoder(), true
		}
	case platformMicrosoft:
		switch encodingID {
		case msEncodingSymbol, msEncodingUnicodeBMP, msEncodingUnicodeFull:
			return utf16be.NewDecoder(), true
		case msEncodingShiftJIS:
			return japanese.ShiftJIS.NewDecoder(), true
		case msEncodingPRC:
			return simplifiedchinese.GBK.NewDecoder(), true
		case msEncodingBig5:
			return traditionalchinese.Big5.NewDecoder(), true
		case msEncodingWansung:
			return korean.EUCKR.NewDecoder(), true
		}
	}
	return nil, false
}

// decodeNameRecord decodes one raw name record to a Go string.
func decodeNameRecord(rec NameRecord) (string, error) {
	dec, ok := nameDecoder(rec.PlatformID, rec.EncodingID)
	if !ok {
		return "", &EncodingError{PlatformID: rec.PlatformID, EncodingID: rec.EncodingID}
	}
	out, err := dec.Bytes(rec.Raw)
	if err != nil {
		return "", &EncodingError{PlatformID: rec.PlatformID, EncodingID: rec.EncodingID}
	}
	return string(out), nil
}

// lookupName finds and decodes the best name record for nameID.
// Microsoft Unicode records are preferred, then Unicode, then the
// rest in table order. Returns "" when no record carries the ID; an
// *EncodingError only when every matching record is undecodable.
func lookupName(records []NameRecord, nameID uint16) (string, error) {
	best := -1
	bestScore := -1
	var firstErr error

	for i, rec := range records {
		if rec.NameID != nameID {
			continue
		}
		if _, ok := nameDecoder(rec.PlatformID, rec.EncodingID); !ok {
			if firstErr == nil {
				firstErr = &EncodingError{PlatformID: rec.PlatformID, EncodingID: rec.EncodingID}
			}
			continue
		}
		score := 0
		switch {
		case rec.PlatformID == platformMicrosoft && rec.EncodingID == msEncodingUnicodeBMP:
			score = 3
		case rec.PlatformID == platformMicrosoft && rec.EncodingID == msEncodingUnicodeFull:
			score = 2
		case rec.PlatformID == platformUnicode:
			score = 1
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		if firstErr != nil {
			return "", firstErr
		}
		return "", nil
	}
	return decodeNameRecord(records[best])
}

// SyntheticInstanceName produces the stable display name of one
// variation of a font, used as the namespace prefix for glyph resource
// lookups. The name is independent of native instance indices.
//
// A default request names the base family. An axis-coordinate request
// produces "base-<value><tag>..." with each value quantized to the
// same 16.16 precision used for the actual font configuration, so
// inputs differing only below that granularity synthesize identical
// names; when the textual form would exceed 128 characters the name
// falls back to a SHA-256 over the packed (tag, coordinate) pairs. A
// named-instance request yields the instance's own name with the
// literal substring "Regular" removed and any trailing hyphen
// trimmed, keeping default-weight names uncluttered while preserving
// qualifiers like "Italic".
func SyntheticInstanceName(base string, v *Variation, table *VariationTable) string {
	if table == nil || v.IsDefault() {
		return base
	}

	if len(v.Axes) > 0 {
		return synthesizeAxisName(base, v.Axes, table)
	}

	name := v.Instance
	if i, ok := table.InstanceIndex(v.Instance); ok {
		name = table.instanceNames[i]
	}
	if cleaned := cleanInstanceName(name); cleaned != "" {
		return cleaned
	}
	return base
}

// synthesizeAxisName builds the textual axis-coordinate name, falling
// back to the hashed form past maxInstanceNameLen.
func synthesizeAxisName(base string, axes map[string]float64, table *VariationTable) string {
	var b strings.Builder
	b.WriteString(base)
	for _, axis := range table.axes {
		value, ok := axes[axis.Tag]
		if !ok {
			continue
		}
		q := Fixed1616FromFloat(value)
		b.WriteByte('-')
		b.WriteString(formatAxisValue(q.Float()))
		b.WriteString(axis.Tag)
	}
	name := b.String()
	if len(name) <= maxInstanceNameLen {
		return name
	}
	return base + "-" + hashAxisName(axes, table)
}

// formatAxisValue renders a quantized axis value with at most 5
// significant digits, always in plain decimal notation. FormatFloat's
// 'g' verb switches to exponent form outside [1e-4, 1e5), so those
// values are re-rendered after the significant-digit rounding.
func formatAxisValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', 5, 64)
	if !strings.ContainsAny(s, "eE") {
		return s
	}
	rounded, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// hashAxisName packs the requested (tag, 16.16 coordinate) pairs in
// table order and returns the lowercase hex SHA-256 of the packing.
// Stable for the same axis set regardless of map iteration order.
func hashAxisName(axes map[string]float64, table *VariationTable) string {
	h := sha256.New()
	var buf [8]byte
	for _, axis := range table.axes {
		value, ok := axes[axis.Tag]
		if !ok {
			continue
		}
		copy(buf[:4], axis.Tag)
		binary.BigEndian.PutUint32(buf[4:], uint32(Fixed1616FromFloat(value)))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// cleanInstanceName strips the "Regular" qualifier from a named
// instance and trims what it leaves behind.
func cleanInstanceName(name string) string {
	s := strings.ReplaceAll(name, "Regular", "")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "-")
	return strings.TrimSpace(s)
}
