package font

import (
	"fmt"
)

// Variation is a request for a point in a variable font's design
// space. The zero value (and a nil *Variation) means "font default".
//
// If Axes is non-empty it takes precedence over Instance, even when
// both are supplied.
type Variation struct {
	// Instance selects a named instance by its display name.
	Instance string

	// Axes maps 4-character axis tags to floating design values.
	// Tags the target font does not declare are silently ignored, so
	// one request can be reused across fonts with different axis sets.
	Axes map[string]float64
}

// IsDefault reports whether the request selects the font default.
func (v *Variation) IsDefault() bool {
	return v == nil || (v.Instance == "" && len(v.Axes) == 0)
}

// RawVariation is a Variation resolved against one font's
// VariationTable, in the units the native rasterizer understands.
// Exactly one of Instance and Coords is populated.
type RawVariation struct {
	// Instance is the 1-based native named-instance index; 0 means
	// "no named instance selected".
	Instance int

	// Coords holds one 16.16 design coordinate per axis of the font,
	// in table order. Slots whose Explicit flag is unset were not
	// requested and carry no meaning: the rasterizer keeps its default
	// for those axes.
	Coords   []Fixed1616
	Explicit []bool
}

// VariationTable maps human-readable axis tags and named-instance
// names to the raw indices and coordinates the native rasterizer
// understands. It is built exactly once, during Handle load, for
// variable fonts only, and is read-only afterward: concurrent lookups
// need no locking.
type VariationTable struct {
	axes          []VarAxis
	axisIndex     map[string]int
	instanceIndex map[string]int // 0-based
	instanceNames []string       // table order
}

// newVariationTable builds the table from an opened variable face.
// Instance names are decoded from the face's name table; an entry
// with an unsupported platform/encoding combination fails the build
// with *EncodingError.
func newVariationTable(face RasterFace) (*VariationTable, error) {
	axes := face.Axes()
	t := &VariationTable{
		axes:          axes,
		axisIndex:     make(map[string]int, len(axes)),
		instanceIndex: make(map[string]int),
	}
	for i, axis := range axes {
		t.axisIndex[axis.Tag] = i
	}

	records := face.NameRecords()
	for i, inst := range face.Instances() {
		name, err := lookupName(records, inst.NameID)
		if err != nil {
			return nil, fmt.Errorf("font: variation table: %w", err)
		}
		t.instanceNames = append(t.instanceNames, name)
		if name == "" {
			continue
		}
		if _, dup := t.instanceIndex[name]; !dup {
			t.instanceIndex[name] = i
		}
	}

	return t, nil
}

// AxisCount returns the number of design-space axes.
func (t *VariationTable) AxisCount() int {
	return len(t.axes)
}

// Axes returns the axes in table order. Callers must not modify the
// returned slice.
func (t *VariationTable) Axes() []VarAxis {
	return t.axes
}

// AxisIndex returns the table index for an axis tag.
func (t *VariationTable) AxisIndex(tag string) (int, bool) {
	i, ok := t.axisIndex[tag]
	return i, ok
}

// InstanceIndex returns the 0-based table index for a named instance.
func (t *VariationTable) InstanceIndex(name string) (int, bool) {
	i, ok := t.instanceIndex[name]
	return i, ok
}

// InstanceNames returns the decoded instance names in table order.
func (t *VariationTable) InstanceNames() []string {
	return t.instanceNames
}

// Decode resolves a variation request against this table.
//
// A default request decodes to nil. An axis-coordinate request decodes
// to a dense coordinate array sized to the font's full axis count:
// requested tags found in the table are quantized to 16.16 and marked
// explicit, unknown tags are dropped silently, and unrequested axes
// stay unset so the rasterizer applies its own defaults (omission must
// not be confused with an explicit 0). A named-instance request
// decodes to the stored index plus one, because index 0 is reserved by
// the native API for "no named instance"; an unknown name fails with
// ErrUnknownInstance, never a silent fallback.
func (t *VariationTable) Decode(v *Variation) (*RawVariation, error) {
	if v.IsDefault() {
		return nil, nil
	}

	if len(v.Axes) > 0 {
		raw := &RawVariation{
			Coords:   make([]Fixed1616, len(t.axes)),
			Explicit: make([]bool, len(t.axes)),
		}
		for tag, value := range v.Axes {
			i, ok := t.axisIndex[tag]
			if !ok {
				continue
			}
			raw.Coords[i] = Fixed1616FromFloat(value)
			raw.Explicit[i] = true
		}
		return raw, nil
	}

	i, ok := t.instanceIndex[v.Instance]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, v.Instance)
	}
	return &RawVariation{Instance: i + 1}, nil
}
