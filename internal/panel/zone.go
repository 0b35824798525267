package panel

// Zone is a single sensor input on the panel, identified by a 1-based number.
type Zone struct {
	Number         int
	Name           string
	State          bool
	ConditionFlags []string
	TypeFlags      []string
}

// NewZone returns a freshly created zone with default name "Unknown".
func NewZone(number int) *Zone {
	return &Zone{Number: number, Name: "Unknown"}
}

// Bypassed is true when either "Inhibit" or "Bypass" is asserted.
func (z *Zone) Bypassed() bool {
	for _, f := range z.ConditionFlags {
		if f == "Inhibit" || f == "Bypass" {
			return true
		}
	}
	return false
}

// Clone returns a value copy safe for concurrent reads (slices re-sliced,
// not mutated in place by any writer).
func (z *Zone) Clone() Zone {
	if z == nil {
		return Zone{}
	}
	return Zone{
		Number:         z.Number,
		Name:           z.Name,
		State:          z.State,
		ConditionFlags: append([]string(nil), z.ConditionFlags...),
		TypeFlags:      append([]string(nil), z.TypeFlags...),
	}
}

// ApplyStatus decodes a zone-status payload (data[2:5] type bytes, data[5]
// condition byte) into the zone, replacing ConditionFlags/TypeFlags/State.
func (z *Zone) ApplyStatus(condition byte, typeBytes []byte) {
	z.State = condition&0x01 != 0
	z.ConditionFlags = flagsFromByte(condition, ZoneConditionFlags)
	z.TypeFlags = flagsFromBytes(typeBytes, ZoneTypeFlags[:])
}

// Interior reports whether the zone's type flags include "Interior".
func (z *Zone) Interior() bool {
	for _, f := range z.TypeFlags {
		if f == "Interior" {
			return true
		}
	}
	return false
}
