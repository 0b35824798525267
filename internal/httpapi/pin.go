package httpapi

import "github.com/nx584/panelgw/internal/panel"

// parsePin accepts a 4 or 6 digit PIN string and returns the 6-element
// digit array PackPin expects. A 4-digit PIN is padded per spec.md §6 "4
// digit pads with [15,15]" — two PinUnset digits appended after the 4
// entered ones (matching the controller's disarm padding, see
// internal/controller/commands.go padPin4).
func parsePin(s string) ([6]int, bool) {
	var out [6]int
	switch len(s) {
	case 4:
		for i := 0; i < 4; i++ {
			d, ok := digit(s[i])
			if !ok {
				return out, false
			}
			out[i] = d
		}
		out[4], out[5] = panel.PinUnset, panel.PinUnset
		return out, true
	case 6:
		for i := 0; i < 6; i++ {
			d, ok := digit(s[i])
			if !ok {
				return out, false
			}
			out[i] = d
		}
		return out, true
	default:
		return out, false
	}
}

func digit(b byte) (int, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	return int(b - '0'), true
}

// parseDisarmPin4 parses an exactly-4-digit PIN for EnqueueDisarm, which
// takes a [4]int (the controller itself does the padding-to-6 step); any
// other length is rejected.
func parseDisarmPin4(s string) ([4]int, bool) {
	var out [4]int
	if len(s) != 4 {
		return out, false
	}
	for i := 0; i < 4; i++ {
		d, ok := digit(s[i])
		if !ok {
			return out, false
		}
		out[i] = d
	}
	return out, true
}

// clearedPin returns an all-unset 6-digit PIN, for PUT /users/{n} with a
// null "pin" body field.
func clearedPin() [6]int {
	return [6]int{panel.PinUnset, panel.PinUnset, panel.PinUnset, panel.PinUnset, panel.PinUnset, panel.PinUnset}
}
