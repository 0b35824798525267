package panel

// System is the single process-wide panel entity: panel id and asserted
// status flags, plus the 1..8 valid-partition block within the same table.
type System struct {
	PanelID     byte
	StatusFlags []string
}

// NewSystem returns a zero-value System.
func NewSystem() *System { return &System{} }

func (s *System) Clone() System {
	if s == nil {
		return System{}
	}
	return System{
		PanelID:     s.PanelID,
		StatusFlags: append([]string(nil), s.StatusFlags...),
	}
}

// ApplyStatus decodes a system-status payload: data[0] is panel id,
// data[1:10] are the 9 status bytes. It returns the previous flags so the
// caller can log asserted/de-asserted transitions.
func (s *System) ApplyStatus(panelID byte, statusBytes []byte) (previous []string) {
	previous = s.StatusFlags
	s.PanelID = panelID
	s.StatusFlags = flagsFromBytes(statusBytes, SystemStatusFlags[:])
	return previous
}

// ValidPartitions returns the partition numbers (1..8) asserted as valid in
// the byte8 "Valid partition N" block.
func (s *System) ValidPartitions() []int {
	var out []int
	for n := 1; n <= 8; n++ {
		name := SystemStatusFlags[8][n-1]
		for _, f := range s.StatusFlags {
			if f == name {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// IsErrorBankFlag reports whether flag belongs to one of the error-bank
// byte groups (asserted transitions for these log at error, not info).
func IsErrorBankFlag(flag string) bool {
	for group := range SystemErrorBankGroups {
		for _, name := range SystemStatusFlags[group] {
			if name == flag {
				return true
			}
		}
	}
	return false
}
