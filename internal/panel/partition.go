package panel

// Partition is a logically independent armable grouping of zones.
type Partition struct {
	Number         int
	ConditionFlags []string
	LastUser       byte
}

// NewPartition returns a freshly created, all-zero partition.
func NewPartition(number int) *Partition {
	return &Partition{Number: number}
}

// Armed is true when "Armed" is asserted.
func (p *Partition) Armed() bool {
	for _, f := range p.ConditionFlags {
		if f == "Armed" {
			return true
		}
	}
	return false
}

func (p *Partition) Clone() Partition {
	if p == nil {
		return Partition{}
	}
	return Partition{
		Number:         p.Number,
		ConditionFlags: append([]string(nil), p.ConditionFlags...),
		LastUser:       p.LastUser,
	}
}

// ApplyStatus decodes a partition-status payload's 6 condition bytes
// (data[1:5]+data[6:8]) and last-user byte (data[5]).
func (p *Partition) ApplyStatus(conditionBytes []byte, lastUser byte) {
	p.LastUser = lastUser
	p.ConditionFlags = flagsFromBytes(conditionBytes, PartitionConditionFlags[:])
}

// Diff returns the set of flags newly asserted and newly de-asserted versus
// a previous snapshot of condition flags.
func Diff(prev, cur []string) (asserted, deasserted []string) {
	prevSet := make(map[string]bool, len(prev))
	for _, f := range prev {
		prevSet[f] = true
	}
	curSet := make(map[string]bool, len(cur))
	for _, f := range cur {
		curSet[f] = true
	}
	for _, f := range cur {
		if !prevSet[f] {
			asserted = append(asserted, f)
		}
	}
	for _, f := range prev {
		if !curSet[f] {
			deasserted = append(deasserted, f)
		}
	}
	return asserted, deasserted
}
