package panel

import "sync"

// Registry is the controller-owned mirror of all panel state: zone,
// partition, and user registries plus the System singleton. Zone/partition/
// user entries are created lazily on first reference and never removed for
// the process lifetime.
//
// A single mutex guards the whole registry (spec.md §5 allows either a
// per-entity mutex or a registry-wide one; the outbound message rate from a
// real panel is low enough that a single lock held only for the duration of
// one decode-and-mutate call never contends with HTTP readers in practice).
// The controller is the only caller of the Mutate* methods; HTTP handlers
// only ever call the Snapshot/clone-returning methods, so a reader can never
// observe a torn flag list.
type Registry struct {
	mu         sync.RWMutex
	zones      map[int]*Zone
	partitions map[int]*Partition
	users      map[int]*User
	system     *System
}

// NewRegistry returns an empty registry with a fresh System singleton.
func NewRegistry() *Registry {
	return &Registry{
		zones:      make(map[int]*Zone),
		partitions: make(map[int]*Partition),
		users:      make(map[int]*User),
		system:     NewSystem(),
	}
}

// MutateZone locks the registry, creates zone `number` if unknown, runs fn
// against it, then unlocks. Controller-only.
func (r *Registry) MutateZone(number int, fn func(*Zone)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok := r.zones[number]
	if !ok {
		z = NewZone(number)
		r.zones[number] = z
	}
	fn(z)
}

// ZoneSnapshot returns a clone of zone number, or false if never referenced.
func (r *Registry) ZoneSnapshot(number int) (Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[number]
	if !ok {
		return Zone{}, false
	}
	return z.Clone(), true
}

// Zones returns clones of every known zone, ordered by number.
func (r *Registry) Zones() []Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Zone, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, z.Clone())
	}
	sortZones(out)
	return out
}

// KnownZoneNumbers returns the numbers of every zone ever referenced.
func (r *Registry) KnownZoneNumbers() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.zones))
	for n := range r.zones {
		out = append(out, n)
	}
	return out
}

// MutatePartition locks the registry, creates partition `number` if
// unknown, runs fn against it, then unlocks. Controller-only.
func (r *Registry) MutatePartition(number int, fn func(*Partition)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partitions[number]
	if !ok {
		p = NewPartition(number)
		r.partitions[number] = p
	}
	fn(p)
}

// PartitionSnapshot returns a clone of partition number, or false if unknown.
func (r *Registry) PartitionSnapshot(number int) (Partition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.partitions[number]
	if !ok {
		return Partition{}, false
	}
	return p.Clone(), true
}

// Partitions returns clones of every known partition, ordered by number.
func (r *Registry) Partitions() []Partition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Partition, 0, len(r.partitions))
	for _, p := range r.partitions {
		out = append(out, p.Clone())
	}
	sortPartitions(out)
	return out
}

// MutateUser locks the registry, creates user `number` if unknown, runs fn
// against it, then unlocks. Controller-only.
func (r *Registry) MutateUser(number int, fn func(*User)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[number]
	if !ok {
		u = NewUser(number)
		r.users[number] = u
	}
	fn(u)
}

// UserSnapshot returns a clone of user number and whether it has ever been
// referenced at all (not whether it is Known from the panel).
func (r *Registry) UserSnapshot(number int) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[number]
	if !ok {
		return User{}, false
	}
	return u.Clone(), true
}

// EnsureUser creates user `number` if it has never been referenced, without
// mutating an existing one.
func (r *Registry) EnsureUser(number int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[number]; !ok {
		r.users[number] = NewUser(number)
	}
}

// MutateSystem locks the registry, runs fn against the System singleton,
// then unlocks. Controller-only.
func (r *Registry) MutateSystem(fn func(*System)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.system)
}

// SystemSnapshot returns a clone of the System singleton.
func (r *Registry) SystemSnapshot() System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.system.Clone()
}

func sortZones(zs []Zone) {
	for i := 1; i < len(zs); i++ {
		for j := i; j > 0 && zs[j-1].Number > zs[j].Number; j-- {
			zs[j-1], zs[j] = zs[j], zs[j-1]
		}
	}
}

func sortPartitions(ps []Partition) {
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && ps[j-1].Number > ps[j].Number; j-- {
			ps[j-1], ps[j] = ps[j], ps[j-1]
		}
	}
}
