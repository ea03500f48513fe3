package states

import (
	"errors"
	"fmt"
)

var ErrReferenceCycle = errors.New("reference set parent chain forms a cycle")

// SpawnableRef identifies a prefab that is instantiated into the world.
// Refs are compared by pointer identity.
type SpawnableRef struct {
	Address string
}

// DataRef identifies a data asset that is loaded but never spawned.
// Refs are compared by pointer identity.
type DataRef struct {
	Address string
}

func NewSpawnableRef(address string) *SpawnableRef {
	return &SpawnableRef{Address: address}
}

func NewDataRef(address string) *DataRef {
	return &DataRef{Address: address}
}

func (r *SpawnableRef) String() string { return r.Address }
func (r *DataRef) String() string      { return r.Address }

// SetName is the name under which a state kind's references are stored.
func SetName(kind string) string {
	return fmt.Sprintf("%s_Prefabs", kind)
}

// ReferenceSet lists the assets one state kind needs. Sets chain to a parent
// mirroring the state kind hierarchy; the chain is read-only while states run.
type ReferenceSet struct {
	name       string
	parent     *ReferenceSet
	spawnables []*SpawnableRef
	data       []*DataRef
}

func NewReferenceSet(name string, spawnables []*SpawnableRef, data []*DataRef) *ReferenceSet {
	return &ReferenceSet{
		name:       name,
		spawnables: append([]*SpawnableRef(nil), spawnables...),
		data:       append([]*DataRef(nil), data...),
	}
}

func (rs *ReferenceSet) Name() string {
	return rs.name
}

func (rs *ReferenceSet) Parent() *ReferenceSet {
	return rs.parent
}

// SetParent reassigns the parent link. Only the reconciliation pass that
// builds sets from the manifest calls it.
func (rs *ReferenceSet) SetParent(parent *ReferenceSet) error {
	for p := parent; p != nil; p = p.parent {
		if p == rs {
			return fmt.Errorf("%s -> %s: %w", rs.name, parent.name, ErrReferenceCycle)
		}
	}
	rs.parent = parent
	return nil
}

// Spawnables returns this set's own entries, without the parent's.
func (rs *ReferenceSet) Spawnables() []*SpawnableRef {
	return append([]*SpawnableRef(nil), rs.spawnables...)
}

// DataRefs returns this set's own entries, without the parent's.
func (rs *ReferenceSet) DataRefs() []*DataRef {
	return append([]*DataRef(nil), rs.data...)
}

// EffectiveSpawnables returns the own entries followed by every ancestor's,
// skipping refs already seen closer to this set.
func (rs *ReferenceSet) EffectiveSpawnables() []*SpawnableRef {
	return effective(rs, func(s *ReferenceSet) []*SpawnableRef { return s.spawnables })
}

// EffectiveDataRefs is EffectiveSpawnables for data refs.
func (rs *ReferenceSet) EffectiveDataRefs() []*DataRef {
	return effective(rs, func(s *ReferenceSet) []*DataRef { return s.data })
}

// Duplicate is an own entry of a set that an ancestor also lists.
type Duplicate struct {
	Address string
	In      string
}

// Duplicates reports own entries that the parent chain already provides.
func (rs *ReferenceSet) Duplicates() []Duplicate {
	if rs.parent == nil {
		return nil
	}
	var out []Duplicate
	for _, ref := range rs.spawnables {
		if owner := findOwner(rs.parent, func(s *ReferenceSet) []*SpawnableRef { return s.spawnables }, ref); owner != nil {
			out = append(out, Duplicate{Address: ref.Address, In: owner.name})
		}
	}
	for _, ref := range rs.data {
		if owner := findOwner(rs.parent, func(s *ReferenceSet) []*DataRef { return s.data }, ref); owner != nil {
			out = append(out, Duplicate{Address: ref.Address, In: owner.name})
		}
	}
	return out
}

func effective[T comparable](rs *ReferenceSet, own func(*ReferenceSet) []T) []T {
	var out []T
	seen := make(map[T]struct{})
	for s := rs; s != nil; s = s.parent {
		for _, ref := range own(s) {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

func findOwner[T comparable](rs *ReferenceSet, own func(*ReferenceSet) []T, ref T) *ReferenceSet {
	for s := rs; s != nil; s = s.parent {
		for _, r := range own(s) {
			if r == ref {
				return s
			}
		}
	}
	return nil
}

// ReferenceLookup resolves a reference set by name.
type ReferenceLookup interface {
	ReferenceSet(name string) (*ReferenceSet, bool)
}

// ReferenceSets is a ReferenceLookup backed by a map keyed by set name.
type ReferenceSets map[string]*ReferenceSet

func (r ReferenceSets) ReferenceSet(name string) (*ReferenceSet, bool) {
	rs, ok := r[name]
	return rs, ok
}

func (r ReferenceSets) Add(rs *ReferenceSet) {
	r[rs.name] = rs
}
