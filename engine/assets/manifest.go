package assets

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/states"
)

type manifestFile struct {
	Sets []manifestSet `toml:"set"`
}

type manifestSet struct {
	Name       string   `toml:"name"`
	Parent     string   `toml:"parent"`
	Spawnables []string `toml:"spawnables"`
	Data       []string `toml:"data"`
}

// Manifest holds the reference sets declared in a *.manifest.toml file.
// References are interned: the same address always yields the same ref, so
// sets sharing an address share the ref.
type Manifest struct {
	sets       states.ReferenceSets
	order      []string
	spawnables map[string]*states.SpawnableRef
	data       map[string]*states.DataRef
}

func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest '%s': %w", path, err)
	}
	return m, nil
}

func ParseManifest(raw []byte) (*Manifest, error) {
	var file manifestFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	m := &Manifest{
		sets:       make(states.ReferenceSets),
		spawnables: make(map[string]*states.SpawnableRef),
		data:       make(map[string]*states.DataRef),
	}
	for _, s := range file.Sets {
		if s.Name == "" {
			return nil, fmt.Errorf("set without a name")
		}
		if _, ok := m.sets[s.Name]; ok {
			return nil, fmt.Errorf("set '%s' declared twice", s.Name)
		}
		spawnables := make([]*states.SpawnableRef, 0, len(s.Spawnables))
		for _, addr := range s.Spawnables {
			spawnables = append(spawnables, m.SpawnableRef(addr))
		}
		data := make([]*states.DataRef, 0, len(s.Data))
		for _, addr := range s.Data {
			data = append(data, m.DataRef(addr))
		}
		m.sets.Add(states.NewReferenceSet(s.Name, spawnables, data))
		m.order = append(m.order, s.Name)
	}

	for _, s := range file.Sets {
		if s.Parent == "" {
			continue
		}
		parent, ok := m.sets[s.Parent]
		if !ok {
			return nil, fmt.Errorf("set '%s': unknown parent '%s'", s.Name, s.Parent)
		}
		if err := m.sets[s.Name].SetParent(parent); err != nil {
			return nil, fmt.Errorf("set '%s': %w", s.Name, err)
		}
	}

	m.reconcile()
	return m, nil
}

// reconcile warns about entries a set repeats from its parent chain. They
// are harmless, acquisition deduplicates them.
func (m *Manifest) reconcile() {
	for _, name := range m.order {
		for _, d := range m.sets[name].Duplicates() {
			core.LogWarn("reference set %s lists '%s' which %s already provides", name, d.Address, d.In)
		}
	}
}

func (m *Manifest) ReferenceSet(name string) (*states.ReferenceSet, bool) {
	return m.sets.ReferenceSet(name)
}

// SpawnableRef returns the interned ref for address, creating it if needed.
func (m *Manifest) SpawnableRef(address string) *states.SpawnableRef {
	ref, ok := m.spawnables[address]
	if !ok {
		ref = states.NewSpawnableRef(address)
		m.spawnables[address] = ref
	}
	return ref
}

func (m *Manifest) DataRef(address string) *states.DataRef {
	ref, ok := m.data[address]
	if !ok {
		ref = states.NewDataRef(address)
		m.data[address] = ref
	}
	return ref
}
