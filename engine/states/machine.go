package states

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima/engine/core"
)

var (
	ErrDuplicateState = errors.New("state kind already registered")
	ErrUnknownState   = errors.New("state kind not registered")
	ErrMachineRunning = errors.New("state machine already started")
	ErrMissingEnv     = errors.New("state machine environment incomplete")
)

// Environment is what asset-backed states need from the engine.
type Environment struct {
	Provider   AssetProvider
	Host       ObjectHost
	Events     *core.EventSystem
	References ReferenceLookup
	// Context is the parent of every acquisition context. Defaults to
	// context.Background().
	Context context.Context
}

// Machine owns the one long-lived instance of every state kind and the root
// of the active hierarchy.
type Machine struct {
	env         Environment
	owners      *core.IdentifierPool
	states      map[string]State
	assetStates []*AssetState
	root        State
}

func NewMachine(env Environment) (*Machine, error) {
	if env.Provider == nil || env.Host == nil {
		return nil, fmt.Errorf("%w: provider and host are required", ErrMissingEnv)
	}
	if env.Events == nil {
		env.Events = core.NewEventSystem()
	}
	if env.References == nil {
		env.References = ReferenceSets{}
	}
	if env.Context == nil {
		env.Context = context.Background()
	}
	return &Machine{
		env:    env,
		owners: core.NewIdentifierPool(16),
		states: make(map[string]State),
	}, nil
}

func (m *Machine) Events() *core.EventSystem {
	return m.env.Events
}

// Register makes s reachable by its kind.
func (m *Machine) Register(s State) error {
	kind := s.Kind()
	if _, ok := m.states[kind]; ok {
		return fmt.Errorf("%s: %w", kind, ErrDuplicateState)
	}
	m.states[kind] = s
	core.LogDebug("state '%s' registered", kind)
	return nil
}

func (m *Machine) Get(kind string) (State, bool) {
	s, ok := m.states[kind]
	return s, ok
}

// Lookup returns the registered state of the given kind as T.
func Lookup[T State](m *Machine, kind string) (T, error) {
	var zero T
	s, ok := m.Get(kind)
	if !ok {
		return zero, fmt.Errorf("%s: %w", kind, ErrUnknownState)
	}
	t, ok := s.(T)
	if !ok {
		return zero, fmt.Errorf("state '%s' is %T, not %T", kind, s, zero)
	}
	return t, nil
}

// Start activates the state registered as kind as the root of the hierarchy.
func (m *Machine) Start(kind string) error {
	if m.root != nil {
		return fmt.Errorf("%w with root '%s'", ErrMachineRunning, m.root.Kind())
	}
	root, ok := m.states[kind]
	if !ok {
		return fmt.Errorf("%s: %w", kind, ErrUnknownState)
	}
	m.root = root
	core.LogInfo("starting state machine at '%s'", kind)
	root.SwitchState(root)
	return nil
}

func (m *Machine) Root() State {
	return m.root
}

// Active returns the kinds of the active states from the root down.
func (m *Machine) Active() []string {
	var out []string
	for s := m.root; s != nil; {
		out = append(out, s.Kind())
		next := s.Current()
		if next == s {
			next = nil
		}
		s = next
	}
	return out
}

// Shutdown exits the whole hierarchy and invalidates every self-release
// handle still held by spawned objects.
func (m *Machine) Shutdown() {
	if m.root != nil {
		core.LogInfo("stopping state machine at '%s'", m.root.Kind())
		m.root.Exit()
		m.root = nil
	}
	for _, as := range m.assetStates {
		if err := m.owners.ReleaseID(as.ownerID); err != nil {
			core.LogWarn(err.Error())
		}
	}
	m.assetStates = nil
}

func (m *Machine) trackAssetState(as *AssetState) uint32 {
	m.assetStates = append(m.assetStates, as)
	return m.owners.AcquireNewID(as)
}
