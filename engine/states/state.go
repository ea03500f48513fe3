package states

import (
	"github.com/spaghettifunk/anima/engine/containers"
	"github.com/spaghettifunk/anima/engine/core"
)

// State is one node of the game mode hierarchy.
type State interface {
	// Kind is the stable identifier of the state, e.g. "MenuState".
	Kind() string
	Enter()
	Exit()
	SwitchState(next State)
	// Current returns the active child, the state itself for an active
	// root, or nil.
	Current() State
}

// Hooks is the game code run when a state becomes active and when it stops.
type Hooks interface {
	OnEnter()
	OnExit()
}

// HookFuncs adapts a pair of functions to Hooks. Nil functions are skipped.
type HookFuncs struct {
	Enter func()
	Exit  func()
}

func (h HookFuncs) OnEnter() {
	if h.Enter != nil {
		h.Enter()
	}
}

func (h HookFuncs) OnExit() {
	if h.Exit != nil {
		h.Exit()
	}
}

// Node holds the active child slot of a state. Every state embeds one and
// routes all transitions through SwitchState.
type Node struct {
	self      State
	current   State
	switching bool
	exiting   bool
	pending   *containers.RingQueue[State]
}

func newNode(self State) Node {
	return Node{
		self:    self,
		pending: containers.NewGrowableRingQueue[State](2),
	}
}

func (n *Node) Current() State {
	return n.current
}

// SwitchState exits the current child unless it is the node itself, then
// makes next the child and enters it. A root activates with
// root.SwitchState(root).
//
// A switch requested while this node is already switching (for example from
// a hook that runs synchronously inside Enter or Exit) is queued and runs as
// soon as the in-flight switch returns. A switch requested while the node
// itself is exiting is dropped.
func (n *Node) SwitchState(next State) {
	if n.exiting {
		core.LogWarn("%s: switch to %s requested while exiting, ignored", kindOf(n.self), kindOf(next))
		return
	}
	if n.switching {
		core.LogWarn("%s: switch to %s requested during a switch, queued", kindOf(n.self), kindOf(next))
		_ = n.pending.Enqueue(next)
		return
	}

	n.switching = true
	core.LogInfo("%s: %s => %s", kindOf(n.self), kindOf(n.current), kindOf(next))
	n.exitChild()
	n.current = next
	if next != nil {
		next.Enter()
	}
	n.switching = false

	if !n.pending.IsEmpty() {
		queued, _ := n.pending.Dequeue()
		n.SwitchState(queued)
	}
}

// exitChild clears the slot, then exits the previous child if it is not the
// node itself.
func (n *Node) exitChild() {
	cur := n.current
	n.current = nil
	if cur != nil && cur != n.self {
		cur.Exit()
	}
}

// exitNode runs the exit of the node's own state: the child first, then
// onExit. Switch requests made on the node until it returns are dropped,
// along with any still queued.
func (n *Node) exitNode(onExit func()) {
	n.exiting = true
	defer func() { n.exiting = false }()

	n.exitChild()
	for !n.pending.IsEmpty() {
		dropped, _ := n.pending.Dequeue()
		core.LogWarn("%s: queued switch to %s dropped on exit", kindOf(n.self), kindOf(dropped))
	}
	if onExit != nil {
		onExit()
	}
}

// GameState is a state without assets of its own. It only runs its hooks.
type GameState struct {
	Node
	kind   string
	hooks  Hooks
	active bool
}

// NewGameState creates a plain state. owner is the value the rest of the
// machine sees, usually the struct embedding the returned *GameState.
func NewGameState(kind string, owner State, hooks Hooks) *GameState {
	gs := &GameState{
		kind:  kind,
		hooks: hooks,
	}
	if owner == nil {
		owner = gs
	}
	gs.Node = newNode(owner)
	if gs.hooks == nil {
		gs.hooks = HookFuncs{}
	}
	return gs
}

func (gs *GameState) Kind() string {
	return gs.kind
}

func (gs *GameState) Enter() {
	if gs.active {
		core.LogDebug("%s: enter ignored, state is already active", gs.kind)
		return
	}
	gs.active = true
	gs.hooks.OnEnter()
}

// Exit runs OnExit only for a state that was entered.
func (gs *GameState) Exit() {
	if !gs.active {
		core.LogDebug("%s: exit ignored, state is not active", gs.kind)
		return
	}
	gs.active = false
	gs.exitNode(gs.hooks.OnExit)
}

func (gs *GameState) Active() bool {
	return gs.active
}

func kindOf(s State) string {
	if s == nil {
		return "<none>"
	}
	return s.Kind()
}
