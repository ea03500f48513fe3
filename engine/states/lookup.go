package states

import (
	"reflect"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
)

// Scope selects how far FindOwned looks from each owned root entity.
type Scope int

const (
	// Only the owned entity itself.
	ScopeExact Scope = iota
	// The owned entity and its ancestors.
	ScopeAncestors
	// The owned entity and its descendants.
	ScopeDescendants
)

func (s Scope) String() string {
	switch s {
	case ScopeExact:
		return "exact"
	case ScopeAncestors:
		return "ancestors"
	case ScopeDescendants:
		return "descendants"
	default:
		return "unknown"
	}
}

// FindOwned returns the first component of type T found on the spawned
// objects the state owns. A miss is logged and returned as *core.LookupError.
func FindOwned[T any](as *AssetState, scope Scope) (T, error) {
	core.LogDebug("%s => find owned %s (%s)", as.kind, typeName[T](), scope)
	for _, h := range as.spawned {
		var c T
		var ok bool
		switch scope {
		case ScopeAncestors:
			c, ok = scene.GetComponentInParent[T](h.Object)
		case ScopeDescendants:
			c, ok = scene.GetComponentInChildren[T](h.Object)
		default:
			c, ok = scene.GetComponent[T](h.Object)
		}
		if ok {
			return c, nil
		}
	}
	var zero T
	err := &core.LookupError{State: as.kind, Target: typeName[T](), Scope: scope.String()}
	core.LogError(err.Error())
	return zero, err
}

// FindOwnedData returns the owned data object whose value is a T.
func FindOwnedData[T any](as *AssetState) (T, error) {
	for _, h := range as.data {
		if v, ok := h.Value.(T); ok {
			return v, nil
		}
	}
	var zero T
	err := &core.LookupError{State: as.kind, Target: typeName[T]()}
	core.LogError(err.Error())
	return zero, err
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
