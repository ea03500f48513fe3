package states

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
)

// SelfReleasingHandle is attached to every spawned object and lets the
// object ask its owning state to release it early. It holds the owner's
// id, not the owner, and the handle id the owner validates before removing.
type SelfReleasingHandle struct {
	owners   *core.IdentifierPool
	ownerID  uint32
	handleID uuid.UUID
	entity   *scene.Entity
}

func (h *SelfReleasingHandle) Attach(e *scene.Entity) {
	h.entity = e
}

// Release forwards to the owning state. Releasing an object that is no
// longer owned (twice, or after the state exited) returns *core.OwnershipError.
func (h *SelfReleasingHandle) Release() error {
	name := "<detached>"
	if h.entity != nil {
		name = h.entity.Name
	}
	owner, ok := h.owners.Lookup(h.ownerID).(*AssetState)
	if !ok {
		err := &core.OwnershipError{State: "<released>", Object: name}
		core.LogError(err.Error())
		return err
	}
	return owner.releaseOwned(h.handleID, name)
}
