package core

import "fmt"

// IdentifierPool hands out small integer ids for owners and resolves them
// back. Released slots are reused, so holders of an id must tolerate the
// owner having changed; Lookup returning nil means the owner is gone.
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool(initialSize int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, initialSize),
	}
}

func (ip *IdentifierPool) AcquireNewID(owner interface{}) uint32 {
	length := uint32(len(ip.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if ip.owners[i] == nil {
			ip.owners[i] = owner
			return i
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	// This means the id will be length - 1
	ip.owners = append(ip.owners, owner)
	return uint32(len(ip.owners)) - 1
}

func (ip *IdentifierPool) ReleaseID(id uint32) error {
	length := uint32(len(ip.owners))
	if id >= length {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, length)
	}
	// Just zero out the entry, making it available for use.
	ip.owners[id] = nil
	return nil
}

func (ip *IdentifierPool) Lookup(id uint32) interface{} {
	if id >= uint32(len(ip.owners)) {
		return nil
	}
	return ip.owners[id]
}
