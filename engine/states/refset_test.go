package states

import (
	"errors"
	"testing"
)

func TestEffectiveSpawnablesWalksParentChain(t *testing.T) {
	root := NewReferenceSet("RootState_Prefabs", spawnRefs("ui/loading", "audio/music"), dataRefs("settings"))
	level := NewReferenceSet("LevelState_Prefabs", spawnRefs("level/terrain"), dataRefs("level/config"))
	boss := NewReferenceSet("BossLevelState_Prefabs", spawnRefs("level/boss", "level/arena", "fx/fog"), nil)
	if err := level.SetParent(root); err != nil {
		t.Fatal(err)
	}
	if err := boss.SetParent(level); err != nil {
		t.Fatal(err)
	}

	got := boss.EffectiveSpawnables()
	if len(got) != 6 {
		t.Fatalf("Expected 6 effective spawnables, got %d", len(got))
	}
	want := []string{"level/boss", "level/arena", "fx/fog", "level/terrain", "ui/loading", "audio/music"}
	for i, ref := range got {
		if ref.Address != want[i] {
			t.Errorf("spawnable %d: expected %s, got %s", i, want[i], ref.Address)
		}
	}

	data := boss.EffectiveDataRefs()
	if len(data) != 2 || data[0].Address != "level/config" || data[1].Address != "settings" {
		t.Errorf("unexpected effective data refs: %v", data)
	}
}

func TestEffectiveSpawnablesDeduplicatesOnChildSide(t *testing.T) {
	shared := NewSpawnableRef("ui/hud")
	parentOnly := NewSpawnableRef("ui/pause")
	childOnly := NewSpawnableRef("level/player")

	parent := NewReferenceSet("parent", []*SpawnableRef{parentOnly, shared}, nil)
	child := NewReferenceSet("child", []*SpawnableRef{shared, childOnly}, nil)
	if err := child.SetParent(parent); err != nil {
		t.Fatal(err)
	}

	got := child.EffectiveSpawnables()
	if len(got) != 3 {
		t.Fatalf("Expected 3 refs, got %d", len(got))
	}
	count := 0
	for _, ref := range got {
		if ref == shared {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared ref appears %d times", count)
	}
	// the child's position wins
	if got[0] != shared || got[1] != childOnly || got[2] != parentOnly {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestEffectiveRefsUseIdentityNotAddress(t *testing.T) {
	parent := NewReferenceSet("parent", spawnRefs("same"), nil)
	child := NewReferenceSet("child", spawnRefs("same"), nil)
	_ = child.SetParent(parent)

	if n := len(child.EffectiveSpawnables()); n != 2 {
		t.Errorf("distinct refs with equal addresses must both resolve, got %d", n)
	}
}

func TestSetParentRejectsCycle(t *testing.T) {
	a := NewReferenceSet("a", nil, nil)
	b := NewReferenceSet("b", nil, nil)
	if err := b.SetParent(a); err != nil {
		t.Fatal(err)
	}
	if err := a.SetParent(b); !errors.Is(err, ErrReferenceCycle) {
		t.Errorf("expected ErrReferenceCycle, got %v", err)
	}
	if err := a.SetParent(a); !errors.Is(err, ErrReferenceCycle) {
		t.Errorf("expected ErrReferenceCycle for self parent, got %v", err)
	}
	if a.Parent() != nil {
		t.Error("rejected parent must not be assigned")
	}
}

func TestDuplicatesReportsAncestorOwner(t *testing.T) {
	shared := NewDataRef("settings")
	root := NewReferenceSet("root", nil, []*DataRef{shared})
	mid := NewReferenceSet("mid", nil, nil)
	leaf := NewReferenceSet("leaf", spawnRefs("x"), []*DataRef{shared})
	_ = mid.SetParent(root)
	_ = leaf.SetParent(mid)

	dups := leaf.Duplicates()
	if len(dups) != 1 {
		t.Fatalf("Expected 1 duplicate, got %d", len(dups))
	}
	if dups[0].Address != "settings" || dups[0].In != "root" {
		t.Errorf("unexpected duplicate %+v", dups[0])
	}
	if root.Duplicates() != nil {
		t.Error("a set without parent has no duplicates")
	}
}

func TestSetName(t *testing.T) {
	if got := SetName("MenuState"); got != "MenuState_Prefabs" {
		t.Errorf("SetName = %s", got)
	}
}
