package scene

import (
	"testing"

	"github.com/google/uuid"
)

type hitPoints struct{ value int }

type destroyCounter struct{ calls int }

func (d *destroyCounter) Destroy() { d.calls++ }

func TestWorldFindSearchesDescendants(t *testing.T) {
	w := NewWorld()
	menu := w.CreateContainer("MenuState")
	level := w.CreateContainer("LevelState")
	player := NewEntity("player")
	sword := NewEntity("sword")
	level.AddChild(player)
	player.AddChild(sword)

	if got := w.FindByID(sword.ID); got != sword {
		t.Errorf("FindByID must reach nested entities, got %v", got)
	}
	if got := w.FindByID(menu.ID); got != menu {
		t.Error("FindByID must find containers")
	}
	if got := w.FindByID(uuid.New()); got != nil {
		t.Errorf("Expected nil for an unknown id, got %s", got.Name)
	}
	if got := w.FindByName("player"); got != player {
		t.Errorf("FindByName returned %v", got)
	}
	if w.Count() != 4 {
		t.Errorf("Expected 4 entities, got %d", w.Count())
	}

	w.DestroyContainer(level)
	if w.FindByName("sword") != nil || w.FindByID(player.ID) != nil {
		t.Error("entities under a destroyed container must not be found")
	}
	if !sword.Destroyed() || len(w.Roots) != 1 {
		t.Errorf("destroyed %t roots %d", sword.Destroyed(), len(w.Roots))
	}
}

func TestEntityRemoveComponent(t *testing.T) {
	e := NewEntity("enemy")
	hp := &hitPoints{value: 3}
	counter := &destroyCounter{}
	e.AddComponent(hp)
	e.AddComponent(counter)

	if !e.RemoveComponent(hp) {
		t.Fatal("RemoveComponent must report an attached component")
	}
	if e.RemoveComponent(hp) {
		t.Error("second RemoveComponent must report false")
	}
	if _, ok := GetComponent[*hitPoints](e); ok {
		t.Error("removed component is still found")
	}
	// equal values are not the same component
	if e.RemoveComponent(&destroyCounter{}) {
		t.Error("RemoveComponent must compare by identity")
	}

	e.Destroy()
	e.Destroy()
	if counter.calls != 1 {
		t.Errorf("Expected Destroy once, got %d", counter.calls)
	}
}
