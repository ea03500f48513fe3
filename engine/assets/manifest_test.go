package assets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/states"
)

const testManifest = `
[[set]]
name = "Root_Prefabs"
spawnables = ["prefabs/goblin.prefab.toml"]

[[set]]
name = "Level_Prefabs"
parent = "Root_Prefabs"
spawnables = ["prefabs/goblin.prefab.toml"]
data = ["data/easy.data.toml"]
`

func TestParseManifestInternsReferences(t *testing.T) {
	buf := captureLogs(t)
	m, err := ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatal(err)
	}

	level, ok := m.ReferenceSet("Level_Prefabs")
	if !ok {
		t.Fatal("Level_Prefabs missing")
	}
	root, _ := m.ReferenceSet("Root_Prefabs")
	if level.Parent() != root {
		t.Error("parent not linked")
	}
	if level.Spawnables()[0] != root.Spawnables()[0] {
		t.Error("the same address must yield the same ref")
	}
	if m.SpawnableRef("prefabs/goblin.prefab.toml") != root.Spawnables()[0] {
		t.Error("lookups must return the interned ref")
	}
	if n := len(level.EffectiveSpawnables()); n != 1 {
		t.Errorf("Expected the duplicate collapsed to 1 spawnable, got %d", n)
	}
	if !strings.Contains(buf.String(), "Root_Prefabs already provides") {
		t.Errorf("duplicate not reported: %s", buf.String())
	}
}

func TestParseManifestRejectsBadParents(t *testing.T) {
	_, err := ParseManifest([]byte("[[set]]\nname = \"A_Prefabs\"\nparent = \"Nope\"\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown parent") {
		t.Errorf("Expected unknown parent error, got %v", err)
	}

	cycle := "[[set]]\nname = \"A\"\nparent = \"B\"\n[[set]]\nname = \"B\"\nparent = \"A\"\n"
	if _, err := ParseManifest([]byte(cycle)); !errors.Is(err, states.ErrReferenceCycle) {
		t.Errorf("Expected ErrReferenceCycle, got %v", err)
	}

	dup := "[[set]]\nname = \"A\"\n[[set]]\nname = \"A\"\n"
	if _, err := ParseManifest([]byte(dup)); err == nil {
		t.Error("duplicate set names must fail")
	}
}

type levelState struct {
	*states.AssetState
	entered int
	exited  int
}

func (l *levelState) OnEnter() { l.entered++ }
func (l *levelState) OnExit()  { l.exited++ }

func TestStateLoadsFromFiles(t *testing.T) {
	f := newFixture(t)
	manifest, err := ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatal(err)
	}
	world := scene.NewWorld()
	m, err := states.NewMachine(states.Environment{
		Provider:   f.provider,
		Host:       world,
		References: manifest,
		Context:    context.Background(),
	})
	if err != nil {
		t.Fatal(err)
	}

	level := &levelState{}
	level.AssetState = states.NewAssetState(m, "Level", level, level)
	if err := m.Register(level); err != nil {
		t.Fatal(err)
	}
	if err := m.Start("Level"); err != nil {
		t.Fatal(err)
	}
	f.pumpUntil(t, func() bool { return level.Status() == states.AssetStateActive })

	if level.entered != 1 {
		t.Errorf("OnEnter ran %d times", level.entered)
	}
	if len(level.OwnedSpawned()) != 1 || len(level.OwnedData()) != 1 {
		t.Errorf("owned %d spawned, %d data", len(level.OwnedSpawned()), len(level.OwnedData()))
	}
	if _, err := states.FindOwned[*health](level.AssetState, states.ScopeExact); err != nil {
		t.Error(err)
	}
	d, err := states.FindOwnedData[*difficulty](level.AssetState)
	if err != nil || d.Enemies != 3 {
		t.Errorf("data lookup: %v %+v", err, d)
	}

	m.Shutdown()
	if level.exited != 1 {
		t.Errorf("OnExit ran %d times", level.exited)
	}
	if f.provider.LiveHandles() != 0 {
		t.Errorf("%d handles leaked", f.provider.LiveHandles())
	}
	if world.Count() != 0 {
		t.Errorf("%d entities left in the world", world.Count())
	}
}
