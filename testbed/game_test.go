package testbed

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/states"
)

func newTestConfig(t *testing.T) *engine.ApplicationConfig {
	t.Helper()
	config := engine.DefaultApplicationConfig()
	config.AssetDir = "assets"
	config.LogLevel = core.WarnLevel
	config.FrameRate = 500
	config.Workers = 2
	return config
}

func TestTestbedPlaysThrough(t *testing.T) {
	tg := NewTestGame(newTestConfig(t))
	e, err := engine.New(tg.Game)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if ctx.Err() != nil {
		t.Fatal("game did not finish before the timeout")
	}

	defeated := append([]string(nil), tg.Level().Defeated()...)
	sort.Strings(defeated)
	want := []string{"boss", "goblin", "orc"}
	if len(defeated) != len(want) {
		t.Fatalf("Expected %v defeated, got %v", want, defeated)
	}
	for i := range want {
		if defeated[i] != want[i] {
			t.Errorf("Expected %v defeated, got %v", want, defeated)
		}
	}
	for _, kind := range []string{KindRoot, KindMenu, KindLevel} {
		if tg.Progress()[kind] != 1 {
			t.Errorf("%s progress ended at %v", kind, tg.Progress()[kind])
		}
	}
	if got := e.Machine().Active(); len(got) != 2 || got[1] != KindLevel {
		t.Errorf("Expected Root > Level active, got %v", got)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if e.Stage() != engine.EngineStageStopped {
		t.Errorf("stage %s after shutdown", e.Stage())
	}
	if n := e.Provider().LiveHandles(); n != 0 {
		t.Errorf("%d handles leaked", n)
	}
	if n := e.World().Count(); n != 0 {
		t.Errorf("%d entities left", n)
	}
	if tg.Level().Status() != states.AssetStateInactive {
		t.Errorf("level still %s", tg.Level().Status())
	}
}

func TestShutdownWhileLoading(t *testing.T) {
	tg := NewTestGame(newTestConfig(t))
	e, err := engine.New(tg.Game)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	// the root state is still acquiring; nothing has been pumped yet
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if n := e.Provider().LiveHandles(); n != 0 {
		t.Errorf("%d handles leaked", n)
	}
	if tg.Progress()[KindRoot] == 1 {
		t.Error("root must not finish loading after shutdown")
	}
}
