package core

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type listener struct{ name string }

func TestEventSystemRegisterFireUnregister(t *testing.T) {
	es := NewEventSystem()
	a, b := &listener{"a"}, &listener{"b"}
	var got []string
	handler := func(code SystemEventCode, sender interface{}, l interface{}, data EventContext) bool {
		got = append(got, l.(*listener).name)
		return false
	}

	if !es.Register(EVENT_CODE_STATE_PROGRESS, a, handler) || !es.Register(EVENT_CODE_STATE_PROGRESS, b, handler) {
		t.Fatal("Register failed")
	}
	if es.Register(EVENT_CODE_STATE_PROGRESS, a, handler) {
		t.Error("duplicate listener must be rejected")
	}
	es.Fire(EVENT_CODE_STATE_PROGRESS, nil, EventContext{Progress: 0.5})
	if len(got) != 2 {
		t.Fatalf("Expected 2 deliveries, got %v", got)
	}

	if !es.Unregister(EVENT_CODE_STATE_PROGRESS, a) {
		t.Error("Unregister failed")
	}
	if es.Unregister(EVENT_CODE_STATE_PROGRESS, a) {
		t.Error("second Unregister must report false")
	}
	got = nil
	es.Fire(EVENT_CODE_STATE_PROGRESS, nil, EventContext{})
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("Expected only b, got %v", got)
	}
}

func TestEventSystemHandledStopsPropagation(t *testing.T) {
	es := NewEventSystem()
	calls := 0
	stop := func(SystemEventCode, interface{}, interface{}, EventContext) bool { calls++; return true }
	es.Register(EVENT_CODE_APPLICATION_QUIT, &listener{"first"}, stop)
	es.Register(EVENT_CODE_APPLICATION_QUIT, &listener{"second"}, stop)

	if !es.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}) {
		t.Error("Fire must report handled")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if es.Fire(EVENT_CODE_STATE_EXITED, nil, EventContext{}) {
		t.Error("Fire without listeners must report false")
	}
}

func TestEventSystemStateEventsReachEveryListener(t *testing.T) {
	es := NewEventSystem()
	calls := 0
	handled := func(SystemEventCode, interface{}, interface{}, EventContext) bool { calls++; return true }
	for _, name := range []string{"loading screen", "hud"} {
		es.Register(EVENT_CODE_STATE_PROGRESS, &listener{name}, handled)
		es.Register(EVENT_CODE_STATE_ENTERED, &listener{name}, handled)
		es.Register(EVENT_CODE_STATE_EXITED, &listener{name}, handled)
	}
	if n := es.ListenerCount(EVENT_CODE_STATE_PROGRESS); n != 2 {
		t.Fatalf("Expected 2 progress listeners, got %d", n)
	}

	for _, code := range []SystemEventCode{EVENT_CODE_STATE_PROGRESS, EVENT_CODE_STATE_ENTERED, EVENT_CODE_STATE_EXITED} {
		calls = 0
		if !es.Fire(code, nil, EventContext{State: "Level"}) {
			t.Errorf("code %d: Fire must report handled", code)
		}
		if calls != 2 {
			t.Errorf("code %d: Expected both listeners called, got %d", code, calls)
		}
	}

	_ = es.Shutdown()
	if n := es.ListenerCount(EVENT_CODE_STATE_PROGRESS); n != 0 {
		t.Errorf("Expected no listeners after shutdown, got %d", n)
	}
}

func TestDispatcherRunsPostsFromOtherGoroutines(t *testing.T) {
	d := NewDispatcher(1)
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Post(func() { count++ })
		}()
	}
	wg.Wait()

	if n := d.Pump(); n != 50 || count != 50 {
		t.Errorf("Pump ran %d, count %d", n, count)
	}
}

func TestDispatcherDefersNestedPosts(t *testing.T) {
	d := NewDispatcher(4)
	order := []string{}
	d.Post(func() {
		order = append(order, "outer")
		d.Post(func() { order = append(order, "inner") })
	})

	d.Pump()
	if len(order) != 1 || d.Pending() != 1 {
		t.Fatalf("nested post must wait for the next pump, got %v", order)
	}
	d.Pump()
	if len(order) != 2 || order[1] != "inner" {
		t.Errorf("order %v", order)
	}
}

func TestIdentifierPoolReusesSlots(t *testing.T) {
	ip := NewIdentifierPool(2)
	a, b := &listener{"a"}, &listener{"b"}
	idA := ip.AcquireNewID(a)
	idB := ip.AcquireNewID(b)
	if idA == idB {
		t.Fatal("ids must differ")
	}
	if ip.Lookup(idB) != b {
		t.Error("Lookup returned the wrong owner")
	}
	if err := ip.ReleaseID(idA); err != nil {
		t.Fatal(err)
	}
	if ip.Lookup(idA) != nil {
		t.Error("released id must resolve to nil")
	}
	if id := ip.AcquireNewID(&listener{"c"}); id != idA {
		t.Errorf("free slot %d not reused, got %d", idA, id)
	}
	if err := ip.ReleaseID(99); err == nil {
		t.Error("out of range release must fail")
	}
}

func TestLoadMetricsSnapshot(t *testing.T) {
	m := NewLoadMetrics()
	m.RecordLoad(2*time.Millisecond, nil)
	m.RecordLoad(4*time.Millisecond, nil)
	m.RecordLoad(time.Second, errors.New("boom"))
	m.RecordRelease()
	m.RecordStaleRelease()

	s := m.Snapshot()
	if s.Acquired != 2 || s.Failed != 1 || s.Released != 1 || s.Live != 1 || s.StaleReleases != 1 {
		t.Errorf("unexpected snapshot %+v", s)
	}
	if s.AverageLoadMS != 3 {
		t.Errorf("AverageLoadMS = %v", s.AverageLoadMS)
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("disk")
	acq := &AcquisitionError{Address: "ui/menu", Err: cause}
	if !errors.Is(acq, ErrAcquisition) || !errors.Is(acq, cause) {
		t.Error("AcquisitionError must match its sentinel and its cause")
	}
	if !errors.Is(&LookupError{State: "S", Target: "T"}, ErrLookup) {
		t.Error("LookupError must match ErrLookup")
	}
	if !errors.Is(&OwnershipError{State: "S", Object: "O"}, ErrOwnership) {
		t.Error("OwnershipError must match ErrOwnership")
	}
}
