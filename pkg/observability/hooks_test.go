package observability

import (
	"context"
	"testing"
	"time"
)

type recordingRunHooks struct {
	NoopRunHooks
	zones []string
}

func (h *recordingRunHooks) OnZoneComplete(_ context.Context, zoneID string, _ int, _ time.Duration, _ error) {
	h.zones = append(h.zones, zoneID)
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string) {
	h.hits++
}

func TestRunHooksRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingRunHooks{}
	SetRunHooks(rec)

	Run().OnZoneComplete(context.Background(), "z1", 3, time.Millisecond, nil)
	if len(rec.zones) != 1 || rec.zones[0] != "z1" {
		t.Errorf("zones = %v, want [z1]", rec.zones)
	}
}

func TestCacheHooksRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	Cache().OnCacheHit(context.Background(), "file")
	if rec.hits != 1 {
		t.Errorf("hits = %d, want 1", rec.hits)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	SetRunHooks(nil)
	if _, ok := Run().(NoopRunHooks); !ok {
		t.Error("nil registration should keep the no-op hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	SetRunHooks(&recordingRunHooks{})
	SetCacheHooks(&recordingCacheHooks{})
	Reset()

	if _, ok := Run().(NoopRunHooks); !ok {
		t.Error("Reset should restore no-op run hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset should restore no-op cache hooks")
	}
}
