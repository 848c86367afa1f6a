package cache

import (
	"context"
	"testing"
	"time"
)

func TestRunKeyDeterministic(t *testing.T) {
	type opts struct {
		Mode    string  `json:"mode"`
		Sliver  float64 `json:"sliver"`
		Workers int     `json:"workers"`
	}

	a := RunKey([]byte("src"), []byte("tgt"), opts{Mode: "area", Sliver: 1e-6})
	b := RunKey([]byte("src"), []byte("tgt"), opts{Mode: "area", Sliver: 1e-6})
	if a != b {
		t.Error("identical inputs should produce identical keys")
	}

	if RunKey([]byte("src2"), []byte("tgt"), opts{}) == RunKey([]byte("src"), []byte("tgt"), opts{}) {
		t.Error("different source data should change the key")
	}
	if RunKey([]byte("src"), []byte("tgt"), opts{Mode: "attribute"}) == RunKey([]byte("src"), []byte("tgt"), opts{Mode: "area"}) {
		t.Error("different options should change the key")
	}

	// Boundary bytes keep (src, tgt) splits unambiguous.
	if RunKey([]byte("ab"), []byte("c"), opts{}) == RunKey([]byte("a"), []byte("bc"), opts{}) {
		t.Error("input boundary should be part of the key")
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Set(ctx, "k", []byte("table-data"), time.Hour); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok=%v err=%v, want hit", ok, err)
	}
	if string(data) != "table-data" {
		t.Errorf("Get(k) = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry should miss")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("null cache Get = ok=%v err=%v, want permanent miss", ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}
