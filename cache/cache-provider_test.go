package cache

import (
	"path/filepath"
	"sort"
	"testing"
)

func testProvider(t *testing.T, p Provider) {
	if _, ok, err := p.Get("missing"); ok || err != nil {
		t.Fatalf("Got missing key, ok: %v, err: %v", ok, err)
	}
	if err := p.Put("v1:a", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := p.Put("v1:b", []byte("second")); err != nil {
		t.Fatal(err)
	}
	if err := p.Put("v0:a", []byte("stale")); err != nil {
		t.Fatal(err)
	}
	if b, ok, err := p.Get("v1:a"); !ok || err != nil || string(b) != "first" {
		t.Fatalf("Got %s, ok: %v, err: %v", b, ok, err)
	}
	if err := p.Put("v1:a", []byte("replaced")); err != nil {
		t.Fatal(err)
	}
	if b, _, _ := p.Get("v1:a"); string(b) != "replaced" {
		t.Fatalf("Got %s", b)
	}

	keys := make([]string, 0)
	p.AllKeys("v1:", func(key string) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "v1:a" || keys[1] != "v1:b" {
		t.Fatalf("Keys are %v", keys)
	}

	p.AllKeys("v0:", func(key string) {
		if err := p.Purge(key); err != nil {
			t.Fatal(err)
		}
	})
	if _, ok, _ := p.Get("v0:a"); ok {
		t.Fatal("Purged key still exists")
	}
}

func TestMemCache(t *testing.T) {
	testProvider(t, NewMemCache())
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "classifications.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	testProvider(t, c)
}
