package areaconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetInit_FlipsFlagAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.json")
	if err := os.WriteFile(path, []byte(`{"areas":[{"name":"north","init":true},{"name":"south","init":true}]}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := NewStore(path)
	if err := store.SetInit("north", false); err != nil {
		t.Fatalf("SetInit: %v", err)
	}

	areas, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var north, south *Area
	for i := range areas {
		switch areas[i].Name {
		case "north":
			north = &areas[i]
		case "south":
			south = &areas[i]
		}
	}
	if north == nil || north.Init {
		t.Fatalf("expected north.init == false, got %+v", north)
	}
	if south == nil || !south.Init {
		t.Fatalf("expected south.init unchanged (true), got %+v", south)
	}
}

func TestSetInit_MissingAreaIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.json")
	if err := os.WriteFile(path, []byte(`{"areas":[{"name":"north","init":true}]}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := NewStore(path)
	if err := store.SetInit("nonexistent", false); err != nil {
		t.Fatalf("SetInit: %v", err)
	}
	areas, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(areas) != 1 || !areas[0].Init {
		t.Fatalf("expected unrelated area untouched, got %+v", areas)
	}
}

func TestLoad_MissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "nonexistent.json"))
	areas, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(areas) != 0 {
		t.Fatalf("expected empty result for missing file, got %v", areas)
	}
}
