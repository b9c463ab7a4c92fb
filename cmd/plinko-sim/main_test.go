package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPegs(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "pegs.json")
	os.WriteFile(good, []byte(`[{"x":100,"y":120,"radius":4,"row":0,"col":0}]`), 0o644)
	pegs, err := loadPegs(good)
	if err != nil {
		t.Fatal(err)
	}
	if len(pegs) != 1 || pegs[0].X != 100 || pegs[0].Radius != 4 {
		t.Errorf("pegs = %+v", pegs)
	}

	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`[]`), 0o644)
	if pegs, err := loadPegs(empty); err != nil || len(pegs) != 0 {
		t.Errorf("empty field: %v %v", pegs, err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`[{"x":1,"y":1,"radius":0}]`), 0o644)
	if _, err := loadPegs(bad); err == nil {
		t.Error("zero radius accepted")
	}
	if _, err := loadPegs(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
}
