package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pubctl/internal/testutil/testlog"
)

var defaultOpts = Options{DirPrefix: "src", ManifestName: "Forc.toml"}

func writePackage(t *testing.T, root, dir, manifest string) string {
	t.Helper()
	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	manifestPath := filepath.Join(path, "Forc.toml")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write %s: %v", dir, err)
	}
	return manifestPath
}

func TestLoadIndexDiscoversPrefixedDirectories(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writePackage(t, root, "src_base", "[project]\nname = \"base\"\nversion = \"1.2.0\"\n")
	writePackage(t, root, "src_mid", midManifest)
	writePackage(t, root, "examples", "not toml at all [")
	if err := os.WriteFile(filepath.Join(root, "src_notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	idx, err := LoadIndex(root, defaultOpts)
	if err != nil {
		t.Fatalf("load index: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 packages, got %d", idx.Len())
	}
	pkgs := idx.Packages()
	if pkgs[0].Dir != "src_base" || pkgs[1].Dir != "src_mid" {
		t.Fatalf("unexpected directory order: %s, %s", pkgs[0].Dir, pkgs[1].Dir)
	}

	base, ok := idx.Lookup("base")
	if !ok || base.Dir != "src_base" || base.Version() != "1.2.0" {
		t.Fatalf("unexpected lookup result: %+v", base)
	}
	if _, ok := idx.Lookup("src_base"); ok {
		t.Fatalf("lookup must use declared names")
	}
	mid, ok := idx.ByDir("src_mid")
	if !ok || mid.Name() != "mid" {
		t.Fatalf("unexpected by-dir result")
	}
	if mid.ManifestPath != filepath.Join(root, "src_mid", "Forc.toml") {
		t.Fatalf("unexpected manifest path: %s", mid.ManifestPath)
	}
}

func TestLoadIndexMissingManifest(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src_empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := LoadIndex(root, defaultOpts)
	if !errors.Is(err, ErrManifestMissing) {
		t.Fatalf("expected ErrManifestMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "src_empty") {
		t.Fatalf("error must name the directory: %v", err)
	}
}

func TestLoadIndexInvalidManifest(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writePackage(t, root, "src_broken", "[project\nname = 1")
	if _, err := LoadIndex(root, defaultOpts); !errors.Is(err, ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}
}

func TestLoadIndexMissingName(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writePackage(t, root, "src_anon", "[project]\nversion = \"0.1.0\"\n")
	_, err := LoadIndex(root, defaultOpts)
	if !errors.Is(err, ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
	if !strings.Contains(err.Error(), "src_anon") {
		t.Fatalf("error must name the directory: %v", err)
	}
}

func TestLoadIndexDuplicateName(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writePackage(t, root, "src_a", "[project]\nname = \"same\"\n")
	writePackage(t, root, "src_b", "[project]\nname = \"same\"\n")
	if _, err := LoadIndex(root, defaultOpts); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestLoadIndexMissingRoot(t *testing.T) {
	testlog.Start(t)
	if _, err := LoadIndex(filepath.Join(t.TempDir(), "nope"), defaultOpts); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
