package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pubctl/internal/config"
	"github.com/danmuck/pubctl/internal/testutil/testlog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadReleaseConfigMissingFileUsesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadReleaseConfig(filepath.Join(t.TempDir(), "pubctl.toml"), false)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := config.Defaults()
	if cfg.Root != want.Root || cfg.RegistryURL != want.RegistryURL || cfg.ManifestName != want.ManifestName {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReleaseConfigMissingFileRequired(t *testing.T) {
	testlog.Start(t)
	if _, err := loadReleaseConfig(filepath.Join(t.TempDir(), "pubctl.toml"), true); err == nil {
		t.Fatalf("expected error for missing required config")
	}
}

func TestLoadReleaseConfigOverrides(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "pubctl.toml")
	writeFile(t, path, `
root = "packages"
package_prefix = ""
publish_command = ["forc", " publish ", ""]
registry_url = "https://registry.example"
metrics_file = "out.prom"
`)

	cfg, err := loadReleaseConfig(path, true)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Root != "packages" {
		t.Fatalf("unexpected root: %q", cfg.Root)
	}
	if cfg.PackagePrefix != "" {
		t.Fatalf("expected explicit empty prefix, got %q", cfg.PackagePrefix)
	}
	if strings.Join(cfg.PublishCommand, "|") != "forc|publish" {
		t.Fatalf("unexpected command: %q", cfg.PublishCommand)
	}
	if cfg.RegistryURL != "https://registry.example" {
		t.Fatalf("unexpected registry: %q", cfg.RegistryURL)
	}
	if cfg.MetricsFile != "out.prom" {
		t.Fatalf("unexpected metrics file: %q", cfg.MetricsFile)
	}
	if cfg.ManifestName != config.DefaultManifestName {
		t.Fatalf("unset keys must keep defaults: %q", cfg.ManifestName)
	}
}

func TestLoadReleaseConfigUnknownKey(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "pubctl.toml")
	writeFile(t, path, "rooot = \"typo\"\n")
	_, err := loadReleaseConfig(path, true)
	if err == nil || !strings.Contains(err.Error(), "rooot") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "pubctl.toml")
	if err := config.WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := loadReleaseConfig(path, true)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("template invalid: %v", err)
	}
}

func TestPublishRequiresCredentialBeforeConfig(t *testing.T) {
	testlog.Start(t)
	t.Setenv(config.TokenEnv, "")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"publish", "--config", filepath.Join(t.TempDir(), "missing.toml"), "base"})
	err := cmd.Execute()
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestPlanCommandPrintsOrder(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src_base", "Forc.toml"), "[project]\nname = \"base\"\nversion = \"1.2.0\"\n")
	writeFile(t, filepath.Join(root, "src_mid", "Forc.toml"),
		"[project]\nname = \"mid\"\nversion = \"0.4.0\"\n\n[dependencies]\nbase = { path = \"../src_base\" }\n")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"plan", "--config", filepath.Join(root, "absent.toml"), "--root", root, "base"})
	// --config was set explicitly, so the missing file is an error
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected missing config error")
	}

	out.Reset()
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"plan", "--root", root, "base"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := "1. base (src_base) 1.2.0\n2. mid (src_mid) 0.4.0\n"
	if out.String() != want {
		t.Fatalf("unexpected plan output\nwant: %q\ngot:  %q", want, out.String())
	}
}
