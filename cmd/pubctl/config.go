package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/pubctl/internal/config"
)

const defaultConfigPath = "pubctl.toml"

type fileConfig struct {
	Root                   string   `toml:"root"`
	PackagePrefix          string   `toml:"package_prefix"`
	Manifest               string   `toml:"manifest"`
	PublishCommand         []string `toml:"publish_command"`
	RegistryFlag           string   `toml:"registry_flag"`
	RegistryURL            string   `toml:"registry_url"`
	AlreadyPublishedMarker string   `toml:"already_published_marker"`
	MetricsFile            string   `toml:"metrics_file"`
}

// loadReleaseConfig overlays the file at path onto the defaults. A missing
// file is only an error when required is set.
func loadReleaseConfig(path string, required bool) (config.Config, error) {
	cfg := config.Defaults()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("load release config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return config.Config{}, fmt.Errorf("load release config: unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("root") {
		cfg.Root = strings.TrimSpace(raw.Root)
	}
	if meta.IsDefined("package_prefix") {
		cfg.PackagePrefix = strings.TrimSpace(raw.PackagePrefix)
	}
	if meta.IsDefined("manifest") {
		cfg.ManifestName = strings.TrimSpace(raw.Manifest)
	}
	if meta.IsDefined("publish_command") {
		cfg.PublishCommand = normalizeArgs(raw.PublishCommand)
	}
	if meta.IsDefined("registry_flag") {
		cfg.RegistryFlag = strings.TrimSpace(raw.RegistryFlag)
	}
	if meta.IsDefined("registry_url") {
		cfg.RegistryURL = strings.TrimSpace(raw.RegistryURL)
	}
	if meta.IsDefined("already_published_marker") {
		cfg.AlreadyPublishedMarker = raw.AlreadyPublishedMarker
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}
	return cfg, nil
}

func normalizeArgs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, arg := range in {
		v := strings.TrimSpace(arg)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
