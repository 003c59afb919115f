package config

import (
	"fmt"
	"os"
)

func Template() string {
	return releaseTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(releaseTemplate), 0o644)
}

const releaseTemplate = `# pubctl release configuration.
# The registry token is read from FORC_PUB_TOKEN, never from this file.

# Directory holding one subdirectory per package.
root = "standards"

# Only subdirectories whose name starts with this prefix are packages.
package_prefix = "src"

# Manifest file expected in every package directory.
manifest = "Forc.toml"

publish_command = ["forc", "publish"]
registry_flag = "--registry-url"
registry_url = "http://localhost:8080"

# Publish failures whose stderr contains this text are treated as skips.
already_published_marker = "already exists"

# metrics_file = "pubctl.prom"
`
