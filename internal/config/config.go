package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	DefaultRoot                   = "standards"
	DefaultPackagePrefix          = "src"
	DefaultManifestName           = "Forc.toml"
	DefaultRegistryFlag           = "--registry-url"
	DefaultRegistryURL            = "http://localhost:8080"
	DefaultAlreadyPublishedMarker = "already exists"

	// TokenEnv is both read at startup and forwarded to the publish tool.
	TokenEnv = "FORC_PUB_TOKEN"
)

var (
	ErrMissingCredential = errors.New("config: missing credential")
	ErrInvalidConfig     = errors.New("config: invalid")
)

// Config is the release run configuration.
type Config struct {
	Root                   string
	PackagePrefix          string
	ManifestName           string
	PublishCommand         []string
	RegistryFlag           string
	RegistryURL            string
	AlreadyPublishedMarker string
	MetricsFile            string
}

// Credentials carries secrets sourced from the process environment.
type Credentials struct {
	Token string `env:"FORC_PUB_TOKEN,required,notEmpty,unset"`
}

func Defaults() Config {
	return Config{
		Root:                   DefaultRoot,
		PackagePrefix:          DefaultPackagePrefix,
		ManifestName:           DefaultManifestName,
		PublishCommand:         []string{"forc", "publish"},
		RegistryFlag:           DefaultRegistryFlag,
		RegistryURL:            DefaultRegistryURL,
		AlreadyPublishedMarker: DefaultAlreadyPublishedMarker,
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Root) == "" {
		return fmt.Errorf("%w: root is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.ManifestName) == "" {
		return fmt.Errorf("%w: manifest is required", ErrInvalidConfig)
	}
	if strings.ContainsAny(cfg.ManifestName, `/\`) {
		return fmt.Errorf("%w: manifest must be a file name: %q", ErrInvalidConfig, cfg.ManifestName)
	}
	if len(cfg.PublishCommand) == 0 || strings.TrimSpace(cfg.PublishCommand[0]) == "" {
		return fmt.Errorf("%w: publish_command is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.RegistryURL) != "" && strings.TrimSpace(cfg.RegistryFlag) == "" {
		return fmt.Errorf("%w: registry_flag required when registry_url is set", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.AlreadyPublishedMarker) == "" {
		return fmt.Errorf("%w: already_published_marker is required", ErrInvalidConfig)
	}
	return nil
}

// LoadCredentials reads credentials from the process environment.
func LoadCredentials() (Credentials, error) {
	return parseCredentials(env.Options{})
}

// LoadCredentialsFrom reads credentials from an explicit environment map.
func LoadCredentialsFrom(environ map[string]string) (Credentials, error) {
	return parseCredentials(env.Options{Environment: environ})
}

func parseCredentials(opts env.Options) (Credentials, error) {
	var creds Credentials
	if err := env.ParseWithOptions(&creds, opts); err != nil {
		return Credentials{}, fmt.Errorf("%w: %s environment variable is not set: %w", ErrMissingCredential, TokenEnv, err)
	}
	return creds, nil
}
