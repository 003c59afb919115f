package manifest

import "errors"

var (
	ErrManifestMissing   = errors.New("manifest: missing or unreadable")
	ErrManifestInvalid   = errors.New("manifest: parse failed")
	ErrMissingName       = errors.New("manifest: missing project name")
	ErrDuplicateName     = errors.New("manifest: duplicate project name")
	ErrManifestWrite     = errors.New("manifest: write failed")
	ErrUnsupportedLayout = errors.New("manifest: unsupported dependency layout")
)
