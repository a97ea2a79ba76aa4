package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file that marks a Ripple workspace root.
const ManifestName = "ripple.toml"

// DefaultExt is the source file extension used when a manifest does not
// override it.
const DefaultExt = ".rpl"

// Manifest describes a workspace's ripple.toml [package] section.
type Manifest struct {
	Name string
	Ext  string
}

// ErrPackageSectionMissing indicates that [package] is missing in a manifest.
var ErrPackageSectionMissing = errors.New("missing [package]")

type rawManifest struct {
	Package struct {
		Name string `toml:"name"`
		Ext  string `toml:"ext"`
	} `toml:"package"`
}

// LoadManifest parses a ripple.toml file.
func LoadManifest(path string) (*Manifest, error) {
	var raw rawManifest
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	m := &Manifest{
		Name: raw.Package.Name,
		Ext:  raw.Package.Ext,
	}
	if m.Ext == "" {
		m.Ext = DefaultExt
	} else if !strings.HasPrefix(m.Ext, ".") {
		m.Ext = "." + m.Ext
	}
	return m, nil
}
