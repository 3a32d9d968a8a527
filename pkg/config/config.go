// Package config loads the engine's defaults record from a YAML file,
// the only configuration surface the core consumes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/latticedb/lattice/pkg/catalog"
)

// File is the top-level shape of the defaults YAML file.
type File struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig carries the catalog.Defaults fields plus the data
// directory the vocbase is rooted at.
type DatabaseConfig struct {
	DataDir            string `yaml:"dataDir"`
	DefaultMaximalSize int64  `yaml:"defaultMaximalSize"`
	WaitForSync        bool   `yaml:"waitForSync"`
	AuthenticationOn   bool   `yaml:"authenticationOn"`
	ShortStringCut     int    `yaml:"shortStringCut"`
}

// LoggingConfig mirrors pkg/log.Config's fields for file-based setup.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSONOutput bool   `yaml:"jsonOutput"`
}

// Load reads and parses a defaults file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if f.Database.ShortStringCut == 0 {
		f.Database.ShortStringCut = 32
	}

	return &f, nil
}

// CatalogDefaults projects the loaded file's database section into the
// catalog.Defaults record the vocbase constructor expects.
func (f *File) CatalogDefaults() catalog.Defaults {
	return catalog.Defaults{
		DefaultMaximalSize: f.Database.DefaultMaximalSize,
		WaitForSync:        f.Database.WaitForSync,
		AuthenticationOn:   f.Database.AuthenticationOn,
	}
}
