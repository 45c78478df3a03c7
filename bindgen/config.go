package bindgen

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/broady/hostbind/bindgen/annotation"
	"github.com/broady/hostbind/bindgen/golang"
)

const (
	DefaultMarker = "hostbind"
	DefaultSuffix = golang.DefaultSuffix

	// ManifestName is the manifest file written in each package directory.
	ManifestName = "hostbind.json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the configuration for binding generation. The toml tags are
// the keys of the CLI's hostbind.toml.
type Config struct {
	// Packages are the package patterns to scan, e.g. "./..." or
	// "github.com/myorg/app/scripting".
	Packages []string `toml:"packages" validate:"required,min=1,dive,required"`

	// Dir is the directory package patterns are resolved in.
	// Default: the current directory.
	Dir string `toml:"dir,omitempty"`

	// Suffix replaces ".go" in the name of each generated file.
	// Default: "_hostbind.go".
	Suffix string `toml:"suffix,omitempty" validate:"omitempty,endswith=.go,excludesall=/\\"`

	// Marker is the directive prefix: "hostbind" reads //hostbind:namespace.
	Marker string `toml:"marker,omitempty" validate:"omitempty,alphanum,lowercase"`

	// PermissionMarker is the method directive holding permission
	// expressions. Default: "permission".
	PermissionMarker string `toml:"permission_marker,omitempty" validate:"omitempty,alphanum,lowercase"`

	// Tags are extra build tags used when loading packages.
	Tags []string `toml:"tags,omitempty" validate:"dive,required"`

	// Manifest enables hostbind.json output next to the generated files.
	Manifest bool `toml:"manifest"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// withDefaults returns a copy of c with defaults applied.
func (c Config) withDefaults() Config {
	if c.Suffix == "" {
		c.Suffix = DefaultSuffix
	}
	if c.Marker == "" {
		c.Marker = DefaultMarker
	}
	if c.PermissionMarker == "" {
		c.PermissionMarker = annotation.Permission
	}
	c.Packages = append([]string(nil), c.Packages...)
	for i, p := range c.Packages {
		c.Packages[i] = strings.TrimSpace(p)
	}
	return c
}
