// Package config loads nginject settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/nginject/internal/inject"
)

// FileName is the config file looked up in the working directory.
const FileName = ".nginject.yaml"

// DefaultMaxFileSize is the largest input, in bytes, that is transformed.
const DefaultMaxFileSize = 1_000_000

// Config holds every setting the CLI reads from a file.
type Config struct {
	DocTag         string    `yaml:"doc_tag" validate:"required"`
	InjectProperty string    `yaml:"inject_property" validate:"required"`
	Framework      Framework `yaml:"framework"`
	Extensions     []string  `yaml:"extensions" validate:"required,min=1,dive,startswith=."`
	MaxFileSize    int64     `yaml:"max_file_size" validate:"gte=0"`
	Workers        int       `yaml:"workers" validate:"gte=0"`
	SourceMaps     bool      `yaml:"source_maps"`
	Strict         bool      `yaml:"strict"`
}

// Framework names the module registry whose registration calls are
// annotated implicitly.
type Framework struct {
	Object   string   `yaml:"object" validate:"required"`
	Property string   `yaml:"property" validate:"required"`
	Methods  []string `yaml:"methods" validate:"required,min=1,dive,required"`
}

var validate = validator.New()

// Default returns the built-in settings.
func Default() *Config {
	opts := inject.DefaultOptions()
	return &Config{
		DocTag:         opts.DocTag,
		InjectProperty: opts.InjectProperty,
		Framework: Framework{
			Object:   opts.BaseObject,
			Property: opts.BaseProperty,
			Methods:  opts.Methods,
		},
		Extensions:  []string{".js"},
		MaxFileSize: DefaultMaxFileSize,
		SourceMaps:  true,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the config file in dir, or "" when there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// Validate checks c against its field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, e.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	default:
		return field + " is invalid"
	}
}

// Inject returns the engine options described by c.
func (c *Config) Inject() inject.Options {
	return inject.Options{
		DocTag:         c.DocTag,
		InjectProperty: c.InjectProperty,
		BaseObject:     c.Framework.Object,
		BaseProperty:   c.Framework.Property,
		Methods:        append([]string(nil), c.Framework.Methods...),
	}
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
