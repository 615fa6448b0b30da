package puzzle

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the file name looked up in every puzzle directory.
const ManifestFile = "manifest.yaml"

// Mode selects how a program's module is driven.
type Mode string

const (
	// ModeExchange passes the input file as an exchange buffer and dumps memory.
	ModeExchange Mode = "exchange"
	// ModeInvoke calls the entry point with no arguments.
	ModeInvoke Mode = "invoke"
)

// Manifest represents the puzzle manifest.yaml structure.
type Manifest struct {
	Name        string    `yaml:"name" validate:"required"`
	Description string    `yaml:"description"`
	Programs    []Program `yaml:"programs" validate:"required,min=1,dive"`

	// Internal fields
	dir string // Directory containing manifest
}

// Program is one module run listed by a manifest. Paths are relative to
// the manifest directory.
type Program struct {
	Name   string `yaml:"name" validate:"required"`
	Mode   Mode   `yaml:"mode" validate:"required,oneof=exchange invoke"`
	Wasm   string `yaml:"wasm" validate:"required"`
	Input  string `yaml:"input" validate:"required_if=Mode exchange"`
	Output string `yaml:"output" validate:"required_if=Mode exchange"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report yaml field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseManifest reads and parses manifest.yaml from a directory.
func ParseManifest(fs afero.Fs, dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, ManifestFile)

	data, err := afero.ReadFile(fs, manifestPath)
	if err != nil {
		return nil, &ManifestNotFoundError{
			Path: manifestPath,
			Err:  err,
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: manifestPath,
			Err:  err,
		}
	}

	m.dir = dir

	if err := m.Validate(fs); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest fields and that every referenced module exists.
func (m *Manifest) Validate(fs afero.Fs) error {
	if err := validate.Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ManifestValidationError{
				Path:    m.Path(),
				Field:   fieldPath(fe),
				Message: fieldMessage(fe),
			}
		}
		return &ManifestValidationError{Path: m.Path(), Message: err.Error()}
	}

	seen := make(map[string]bool, len(m.Programs))
	for i, p := range m.Programs {
		if seen[p.Name] {
			return &ManifestValidationError{
				Path:    m.Path(),
				Field:   fmt.Sprintf("programs[%d].name", i),
				Message: fmt.Sprintf("duplicate program name: %s", p.Name),
			}
		}
		seen[p.Name] = true
	}

	for _, p := range m.Programs {
		if ok, _ := afero.Exists(fs, m.Resolve(p.Wasm)); !ok {
			return &WasmNotFoundError{
				ManifestPath: m.Path(),
				WasmFile:     p.Wasm,
			}
		}
	}

	return nil
}

// fieldPath strips the root struct name from a validator namespace,
// "Manifest.programs[0].mode" becomes "programs[0].mode".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("at least %s %s entry is required", fe.Param(), fe.Field())
	case "oneof":
		return fmt.Sprintf("unsupported %s: %v (must be one of: %s)", fe.Field(), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s failed '%s' check", fe.Field(), fe.Tag())
	}
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, ManifestFile)
}

// Resolve returns a manifest-relative path joined with the manifest directory.
func (m *Manifest) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.dir, rel)
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return m.dir
}
