package icsdes

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalogFile is the on-disk shape of a field catalog.
type catalogFile struct {
	Fields map[int]string               `yaml:"fields"`
	Enums  map[string]map[string]string `yaml:"enums"`
	Forms  map[string]catalogForm       `yaml:"forms"`
}

type catalogForm struct {
	Scalar []int          `yaml:"scalar"`
	Enum   map[int]string `yaml:"enum"`
	Group  map[int][]int  `yaml:"group"`
}

// LoadCatalog parses a YAML field catalog into an immutable Registry.
func LoadCatalog(data []byte) (*Registry, error) {
	var cat catalogFile
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("icsdes: parse catalog: %w", err)
	}

	b := NewRegistryBuilder()
	for code, name := range cat.Fields {
		b.Field(code, name)
	}
	for name, tokens := range cat.Enums {
		b.Enum(name, tokens)
	}
	for formType, form := range cat.Forms {
		fields := make([]FieldDef, 0, len(form.Scalar)+len(form.Enum)+len(form.Group))
		for _, code := range form.Scalar {
			fields = append(fields, ScalarField(code))
		}
		for code, table := range form.Enum {
			fields = append(fields, EnumField(code, table))
		}
		for code, sub := range form.Group {
			fields = append(fields, GroupField(code, sub...))
		}
		b.Form(formType, fields...)
	}
	return b.Build()
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the process-wide registry built from the
// embedded catalog. It is constructed once and shared read-only.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		reg, err := LoadCatalog(catalogYAML)
		if err != nil {
			// The embedded catalog is validated by the test suite;
			// failing to load it is a build defect, not a runtime
			// condition.
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}
