// Package manifest loads the YAML files that describe a compilation pass:
// compiler options, the classes and variables expressions may refer to, and
// the expressions to compile.
package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/types"
)

// DefaultPath is the manifest location searched in the XDG config directories.
const DefaultPath = "uexpr/manifest.yaml"

//go:embed schema.json
var schema []byte

// Manifest is a decoded manifest file.
type Manifest struct {
	Options     Options      `yaml:"options"`
	Classes     []Class      `yaml:"classes"`
	Variables   []Variable   `yaml:"variables"`
	Expressions []Expression `yaml:"expressions"`
}

// Options mirror the compiler options.
type Options struct {
	CoerceTruthiness    bool  `yaml:"coerceTruthiness"`
	ConstantFolding     *bool `yaml:"constantFolding"`
	MaxExpressionLength int   `yaml:"maxExpressionLength"`
	Workers             int   `yaml:"workers"`
}

// Class declares a host class.
type Class struct {
	Name       string            `yaml:"name"`
	Super      string            `yaml:"super"`
	Properties map[string]string `yaml:"properties"`
}

// Variable binds a typed value. Values of class type are mappings from
// property name to value.
type Variable struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// Expression is one expression to compile.
type Expression struct {
	Declaration string `yaml:"declaration"`
	Text        string `yaml:"text"`
}

// Find returns the manifest path in the XDG config directories.
func Find() (string, error) {
	return xdg.SearchConfigFile(DefaultPath)
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse validates data against the manifest schema and decodes it.
func Parse(data []byte) (*Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid manifest YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func validate(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("manifest schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	if len(msgs) == 1 {
		return fmt.Errorf("manifest schema validation failed: %s", msgs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "manifest schema validation failed with %d errors:", len(msgs))
	for i, msg := range msgs {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, msg)
	}
	return errors.New(b.String())
}

// Scope builds the type scope and evaluation context the manifest
// describes.
func (m *Manifest) Scope() (*binding.Map, error) {
	scope := binding.NewMap()
	classes := make(map[string]Class, len(m.Classes))
	for _, c := range m.Classes {
		props := make(map[string]types.Type, len(c.Properties))
		for name, typeName := range c.Properties {
			t, err := parseType(typeName)
			if err != nil {
				return nil, fmt.Errorf("class %s: property %s: %w", c.Name, name, err)
			}
			props[name] = t
		}
		scope.Class(c.Name, c.Super, props)
		classes[c.Name] = c
	}

	for _, v := range m.Variables {
		t, err := parseType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		value, err := convertValue(v.Value, t, classes)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		scope.Set(v.Name, t, value)
	}
	return scope, nil
}

func parseType(name string) (types.Type, error) {
	t, ok := types.Parse(name)
	if !ok {
		return types.Type{}, fmt.Errorf("invalid type %q", name)
	}
	return t, nil
}

// convertValue turns a decoded YAML value into the runtime representation
// of t.
func convertValue(v any, t types.Type, classes map[string]Class) (any, error) {
	if s, ok := v.(string); ok && t.Kind == types.Char {
		r := []rune(s)
		if len(r) != 1 {
			return nil, fmt.Errorf("char value %q must be a single character", s)
		}
		return uint16(r[0]), nil
	}
	if v == nil || t.Kind != types.Class {
		return types.Convert(v, t)
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("value of class %s must be a mapping", t.Name)
	}
	obj := &binding.Object{Class: t.Name, Fields: make(map[string]any, len(fields))}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pt, ok := propertyType(classes, t.Name, name)
		if !ok {
			return nil, fmt.Errorf("class %s has no property %s", t.Name, name)
		}
		fv, err := convertValue(fields[name], pt, classes)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		obj.Fields[name] = fv
	}
	return obj, nil
}

func propertyType(classes map[string]Class, class, name string) (types.Type, bool) {
	seen := make(map[string]bool)
	for class != "" && !seen[class] {
		seen[class] = true
		c, ok := classes[class]
		if !ok {
			break
		}
		if typeName, ok := c.Properties[name]; ok {
			t, err := parseType(typeName)
			return t, err == nil
		}
		class = c.Super
	}
	return types.Type{}, false
}
