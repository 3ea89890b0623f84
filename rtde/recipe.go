package rtde

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// FieldType is the type tag of one recipe field. The tags mirror the names the
// controller accepts in recipe definitions.
type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeUInt8
	FieldTypeUInt32
	FieldTypeUInt64
	FieldTypeInt32
	FieldTypeDouble
	FieldTypeVector3D
	FieldTypeVector6D
)

var fieldTypeNames = map[FieldType]string{
	FieldTypeBool:     "BOOL",
	FieldTypeUInt8:    "UINT8",
	FieldTypeUInt32:   "UINT32",
	FieldTypeUInt64:   "UINT64",
	FieldTypeInt32:    "INT32",
	FieldTypeDouble:   "DOUBLE",
	FieldTypeVector3D: "VECTOR3D",
	FieldTypeVector6D: "VECTOR6D",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}

	return "UNKNOWN"
}

// ParseFieldType parses a recipe type tag such as "DOUBLE" or "VECTOR6D".
func ParseFieldType(s string) (FieldType, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range fieldTypeNames {
		if name == tag {
			return t, nil
		}
	}

	return FieldTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
}

// Recipe is a named, ordered list of (field name, type) pairs defining the
// layout of one register-based synchronization channel. The session layer
// treats recipes purely as negotiation parameters.
type Recipe struct {
	Key   string
	Names []string
	Types []FieldType
}

// Validate reports whether the recipe is usable as a negotiation parameter.
func (r Recipe) Validate() error {
	if len(r.Names) == 0 || len(r.Names) != len(r.Types) {
		return fmt.Errorf("%w: recipe %q has %d names and %d types",
			ErrEmptyRecipe, r.Key, len(r.Names), len(r.Types))
	}

	return nil
}

// StateRecipe returns the default telemetry recipe: measured and target joint
// positions, joint velocities, and the controller's robot and safety modes.
func StateRecipe() Recipe {
	return Recipe{
		Key:   "state",
		Names: []string{"actual_q", "actual_qd", "target_q", "robot_mode", "safety_mode"},
		Types: []FieldType{
			FieldTypeVector6D, FieldTypeVector6D, FieldTypeVector6D,
			FieldTypeInt32, FieldTypeInt32,
		},
	}
}

// SetpointRecipe returns the default input recipe: one double register per
// joint for the commanded target position.
func SetpointRecipe() Recipe {
	names := make([]string, JointCount)
	types := make([]FieldType, JointCount)
	for i := range names {
		names[i] = fmt.Sprintf("input_double_register_%d", i)
		types[i] = FieldTypeDouble
	}

	return Recipe{Key: "setp", Names: names, Types: types}
}

// Config is a parsed recipe configuration file.
type Config struct {
	recipes []Recipe
	index   map[string]int
}

type xmlConfig struct {
	XMLName xml.Name    `xml:"rtde_config"`
	Recipes []xmlRecipe `xml:"recipe"`
}

type xmlRecipe struct {
	Key    string     `xml:"key,attr"`
	Fields []xmlField `xml:"field"`
}

type xmlField struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

// ParseConfig parses an XML recipe configuration of the form:
//
//	<rtde_config>
//	    <recipe key="state">
//	        <field name="actual_q" type="VECTOR6D"/>
//	        ...
//	    </recipe>
//	</rtde_config>
func ParseConfig(r io.Reader) (*Config, error) {
	var doc xmlConfig
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse recipe config: %w", err)
	}

	cfg := &Config{index: make(map[string]int, len(doc.Recipes))}
	for _, rec := range doc.Recipes {
		recipe := Recipe{
			Key:   rec.Key,
			Names: make([]string, 0, len(rec.Fields)),
			Types: make([]FieldType, 0, len(rec.Fields)),
		}
		for _, field := range rec.Fields {
			ft, err := ParseFieldType(field.Type)
			if err != nil {
				return nil, fmt.Errorf("recipe %q, field %q: %w", rec.Key, field.Name, err)
			}
			recipe.Names = append(recipe.Names, field.Name)
			recipe.Types = append(recipe.Types, ft)
		}
		if err := recipe.Validate(); err != nil {
			return nil, err
		}

		cfg.index[recipe.Key] = len(cfg.recipes)
		cfg.recipes = append(cfg.recipes, recipe)
	}

	return cfg, nil
}

// LoadConfig parses the recipe configuration file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe config: %w", err)
	}
	defer f.Close()

	return ParseConfig(f)
}

// Recipe returns the recipe with the given key.
func (c *Config) Recipe(key string) (Recipe, error) {
	if i, ok := c.index[key]; ok {
		return c.recipes[i], nil
	}

	return Recipe{}, fmt.Errorf("%w: %q", ErrRecipeNotFound, key)
}

// Keys returns the recipe keys in definition order.
func (c *Config) Keys() []string {
	keys := make([]string, len(c.recipes))
	for i, r := range c.recipes {
		keys[i] = r.Key
	}

	return keys
}
