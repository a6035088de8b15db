package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
)

//go:embed abilities.schema.json
var abilitySchemaJSON string

const abilitySchemaURL = "abilities.schema.json"

var abilitySchema = jsonschema.MustCompileString(abilitySchemaURL, abilitySchemaJSON)

type abilitySetEntry struct {
	Primary   *charstate.Ability   `yaml:"primary"`
	Secondary *charstate.Ability   `yaml:"secondary"`
	Skills    []*charstate.Ability `yaml:"skills"`
}

type abilityFile struct {
	Dodge *charstate.Ability         `yaml:"dodge"`
	Tools map[string]abilitySetEntry `yaml:"tools"`
}

// LoadAbilityTable loads the tool to ability mapping from YAML.
func LoadAbilityTable(path string) (*charstate.AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	return ParseAbilityTable(raw)
}

// ParseAbilityTable validates raw against the ability schema and builds the
// table. The tool key "empty" names the bare-handed set.
func ParseAbilityTable(raw []byte) (*charstate.AbilityTable, error) {
	if err := validateAbilities(raw); err != nil {
		return nil, err
	}
	var f abilityFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}

	if f.Dodge != nil {
		if err := f.Dodge.Validate(); err != nil {
			return nil, fmt.Errorf("dodge: %w", err)
		}
	}
	t := charstate.NewAbilityTable(f.Dodge)
	for name, e := range f.Tools {
		tool := component.ToolKind(name)
		if name == "empty" {
			tool = component.ToolEmpty
		}
		set := &charstate.AbilitySet{Primary: e.Primary, Secondary: e.Secondary, Skills: e.Skills}
		for _, a := range abilitiesOf(set) {
			if err := a.Validate(); err != nil {
				return nil, fmt.Errorf("tool %q: %w", name, err)
			}
		}
		t.Set(tool, set)
	}
	return t, nil
}

func abilitiesOf(set *charstate.AbilitySet) []*charstate.Ability {
	out := make([]*charstate.Ability, 0, 2+len(set.Skills))
	for _, a := range append([]*charstate.Ability{set.Primary, set.Secondary}, set.Skills...) {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// validateAbilities checks the YAML document against the embedded schema.
// The document goes through JSON so numbers arrive as json.Number.
func validateAbilities(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse abilities: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("abilities: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("abilities: %w", err)
	}
	if err := abilitySchema.Validate(v); err != nil {
		return fmt.Errorf("abilities schema: %s", strings.TrimSpace(err.Error()))
	}
	return nil
}
