package charstate

import (
	"fmt"
	"sort"

	"github.com/voxrpg/server/internal/component"
)

// AbilityInput is the control that triggers an ability.
type AbilityInput uint8

const (
	InputPrimary AbilityInput = iota
	InputSecondary
	InputAbility1
	InputDodge
)

func (d *JoinData) held(in AbilityInput) bool {
	switch in {
	case InputPrimary:
		return d.Inputs.Primary
	case InputSecondary:
		return d.Inputs.Secondary
	case InputAbility1:
		return d.Inputs.Ability1
	case InputDodge:
		return d.Inputs.Roll
	}
	return false
}

// Ability is the configuration of one activatable action. Exactly the data
// block matching Kind is set.
type Ability struct {
	Kind       Kind   `yaml:"kind"`
	EnergyCost uint32 `yaml:"energy_cost"`

	BasicAura    *BasicAuraData    `yaml:"basic_aura,omitempty"`
	ComboMelee   *ComboMeleeData   `yaml:"combo_melee,omitempty"`
	DashMelee    *DashMeleeData    `yaml:"dash_melee,omitempty"`
	ChargedMelee *ChargedMeleeData `yaml:"charged_melee,omitempty"`
	LeapMelee    *LeapMeleeData    `yaml:"leap_melee,omitempty"`
	Boost        *BoostData        `yaml:"boost,omitempty"`
	Roll         *RollData         `yaml:"roll,omitempty"`
}

// Validate checks that the data block for Kind is present.
func (a *Ability) Validate() error {
	var ok bool
	switch a.Kind {
	case KindBasicAura:
		ok = a.BasicAura != nil
	case KindComboMelee:
		ok = a.ComboMelee != nil && len(a.ComboMelee.Strikes) > 0
	case KindDashMelee:
		ok = a.DashMelee != nil
	case KindChargedMelee:
		ok = a.ChargedMelee != nil
	case KindLeapMelee:
		ok = a.LeapMelee != nil
	case KindBoost:
		ok = a.Boost != nil
	case KindRoll:
		ok = a.Roll != nil
	default:
		return fmt.Errorf("%s is not an ability", a.Kind)
	}
	if !ok {
		return fmt.Errorf("ability %s: missing %s data", a.Kind, a.Kind)
	}
	return nil
}

// Start builds the initial state of the ability for the entity in d.
func (a *Ability) Start(d *JoinData, in AbilityInput) State {
	switch a.Kind {
	case KindBasicAura:
		return newBasicAura(d, *a.BasicAura)
	case KindComboMelee:
		return ComboMelee{Static: *a.ComboMelee, Section: Buildup}
	case KindDashMelee:
		return DashMelee{Static: *a.DashMelee, Input: in, Section: Buildup}
	case KindChargedMelee:
		return ChargedMelee{Static: *a.ChargedMelee, Input: in, Section: Charge}
	case KindLeapMelee:
		return LeapMelee{Static: *a.LeapMelee, Section: Buildup}
	case KindBoost:
		return Boost{Static: *a.Boost}
	case KindRoll:
		return newRoll(d, *a.Roll)
	}
	return Wielding{}
}

// AbilitySet is what a tool kind can do.
type AbilitySet struct {
	Primary   *Ability
	Secondary *Ability
	Skills    []*Ability
}

// AbilityTable maps tool kinds to their abilities. The dodge roll is shared.
type AbilityTable struct {
	sets  map[component.ToolKind]*AbilitySet
	Dodge *Ability
}

func NewAbilityTable(dodge *Ability) *AbilityTable {
	return &AbilityTable{sets: make(map[component.ToolKind]*AbilitySet), Dodge: dodge}
}

func (t *AbilityTable) Set(tool component.ToolKind, set *AbilitySet) {
	t.sets[tool] = set
}

// For returns the set of tool, nil when the tool has none.
func (t *AbilityTable) For(tool component.ToolKind) *AbilitySet {
	return t.sets[tool]
}

// Lookup returns the ability bound to in for tool.
func (t *AbilityTable) Lookup(tool component.ToolKind, in AbilityInput) *Ability {
	if in == InputDodge {
		return t.Dodge
	}
	set := t.sets[tool]
	if set == nil {
		return nil
	}
	switch in {
	case InputPrimary:
		return set.Primary
	case InputSecondary:
		return set.Secondary
	case InputAbility1:
		if len(set.Skills) > 0 {
			return set.Skills[0]
		}
	}
	return nil
}

// Tools returns the configured tool kinds, sorted.
func (t *AbilityTable) Tools() []component.ToolKind {
	out := make([]component.ToolKind, 0, len(t.sets))
	for k := range t.sets {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *AbilityTable) Count() int { return len(t.sets) }
