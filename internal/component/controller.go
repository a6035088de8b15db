package component

import "github.com/go-gl/mathgl/mgl64"

// Inputs is the per-tick controller state sent by the client.
type Inputs struct {
	MoveDir   mgl64.Vec2 `json:"move_dir"`
	LookDir   mgl64.Vec3 `json:"look_dir"`
	Primary   bool       `json:"primary"`
	Secondary bool       `json:"secondary"`
	Ability1  bool       `json:"ability1"`
	Jump      bool       `json:"jump"`
	Roll      bool       `json:"roll"`
	Fly       bool       `json:"fly"`
}

// ActionKind is a discrete character action request.
type ActionKind uint8

const (
	ActionWield ActionKind = iota + 1
	ActionUnwield
	ActionSwapLoadout
	ActionSit
	ActionStand
	ActionDance
	ActionSneak
	ActionGlideWield
	ActionModifyLoadout
)

var actionNames = map[string]ActionKind{
	"wield":          ActionWield,
	"unwield":        ActionUnwield,
	"swap_loadout":   ActionSwapLoadout,
	"sit":            ActionSit,
	"stand":          ActionStand,
	"dance":          ActionDance,
	"sneak":          ActionSneak,
	"glide_wield":    ActionGlideWield,
	"modify_loadout": ActionModifyLoadout,
}

// ParseAction maps the client name of an action to its kind.
func ParseAction(name string) (ActionKind, bool) {
	k, ok := actionNames[name]
	return k, ok
}

// ControlAction is one queued action. Slot and Bag are used by
// ActionModifyLoadout.
type ControlAction struct {
	Kind ActionKind
	Slot EquipSlot
	Bag  int
}

// Controller holds the latest inputs and the actions queued since the last
// character behaviour run.
type Controller struct {
	Inputs  Inputs
	Actions []ControlAction
}
