package component

// ToolKind selects the ability set of a wielded item.
type ToolKind string

const (
	ToolEmpty  ToolKind = ""
	ToolSword  ToolKind = "sword"
	ToolAxe    ToolKind = "axe"
	ToolHammer ToolKind = "hammer"
	ToolStaff  ToolKind = "staff"
	ToolGlider ToolKind = "glider"
)

// Item is a stack of one item definition.
type Item struct {
	ID     string   `json:"id"`
	Tool   ToolKind `json:"tool,omitempty"`
	Amount uint32   `json:"amount"`
}

// EquipSlot names a loadout slot.
type EquipSlot uint8

const (
	SlotMainHand EquipSlot = iota
	SlotOffHand
	SlotGlider
)

// Loadout is the equipped gear.
type Loadout struct {
	MainHand *Item `json:"main_hand,omitempty"`
	OffHand  *Item `json:"off_hand,omitempty"`
	Glider   *Item `json:"glider,omitempty"`
}

func (l *Loadout) slot(s EquipSlot) **Item {
	switch s {
	case SlotMainHand:
		return &l.MainHand
	case SlotOffHand:
		return &l.OffHand
	case SlotGlider:
		return &l.Glider
	}
	return nil
}

// Inventory is the bag plus the loadout.
type Inventory struct {
	Slots   []*Item `json:"slots"`
	Loadout Loadout `json:"loadout"`
}

func NewInventory(size int) Inventory {
	return Inventory{Slots: make([]*Item, size)}
}

// Clone returns a copy that shares no slots or items with inv.
func (inv *Inventory) Clone() Inventory {
	out := Inventory{Loadout: Loadout{
		MainHand: inv.Loadout.MainHand.clone(),
		OffHand:  inv.Loadout.OffHand.clone(),
		Glider:   inv.Loadout.Glider.clone(),
	}}
	if inv.Slots != nil {
		out.Slots = make([]*Item, len(inv.Slots))
		for i, it := range inv.Slots {
			out.Slots[i] = it.clone()
		}
	}
	return out
}

func (it *Item) clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	return &c
}

// ActiveTool returns the tool kind of the main hand.
func (inv *Inventory) ActiveTool() ToolKind {
	if inv.Loadout.MainHand == nil {
		return ToolEmpty
	}
	return inv.Loadout.MainHand.Tool
}

func (inv *Inventory) HasGlider() bool { return inv.Loadout.Glider != nil }

// Swap exchanges two bag slots.
func (inv *Inventory) Swap(a, b int) bool {
	if a < 0 || b < 0 || a >= len(inv.Slots) || b >= len(inv.Slots) {
		return false
	}
	inv.Slots[a], inv.Slots[b] = inv.Slots[b], inv.Slots[a]
	return true
}

// Equip moves the item of bag slot i into the loadout slot, putting what was
// equipped back into the bag.
func (inv *Inventory) Equip(i int, s EquipSlot) bool {
	dst := inv.Loadout.slot(s)
	if dst == nil || i < 0 || i >= len(inv.Slots) || inv.Slots[i] == nil {
		return false
	}
	if s == SlotGlider && inv.Slots[i].Tool != ToolGlider {
		return false
	}
	*dst, inv.Slots[i] = inv.Slots[i], *dst
	return true
}

// Unequip moves the item of a loadout slot into the first free bag slot.
func (inv *Inventory) Unequip(s EquipSlot) bool {
	src := inv.Loadout.slot(s)
	if src == nil || *src == nil {
		return false
	}
	for i, it := range inv.Slots {
		if it == nil {
			inv.Slots[i], *src = *src, nil
			return true
		}
	}
	return false
}

// SwapLoadout exchanges main and off hand.
func (inv *Inventory) SwapLoadout() {
	inv.Loadout.MainHand, inv.Loadout.OffHand = inv.Loadout.OffHand, inv.Loadout.MainHand
}
