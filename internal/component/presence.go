package component

// PresenceKind distinguishes persisted characters from transient spectators.
type PresenceKind uint8

const (
	PresenceSpectator PresenceKind = iota
	PresenceCharacter
)

// Presence marks an entity controlled by a connected client.
type Presence struct {
	Kind        PresenceKind
	CharacterID int64 // valid when Kind == PresenceCharacter
	Name        string
}

func Character(id int64, name string) Presence {
	return Presence{Kind: PresenceCharacter, CharacterID: id, Name: name}
}

func Spectator(name string) Presence {
	return Presence{Kind: PresenceSpectator, Name: name}
}

// CharacterIDOf returns the character id and whether p is a character.
func (p Presence) CharacterIDOf() (int64, bool) {
	return p.CharacterID, p.Kind == PresenceCharacter
}
