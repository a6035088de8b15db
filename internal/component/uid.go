package component

import "github.com/google/uuid"

// Uid is the stable identity of an entity towards clients and persistence.
// Entity ids are reused; Uids are not.
type Uid uuid.UUID

// NewUid returns a random Uid.
func NewUid() Uid { return Uid(uuid.New()) }

// ParseUid parses the canonical textual form.
func ParseUid(s string) (Uid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Uid{}, err
	}
	return Uid(u), nil
}

func (u Uid) IsZero() bool   { return u == Uid{} }
func (u Uid) String() string { return uuid.UUID(u).String() }

func (u Uid) MarshalText() ([]byte, error) { return uuid.UUID(u).MarshalText() }

func (u *Uid) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(u).UnmarshalText(b)
}
