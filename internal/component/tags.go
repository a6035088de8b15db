package component

// Sticky pins an entity in place; physics skips it.
type Sticky struct{}

// ForceUpdate makes replication send the full state of the entity on the
// next sync even if nothing changed.
type ForceUpdate struct{}
