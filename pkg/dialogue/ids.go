package dialogue

import "github.com/google/uuid"

// ID prefixes distinguish entity kinds in serialized snapshots.
const (
	CharacterPrefix  = "char_"
	NodePrefix       = "node_"
	ConnectionPrefix = "conn_"
)

// newID returns a UUIDv7. Version 7 UUIDs embed a millisecond timestamp
// followed by a counter, so IDs generated by one process are unique and
// sort in creation order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewCharacterID returns a fresh character ID.
func NewCharacterID() string { return CharacterPrefix + newID() }

// NewNodeID returns a fresh node ID.
func NewNodeID() string { return NodePrefix + newID() }

// NewConnectionID returns a fresh connection ID.
func NewConnectionID() string { return ConnectionPrefix + newID() }
