// Package dialogue provides the graph model behind the dialogue editor.
//
// # Overview
//
// A [State] maps character IDs to [Character] records. Each character owns a
// single [Dialogue]: a set of [Node] values keyed by ID, an ordered list of
// [Connection] edges (dialogue options) and an ordered list of
// [Interruption] branches that leave an existing connection.
//
// # Mutators
//
// The package-level functions ([CreateCharacter], [CreateNode],
// [CreateConnection], [DeleteNodes], [EditNodeText], ...) edit a state or
// dialogue in place and return whether anything changed. Malformed input
// (an empty name, an empty node text, an out-of-range index) is not an
// error: the mutator leaves everything untouched and returns false. Callers
// use that result to decide whether to record a history snapshot and
// persist.
//
//	s := dialogue.NewState()
//	bo, _ := dialogue.CreateCharacter(s, "Bo", "#336699")
//	hello, _ := dialogue.CreateRoot(bo.Dialogue, "Hello world", "", "")
//	reply, conn, _ := dialogue.CreateOption(bo.Dialogue, hello.ID, "Wave", "Hi!", "", "")
//
// # Invariants
//
// Deleting nodes with [DeleteNodes] also removes every connection that
// touches them and every interruption anchored on or leading to them, in
// one edit. References that do not resolve (which only arise from
// hand-edited snapshots) are inert: [Dialogue.Live] and
// [Dialogue.AnchorIndex] report them and renderers skip them.
//
// Character, node and connection IDs are prefixed UUIDv7 strings, unique and
// ordered by creation time.
//
// # Paths
//
// [ReconstructPath] walks predecessor links back from a node to the start
// of its conversation, for highlighting.
//
// # Serialization
//
// [Marshal] and [Unmarshal] convert a state to and from the JSON snapshot
// format used by history persistence and file export. Round trips are
// lossless.
//
// # Concurrency
//
// Nothing in this package is synchronized. The editor package serializes
// access.
package dialogue
