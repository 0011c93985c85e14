// Package pkg provides the core libraries for Dialogtree, an editor for
// branching character dialogue.
//
// # Overview
//
// Each character owns one dialogue: a directed graph of nodes joined by
// labeled options (connections), plus interruptions that branch off an
// existing option towards another node. Every edit produces a new snapshot
// of the whole state, which is recorded for undo and handed to a store.
//
// # Architecture
//
// The typical data flow through Dialogtree:
//
//	CLI command / HTTP request
//	         ↓
//	    [editor] package (one edit = one snapshot)
//	         ↓                    ↓
//	    [history] (undo/redo)   [store] (asynchronous save)
//	         ↓
//	    [render/nodelink] or [io] (DOT, SVG, PDF, PNG, JSON)
//
// # Quick Start
//
// Open a session, build a two-node dialogue and draw it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/dialogtree/pkg/editor"
//	    "github.com/matzehuels/dialogtree/pkg/render/nodelink"
//	    "github.com/matzehuels/dialogtree/pkg/store"
//	)
//
//	ctx := context.Background()
//	ed, _ := editor.Open(ctx, store.NewMemoryStore(), editor.Options{})
//	defer ed.Close(ctx)
//
//	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
//	hi, _ := ed.CreateRoot(ctx, bo.ID, "Hello there", "", "")
//	ed.CreateOption(ctx, bo.ID, hi.ID, "Ask", "Where are you headed?", "", "")
//
//	svg, _ := nodelink.RenderSVG(ctx, nodelink.StateToDOT(ed.State(), nodelink.Options{}))
//
// # Main Packages
//
// [dialogue] - The data model and its pure mutators. Mutators report whether
// they changed anything; unchanged edits never reach history or the store.
//
// [history] - Bounded undo/redo timeline of state snapshots.
//
// [editor] - The editing session: mutators, history and a single-slot
// background saver behind one mutex.
//
// [store] - Persistence backends for the whole state: file, SQLite, Redis,
// MongoDB, memory and null.
//
// [io] - JSON snapshot export and import with reference checks.
//
// [render/nodelink] - Node-link diagrams through Graphviz. [render] converts
// SVG to PDF and PNG.
//
// [errors] - Coded errors and input validation shared by CLI and server.
//
// [observability] - Hooks the editor and store call; internal/metrics wires
// them to Prometheus.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [dialogue]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/dialogue
// [history]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/history
// [editor]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/editor
// [store]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/store
// [io]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/dialogtree/pkg/observability
package pkg
