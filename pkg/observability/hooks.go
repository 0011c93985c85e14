// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about editor mutations, history moves, persistence and HTTP
// requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The editor and stores only ever talk to these interfaces; the Prometheus
// implementation lives in internal/metrics and is registered by the CLI.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(metrics.Editor{})
//	    observability.SetStoreHooks(metrics.Store{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	err := st.Save(ctx, data)
//	observability.Store().OnSave(ctx, backend, len(data), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the editor session.
type EditorHooks interface {
	// OnMutation records one editing operation. changed is false when the
	// operation was rejected or had no effect.
	OnMutation(ctx context.Context, op string, changed bool)

	// OnUndo and OnRedo record history moves. ok is false at either end of
	// the timeline.
	OnUndo(ctx context.Context, ok bool)
	OnRedo(ctx context.Context, ok bool)

	// OnHistorySize reports the snapshot count after every change.
	OnHistorySize(ctx context.Context, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from persistence.
type StoreHooks interface {
	// OnLoad records a snapshot read.
	OnLoad(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnSave records a snapshot write.
	OnSave(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnSaveCoalesced records a pending save superseded by a newer one.
	OnSaveCoalesced(ctx context.Context, backend string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnResponse records a served request. route is the chi route pattern.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, bool) {}
func (NoopEditorHooks) OnUndo(context.Context, bool)             {}
func (NoopEditorHooks) OnRedo(context.Context, bool)             {}
func (NoopEditorHooks) OnHistorySize(context.Context, int)       {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnSaveCoalesced(context.Context, string)                   {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks EditorHooks = NoopEditorHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before an editor is opened.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
