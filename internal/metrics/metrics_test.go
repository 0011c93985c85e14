package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/dialogtree/pkg/observability"
)

func TestEditorHooks(t *testing.T) {
	ctx := context.Background()
	before := testutil.ToFloat64(Mutations.WithLabelValues("create_node", "true"))

	Editor{}.OnMutation(ctx, "create_node", true)
	Editor{}.OnMutation(ctx, "create_node", false)
	Editor{}.OnHistorySize(ctx, 7)

	if got := testutil.ToFloat64(Mutations.WithLabelValues("create_node", "true")) - before; got != 1 {
		t.Errorf("changed mutations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(HistorySize); got != 7 {
		t.Errorf("history size = %v, want 7", got)
	}

	undoBefore := testutil.ToFloat64(HistoryMoves.WithLabelValues("undo", "false"))
	Editor{}.OnUndo(ctx, false)
	if got := testutil.ToFloat64(HistoryMoves.WithLabelValues("undo", "false")) - undoBefore; got != 1 {
		t.Errorf("failed undos = %v, want 1", got)
	}
}

func TestStoreHooks(t *testing.T) {
	ctx := context.Background()
	okBefore := testutil.ToFloat64(StoreOps.WithLabelValues("test", "save", "ok"))
	errBefore := testutil.ToFloat64(StoreOps.WithLabelValues("test", "save", "error"))

	Store{}.OnSave(ctx, "test", 321, time.Millisecond, nil)
	Store{}.OnSave(ctx, "test", 0, time.Millisecond, errors.New("down"))

	if got := testutil.ToFloat64(StoreOps.WithLabelValues("test", "save", "ok")) - okBefore; got != 1 {
		t.Errorf("ok saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(StoreOps.WithLabelValues("test", "save", "error")) - errBefore; got != 1 {
		t.Errorf("failed saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SnapshotBytes); got != 321 {
		t.Errorf("snapshot bytes = %v, want 321", got)
	}
}

func TestRegisterAndHandler(t *testing.T) {
	Register()
	defer observability.Reset()

	if _, ok := observability.Editor().(Editor); !ok {
		t.Error("Register should install editor hooks")
	}
	observability.HTTP().OnResponse(context.Background(), "GET", "/api/v1/state", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "dialogtree_http_requests_total") {
		t.Error("metrics output missing dialogtree_http_requests_total")
	}
}
