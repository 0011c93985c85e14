// Package metrics exports editor, store and API activity as Prometheus
// metrics by implementing the observability hook interfaces.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/dialogtree/pkg/observability"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogtree_mutations_total",
		Help: "Editing operations, labelled by operation and whether they changed the state.",
	}, []string{"op", "changed"})

	HistoryMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogtree_history_moves_total",
		Help: "Undo and redo requests, labelled by direction and outcome.",
	}, []string{"direction", "ok"})

	HistorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialogtree_history_snapshots",
		Help: "Snapshots currently held by the undo history.",
	})

	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogtree_store_operations_total",
		Help: "Store loads and saves, labelled by backend, operation and status.",
	}, []string{"backend", "op", "status"})

	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialogtree_store_duration_ms",
		Help:    "Store load and save latency in milliseconds.",
		Buckets: []float64{0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"backend", "op"})

	SnapshotBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialogtree_snapshot_bytes",
		Help: "Size of the last snapshot written or read.",
	})

	SavesCoalesced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogtree_saves_coalesced_total",
		Help: "Pending saves replaced by a newer snapshot before being written.",
	}, []string{"backend"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogtree_http_requests_total",
		Help: "API requests, labelled by method, route and status code.",
	}, []string{"method", "route", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialogtree_http_request_duration_ms",
		Help:    "API request latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"method", "route"})
)

// Register installs the Prometheus hooks. Call once at startup.
func Register() {
	observability.SetEditorHooks(Editor{})
	observability.SetStoreHooks(Store{})
	observability.SetHTTPHooks(HTTP{})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }

// Editor records editor events.
type Editor struct{}

func (Editor) OnMutation(_ context.Context, op string, changed bool) {
	Mutations.WithLabelValues(op, strconv.FormatBool(changed)).Inc()
}

func (Editor) OnUndo(_ context.Context, ok bool) {
	HistoryMoves.WithLabelValues("undo", strconv.FormatBool(ok)).Inc()
}

func (Editor) OnRedo(_ context.Context, ok bool) {
	HistoryMoves.WithLabelValues("redo", strconv.FormatBool(ok)).Inc()
}

func (Editor) OnHistorySize(_ context.Context, size int) {
	HistorySize.Set(float64(size))
}

// Store records persistence events.
type Store struct{}

func (Store) OnLoad(_ context.Context, backend string, size int, d time.Duration, err error) {
	observeStore(backend, "load", size, d, err)
}

func (Store) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	observeStore(backend, "save", size, d, err)
}

func (Store) OnSaveCoalesced(_ context.Context, backend string) {
	SavesCoalesced.WithLabelValues(backend).Inc()
}

func observeStore(backend, op string, size int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	} else if size > 0 {
		SnapshotBytes.Set(float64(size))
	}
	StoreOps.WithLabelValues(backend, op, status).Inc()
	StoreDuration.WithLabelValues(backend, op).Observe(ms(d))
}

// HTTP records API requests.
type HTTP struct{}

func (HTTP) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(ms(d))
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

var (
	_ observability.EditorHooks = Editor{}
	_ observability.StoreHooks  = Store{}
	_ observability.HTTPHooks   = HTTP{}
)
