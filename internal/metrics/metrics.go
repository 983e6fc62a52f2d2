// Package metrics exposes Prometheus collectors for the event hub.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventhub"

// Registry is the registry every collector in this package is attached to.
var Registry = prometheus.NewRegistry()

// AppInfo always reports 1; the version is carried in the label.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "storage"},
)

// StoreErrors counts collection reads and writes that failed.
var StoreErrors = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Total number of failed collection loads and saves",
	},
	[]string{"collection", "op"},
)

// StoreSaves counts successful collection writes.
var StoreSaves = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_saves_total",
		Help:      "Total number of collection saves",
	},
	[]string{"collection"},
)

// EventMutations counts catalog mutations by kind (create, update, delete).
var EventMutations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_mutations_total",
		Help:      "Total number of event catalog mutations",
	},
	[]string{"kind"},
)

// Joins counts join attempts by outcome.
var Joins = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "joins_total",
		Help:      "Total number of join attempts by outcome",
	},
	[]string{"outcome"},
)

// NotificationsAppended counts notifications written to the log.
var NotificationsAppended = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_appended_total",
		Help:      "Total number of notifications appended",
	},
)

// MarkupFields counts event fields stored with HTML markup, by operation.
var MarkupFields = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_markup_fields_total",
		Help:      "Total number of event fields submitted with HTML markup",
	},
	[]string{"op"},
)

var registerRuntime sync.Once

// Init registers the Go runtime and process collectors and records static
// build information. Safe to call more than once.
func Init(version, storage string) {
	registerRuntime.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.WithLabelValues(version, storage).Set(1)
}
