// Package metrics defines and registers all custom Prometheus metrics for the
// dispatch API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// ── Dispatch metrics ──────────────────────────────────────────────────────────

// OrdersDispatchedTotal counts orders that produced at least one offer.
// Label:
//   - outcome: "dispatched", "replayed" or "no_trucks"
var OrdersDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Total number of order submissions, by outcome.",
	},
	[]string{"outcome"},
)

// OffersSentTotal counts offers created for trucks.
var OffersSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_sent_total",
		Help:      "Total number of offers sent to trucks.",
	},
)

// DispatchRadiusMeters records the radius at which the truck search stopped.
var DispatchRadiusMeters = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_radius_meters",
		Help:      "Radius in metres at which the nearby-truck search stopped.",
		Buckets:   []float64{10000, 20000, 40000, 50000},
	},
)

// ── Offer / truck metrics ─────────────────────────────────────────────────────

// OffersRespondedTotal counts truck responses.
// Label:
//   - response: "accepted", "declined" or "conflict" (already answered)
var OffersRespondedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_responded_total",
		Help:      "Total number of offer responses, by response.",
	},
	[]string{"response"},
)

// TruckLocationUpdatesTotal counts accepted position reports.
var TruckLocationUpdatesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "truck_location_updates_total",
		Help:      "Total number of truck location updates stored.",
	},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// RealtimeConnections tracks open WebSocket connections on this instance.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Current number of open realtime connections.",
	},
)

// RealtimeJoinsTotal counts room join attempts.
// Label:
//   - result: "granted" or "denied"
var RealtimeJoinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_joins_total",
		Help:      "Total number of room join attempts, by result.",
	},
	[]string{"result"},
)

// RealtimeEventsTotal counts events delivered to local room members.
// Label:
//   - event: e.g. "offer:new", "offer:responded"
var RealtimeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total number of realtime events fanned out to local rooms.",
	},
	[]string{"event"},
)

// NotifyQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of notifications pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// NotifyErrorsTotal counts notifications the broker failed to publish.
var NotifyErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_errors_total",
		Help:      "Total number of notifications that failed to publish.",
	},
)
