// Package metrics defines the Prometheus metrics of the shop engine. It is the
// single source of truth for metric names, labels and help strings.
//
// Recorder implements ports.Observer, so wiring it into service.Options is
// all that is needed to collect engine metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

const namespace = "shop"

// OutcomeOK labels operations that returned no error. Failures are labelled
// with domain.Kind names.
const OutcomeOK = "ok"

// Recorder holds the engine metrics registered on one registry.
type Recorder struct {
	// OperationsTotal counts engine calls.
	// Labels:
	//   - operation: engine method name (e.g. "CreateOrder")
	//   - outcome: "ok" or the error kind ("permission", "store", …)
	OperationsTotal *prometheus.CounterVec

	// OperationDuration measures engine calls, store round trips included.
	OperationDuration *prometheus.HistogramVec

	// LoginsTotal counts sessions bound, by role.
	LoginsTotal *prometheus.CounterVec

	LogoutsTotal prometheus.Counter

	// OrderTransitionsTotal counts workflow moves.
	// Label:
	//   - transition: "inspection_to_repair" or "close"
	OrderTransitionsTotal *prometheus.CounterVec

	ReportsBilledTotal prometheus.Counter

	// ReportCostTotal sums billed costs in minor currency units.
	ReportCostTotal prometheus.Counter
}

var _ ports.Observer = (*Recorder)(nil)

// NewRecorder creates the metrics and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		OperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of engine operations, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of engine operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "logins_total",
				Help:      "Total number of sessions bound, by role.",
			},
			[]string{"role"},
		),
		LogoutsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Total number of log-outs.",
		}),
		OrderTransitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_transitions_total",
				Help:      "Total number of order workflow transitions.",
			},
			[]string{"transition"},
		),
		ReportsBilledTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_billed_total",
			Help:      "Total number of reports created.",
		}),
		ReportCostTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cost_minor_units_total",
			Help:      "Sum of billed report costs in minor currency units.",
		}),
	}
}

func (r *Recorder) OperationCompleted(operation string, err error, elapsed time.Duration) {
	outcome := OutcomeOK
	if err != nil {
		outcome = domain.KindOf(err).String()
	}
	r.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	r.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) SessionBound(role domain.Role) {
	r.LoginsTotal.WithLabelValues(string(role)).Inc()
}

func (r *Recorder) SessionCleared() { r.LogoutsTotal.Inc() }

func (r *Recorder) OrderTransitioned(transition string) {
	r.OrderTransitionsTotal.WithLabelValues(transition).Inc()
}

func (r *Recorder) ReportBilled(cost int64) {
	r.ReportsBilledTotal.Inc()
	r.ReportCostTotal.Add(float64(cost))
}
