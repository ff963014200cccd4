package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics records counters for the inventory ledger and fulfillment flows.
type ShopMetrics struct {
	adjustments      *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
	rentalOutcomes   *prometheus.CounterVec
	reportDuration   *prometheus.HistogramVec
}

// NewShopMetrics registers the shop metrics on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Inventory ledger entries appended, by adjustment kind.",
	}, []string{"kind"})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions, by origin and destination status.",
	}, []string{"from", "to"})
	rentalOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_outcomes_total",
		Help: "Rental lifecycle outcomes, by terminal status.",
	}, []string{"status"})
	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sales_report_duration_seconds",
		Help:    "Duration of sales report aggregation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	reg.MustRegister(adjustments, orderTransitions, rentalOutcomes, reportDuration)
	return &ShopMetrics{
		adjustments:      adjustments,
		orderTransitions: orderTransitions,
		rentalOutcomes:   rentalOutcomes,
		reportDuration:   reportDuration,
	}
}

// IncAdjustment increments the ledger counter for the given adjustment kind.
func (m *ShopMetrics) IncAdjustment(kind string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncOrderTransition increments the transition counter for the given statuses.
func (m *ShopMetrics) IncOrderTransition(from, to string) {
	if m == nil || m.orderTransitions == nil {
		return
	}
	m.orderTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncRentalOutcome increments the outcome counter for the given terminal status.
func (m *ShopMetrics) IncRentalOutcome(status string) {
	if m == nil || m.rentalOutcomes == nil {
		return
	}
	m.rentalOutcomes.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveReportDuration records how long the named report took to build.
func (m *ShopMetrics) ObserveReportDuration(report string, duration time.Duration) {
	if m == nil || m.reportDuration == nil {
		return
	}
	m.reportDuration.WithLabelValues(normalizeLabel(report)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
