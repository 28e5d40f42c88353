package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// OpsSnapshot is the JSON shape served at /admin/stats: a point-in-time
// aggregation of the booking pipeline's own metrics, for operators who want
// numbers without standing up a Prometheus server.
type OpsSnapshot struct {
	GeneratedAt  string               `json:"generated_at"`
	Booking      BookingSnapshot      `json:"booking"`
	Availability AvailabilitySnapshot `json:"availability"`
	Automation   LatencySnapshot      `json:"automation"`
}

type BookingSnapshot struct {
	Attempts      int64            `json:"attempts"`
	ByStrategy    map[string]int64 `json:"by_strategy"`
	ByStatus      map[string]int64 `json:"by_status"`
	PoolSaturated int64            `json:"pool_saturated"`
	PhoneRewrites int64            `json:"phone_rewrites"`
}

type AvailabilitySnapshot struct {
	Remote   int64 `json:"remote"`
	Fallback int64 `json:"fallback"`
}

type LatencySnapshot struct {
	Total int64   `json:"total"`
	P90Ms float64 `json:"p90_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// StatsHandler serves the operational snapshot.
type StatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *StatsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{gatherer: gatherer, logger: logger}
}

// GetStats returns aggregated booking metrics.
// GET /admin/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	mfs, err := h.gatherer.Gather()
	if err != nil {
		h.logger.Error("failed to gather metrics", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	byName := map[string]*dto.MetricFamily{}
	for _, mf := range mfs {
		if mf != nil {
			byName[mf.GetName()] = mf
		}
	}

	snap := OpsSnapshot{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Booking: BookingSnapshot{
			ByStrategy:    counterByLabel(byName["dentalbridge_booking_attempts_total"], "strategy"),
			ByStatus:      counterByLabel(byName["dentalbridge_booking_attempts_total"], "status"),
			PoolSaturated: counterTotal(byName["dentalbridge_booking_pool_saturated_total"]),
			PhoneRewrites: counterTotal(byName["dentalbridge_booking_phone_rewrites_total"]),
		},
		Automation: latencySnapshot(byName["dentalbridge_booking_automation_duration_seconds"]),
	}
	for _, n := range snap.Booking.ByStrategy {
		snap.Booking.Attempts += n
	}
	fetches := counterByLabel(byName["dentalbridge_availability_slot_fetches_total"], "source")
	snap.Availability.Remote = fetches["remote"]
	snap.Availability.Fallback = fetches["fallback"]

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// counterTotal sums a counter family across all label combinations.
func counterTotal(family *dto.MetricFamily) int64 {
	if family == nil {
		return 0
	}
	var total float64
	for _, metric := range family.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		total += metric.GetCounter().GetValue()
	}
	return int64(total)
}

// counterByLabel sums a counter family grouped by one label's values.
func counterByLabel(family *dto.MetricFamily, label string) map[string]int64 {
	out := map[string]int64{}
	if family == nil {
		return out
	}
	for _, metric := range family.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		for _, lp := range metric.Label {
			if lp.GetName() == label {
				out[lp.GetValue()] += int64(metric.GetCounter().GetValue())
			}
		}
	}
	return out
}

// latencySnapshot aggregates a histogram family across all label
// combinations and estimates tail quantiles from its buckets.
func latencySnapshot(family *dto.MetricFamily) LatencySnapshot {
	if family == nil {
		return LatencySnapshot{}
	}

	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64
	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		sampleCount += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	return LatencySnapshot{
		Total: int64(sampleCount),
		P90Ms: histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper) * 1000.0,
		P95Ms: histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper) * 1000.0,
	}
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		return prevUpper + fraction*(upper-prevUpper)
	}

	return uppers[len(uppers)-1]
}
