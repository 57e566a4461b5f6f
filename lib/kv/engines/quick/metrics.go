package quick

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Operation Metrics
// --------------------------------------------------------------------------

// trackOp records one engine operation in the process-wide metrics set:
// a counter per operation plus a duration summary. The returned function
// must be deferred by the caller.
//
// The metrics are exported in Prometheus text format via
// metrics.WritePrometheus (see the shell's metrics command).
func trackOp(op string) func() {
	start := time.Now()
	metrics.GetOrCreateCounter(fmt.Sprintf(`quickkv_ops_total{op=%q}`, op)).Inc()
	summary := metrics.GetOrCreateSummary(fmt.Sprintf(`quickkv_op_duration_seconds{op=%q}`, op))
	return func() {
		summary.UpdateDuration(start)
	}
}

// trackOpError counts a failed engine operation.
func trackOpError(op string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`quickkv_op_errors_total{op=%q}`, op)).Inc()
}
