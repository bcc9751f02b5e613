package telemetry

import (
	"time"

	"disasterwatch/internal/types"
)

// Nop discards everything. Used when METRICS_BACKEND=none.
type Nop struct{}

func (Nop) RecordRequest(string, string, string, time.Duration) {}
func (Nop) RecordFetch(string, string, time.Duration)           {}
func (Nop) RecordAssessment(types.RiskLevel)                    {}
func (Nop) RecordAlert(types.RiskLevel)                         {}
