package domain

import (
	"strings"
	"time"
)

const AnonymousUser = "anonymous"

// UsageLog records the cost of one rendered job.
type UsageLog struct {
	UserID          string
	JobID           string
	Operations      int
	PixelsProcessed int64
	BytesSaved      int64
	ComputeTimeMS   int64
	CreatedAt       time.Time
}

// RenderCost is what the worker measured for one successful render.
type RenderCost struct {
	Operations   int
	SourcePixels int64
	SourceBytes  int64
	OutputBytes  int64
	Compute      time.Duration
}

// NewUsageLog bills a render to userID. Outputs larger than their source
// save zero bytes, and every render is billed at least one millisecond.
func NewUsageLog(userID, jobID string, cost RenderCost, at time.Time) UsageLog {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = AnonymousUser
	}

	return UsageLog{
		UserID:          userID,
		JobID:           jobID,
		Operations:      cost.Operations,
		PixelsProcessed: cost.SourcePixels,
		BytesSaved:      max(0, cost.SourceBytes-cost.OutputBytes),
		ComputeTimeMS:   max(1, cost.Compute.Milliseconds()),
		CreatedAt:       at.UTC(),
	}
}
