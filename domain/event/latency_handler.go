package event

import (
	"log/slog"
	"time"
)

// LatencyHandler measures the time between command acceptance and fan-out.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold}
}

func (h *LatencyHandler) Handle(e Event) {
	if payload, ok := e.Payload.(MessageFannedOut); ok {
		leadTime := time.Since(payload.At)

		h.log.Debug("telemetry: fan-out latency",
			"room", payload.Room,
			"sender", payload.Sender,
			"recipients", payload.Recipients,
			"lead_time_ms", leadTime.Milliseconds(),
		)

		if leadTime > h.latencyThreshold {
			h.log.Warn("high latency detected", "lead_time", leadTime)
		}
	}
}
