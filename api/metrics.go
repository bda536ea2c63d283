package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// itemRequestMetrics collects per-request observations for the item creation
// path, including which placement strategy the allocator chose. Placement
// logging is advisory observability only; it never influences the outcome.
type itemRequestMetrics struct {
	logger        *log.Logger
	start         time.Time
	loadDuration  time.Duration
	saveDuration  time.Duration
	itemType      string
	placement     string
	zone          string
	persistFailed bool
	errorStage    string
}

func newItemRequestMetrics(logger *log.Logger) *itemRequestMetrics {
	return &itemRequestMetrics{
		logger: logger,
		start:  time.Now(),
	}
}

func (m *itemRequestMetrics) ObserveLoad(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.loadDuration = duration
}

func (m *itemRequestMetrics) ObserveSave(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.saveDuration = duration
}

func (m *itemRequestMetrics) SetItemType(t string) {
	m.itemType = t
}

// SetPlacement records the chosen strategy: explicit, zone or freeform.
func (m *itemRequestMetrics) SetPlacement(strategy, zone string) {
	m.placement = strategy
	m.zone = zone
}

func (m *itemRequestMetrics) SetPersistFailed() {
	m.persistFailed = true
}

func (m *itemRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *itemRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":    "/api/items",
		"status":   status,
		"total_ms": durationToMillis(time.Since(m.start)),
	}

	if m.itemType != "" {
		fields["item_type"] = m.itemType
	}
	if m.placement != "" {
		fields["placement"] = m.placement
	}
	if m.zone != "" {
		fields["zone"] = m.zone
	}
	if m.loadDuration > 0 {
		fields["load_ms"] = durationToMillis(m.loadDuration)
	}
	if m.saveDuration > 0 {
		fields["save_ms"] = durationToMillis(m.saveDuration)
	}
	if m.persistFailed {
		fields["persist_failed"] = true
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	entry := m.logger.WithFields(fields)
	switch {
	case status >= 500:
		entry.Error("item request")
	case status >= 400 || m.persistFailed:
		entry.Warn("item request")
	default:
		entry.Info("item request")
	}
}
