package app

import "sync/atomic"

// Metrics counts the degradations that are invisible to end users so that
// operators can still see them.
type Metrics struct {
	Utterances           atomic.Int64
	TranslationFallbacks atomic.Int64
	SynthesisFailures    atomic.Int64
	DroppedDeliveries    atomic.Int64
}

func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"utterances":            m.Utterances.Load(),
		"translation_fallbacks": m.TranslationFallbacks.Load(),
		"synthesis_failures":    m.SynthesisFailures.Load(),
		"dropped_deliveries":    m.DroppedDeliveries.Load(),
	}
}
