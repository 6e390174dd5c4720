package schedule

// Bridges exposing unexported helpers to the external schedule_test package,
// which lives outside this package to avoid an import cycle with
// songsched/features.
var (
	Midnight    = midnight
	SameDay     = sameDay
	PredictSlot = (*Searcher).predictSlot
)

const FallbackConfidence = fallbackConfidence
