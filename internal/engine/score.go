package engine

// Score folds one cycle's events into the composite 0-100 security score.
// It starts at 100 and subtracts the configured weight per warning and alert
// event. Subtraction is commutative, so the result is invariant under
// permutation of the event set. The final clamp keeps the score inside
// [0, 100] even if weights or future additive terms push it out.
func Score(events []Event, weights Weights) int {
	score := 100
	for _, e := range events {
		switch e.Level {
		case LevelWarning:
			score -= weights.Warning
		case LevelAlert:
			score -= weights.Alert
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
