package quality

import (
	"math"

	"ProxyPool/internal/domain"
)

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Stability blends the fresh success rate against the previously stored
// stability. A prior record decays at 0.7 retention so one bad pass does not
// erase an established track record; first-time candidates get the neutral
// 0.5.
func Stability(newRate float64, prior *domain.QualityRecord) float64 {
	if prior == nil {
		return 0.5
	}
	delta := math.Abs(newRate - prior.SuccessRate)
	return clamp01(prior.Stability*0.7 + (1-delta)*0.3)
}

// speedSubScore maps average latency in seconds to a bounded sub-score via a
// discrete step function. The mapping is monotonic non-increasing.
func speedSubScore(averageSpeed float64) float64 {
	switch {
	case averageSpeed < 0.1:
		return 1.0
	case averageSpeed < 0.5:
		return 0.8
	case averageSpeed < 1.0:
		return 0.5
	case averageSpeed < 2.0:
		return 0.3
	default:
		return 0.1
	}
}

// Score combines the latency-derived sub-score, success rate, and stability
// into one weighted quality score clamped to [0, 1].
func Score(averageSpeed, successRate, stability float64, cfg Config) float64 {
	weighted := speedSubScore(averageSpeed)*cfg.WeightSpeed +
		successRate*cfg.WeightSuccess +
		stability*cfg.WeightStability
	return clamp01(weighted)
}
