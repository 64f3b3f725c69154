package detect

import (
	"math"
	"time"

	"github.com/Mitheesha/situational-awareness/internal/aggregate"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation, or 0 for fewer than
// two values so a single-row baseline never divides by zero.
func sampleStdDev(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func windowDuration(snap *aggregate.Snapshot) time.Duration {
	return time.Duration(snap.WindowHours) * time.Hour
}
