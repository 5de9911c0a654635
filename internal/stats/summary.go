package stats

import (
	"math"
	"sort"
)

// TimingSummary aggregates one session's per-run times.
type TimingSummary struct {
	Runs     int     `json:"runs"`
	TotalMS  float64 `json:"total_ms"`
	MeanMS   float64 `json:"mean_ms"`
	StdMS    float64 `json:"std_ms"`
	MedianMS float64 `json:"median_ms"`
	MinMS    float64 `json:"min_ms"`
	MaxMS    float64 `json:"max_ms"`
}

// SummarizeTimings computes the summary of a timing vector. Std is the
// population standard deviation.
func SummarizeTimings(timesMS []float64) TimingSummary {
	if len(timesMS) == 0 {
		return TimingSummary{}
	}

	summary := TimingSummary{
		Runs:  len(timesMS),
		MinMS: timesMS[0],
		MaxMS: timesMS[0],
	}
	for _, value := range timesMS {
		summary.TotalMS += value
		if value > summary.MaxMS {
			summary.MaxMS = value
		}
		if value < summary.MinMS {
			summary.MinMS = value
		}
	}
	summary.MeanMS = summary.TotalMS / float64(len(timesMS))

	sumSq := 0.0
	for _, value := range timesMS {
		diff := summary.MeanMS - value
		sumSq += diff * diff
	}
	summary.StdMS = math.Sqrt(sumSq / float64(len(timesMS)))

	sorted := append([]float64(nil), timesMS...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		summary.MedianMS = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		summary.MedianMS = sorted[mid]
	}

	return summary
}
