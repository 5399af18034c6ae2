package stats

import (
	"maps"
	"slices"
)

// MetricStats describes the distribution of one metric for one tool.
// Outliers holds the full sorted sample, not a fenced subset.
type MetricStats struct {
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Mean     float64   `json:"mean"`
	Outliers []float64 `json:"outliers"`
}

type ToolMetrics struct {
	Execution MetricStats `json:"execution"`
	CPU       MetricStats `json:"cpu"`
	Memory    MetricStats `json:"memory"`
}

// StatsData maps tool names to their statistics.
type StatsData map[string]ToolMetrics

// Tools returns the tool names in lexical order.
func (sd StatsData) Tools() []string {
	return slices.Sorted(maps.Keys(sd))
}

// CalculateStats computes descriptive statistics over data without
// modifying it. Quartiles use the lower index floor(n*p), no interpolation.
func CalculateStats(data []float64) MetricStats {
	n := len(data)
	if n == 0 {
		return MetricStats{Outliers: []float64{}}
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return MetricStats{
		Min:      sorted[0],
		Q1:       sorted[n/4],
		Median:   sorted[n/2],
		Q3:       sorted[n*3/4],
		Max:      sorted[n-1],
		Mean:     sum / float64(n),
		Outliers: sorted,
	}
}

// GenerateStats groups rows by tool and computes statistics for each metric.
func GenerateStats(rows []Row) StatsData {
	result := StatsData{}
	for tool, group := range groupByTool(rows) {
		result[tool] = ToolMetrics{
			Execution: CalculateStats(values(group, Execution)),
			CPU:       CalculateStats(values(group, CPU)),
			Memory:    CalculateStats(values(group, Memory)),
		}
	}

	return result
}

func groupByTool(rows []Row) map[string][]Row {
	groups := make(map[string][]Row)
	for _, r := range rows {
		groups[r.Tool] = append(groups[r.Tool], r)
	}

	return groups
}

func values(rows []Row, m Metric) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = m.Value(r)
	}

	return out
}
