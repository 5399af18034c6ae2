package stats

// Report bundles every view computed from one metrics artifact.
type Report struct {
	Rows       []Row                    `json:"rows"`
	Stats      StatsData                `json:"stats"`
	Aggregates map[string]ToolAggregate `json:"aggregates"`
	Overall    map[Metric]Summary       `json:"overall"`
}

func BuildReport(rows []Row) Report {
	return Report{
		Rows:       rows,
		Stats:      GenerateStats(rows),
		Aggregates: AggregateByTool(rows),
		Overall: map[Metric]Summary{
			Execution: MetricStatistics(rows, Execution),
			CPU:       MetricStatistics(rows, CPU),
			Memory:    MetricStatistics(rows, Memory),
		},
	}
}
