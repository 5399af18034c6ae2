package stats

import "fmt"

type Metric string

const (
	Execution Metric = "execution"
	CPU       Metric = "cpu"
	Memory    Metric = "memory"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case Execution, CPU, Memory:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Value extracts the metric from a row.
func (m Metric) Value(r Row) float64 {
	switch m {
	case Execution:
		return r.ExecutionTime
	case CPU:
		return r.CPUUsed
	case Memory:
		return float64(r.MemoryUsed)
	default:
		return 0
	}
}

// ToolAggregate holds per tool averages. It is coarser than ToolMetrics.
type ToolAggregate struct {
	AvgExecutionTime float64 `json:"avg_execution_time"`
	AvgCPUUsage      float64 `json:"avg_cpu_usage"`
	AvgMemoryUsage   float64 `json:"avg_memory_usage"`
	Count            int     `json:"count"`
}

// AggregateByTool averages every metric per tool using running sums.
func AggregateByTool(rows []Row) map[string]ToolAggregate {
	type totals struct {
		exec, cpu, mem float64
		count          int
	}

	sums := make(map[string]*totals)
	for _, r := range rows {
		t, ok := sums[r.Tool]
		if !ok {
			t = &totals{}
			sums[r.Tool] = t
		}
		t.exec += r.ExecutionTime
		t.cpu += r.CPUUsed
		t.mem += float64(r.MemoryUsed)
		t.count++
	}

	result := make(map[string]ToolAggregate, len(sums))
	for tool, t := range sums {
		n := float64(t.count)
		result[tool] = ToolAggregate{
			AvgExecutionTime: t.exec / n,
			AvgCPUUsage:      t.cpu / n,
			AvgMemoryUsage:   t.mem / n,
			Count:            t.count,
		}
	}

	return result
}

type Summary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// MetricStatistics summarises one metric across all rows regardless of tool.
func MetricStatistics(rows []Row, m Metric) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	first := m.Value(rows[0])
	s := Summary{Min: first, Max: first}
	var sum float64
	for _, r := range rows {
		v := m.Value(r)
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		sum += v
	}
	s.Avg = sum / float64(len(rows))

	return s
}
