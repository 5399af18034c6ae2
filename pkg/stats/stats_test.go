package stats_test

import (
	"math/rand/v2"
	"testing"

	"github.com/absmach/pkgbench/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStatsEmpty(t *testing.T) {
	t.Parallel()

	got := stats.CalculateStats(nil)

	assert.Zero(t, got.Min)
	assert.Zero(t, got.Q1)
	assert.Zero(t, got.Median)
	assert.Zero(t, got.Q3)
	assert.Zero(t, got.Max)
	assert.Zero(t, got.Mean)
	assert.NotNil(t, got.Outliers)
	assert.Empty(t, got.Outliers)
}

func TestCalculateStatsLowerIndexQuartiles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		data []float64
		want stats.MetricStats
	}{
		{
			desc: "single value",
			data: []float64{7},
			want: stats.MetricStats{Min: 7, Q1: 7, Median: 7, Q3: 7, Max: 7, Mean: 7, Outliers: []float64{7}},
		},
		{
			desc: "two values",
			data: []float64{4, 2},
			want: stats.MetricStats{Min: 2, Q1: 2, Median: 4, Q3: 4, Max: 4, Mean: 3, Outliers: []float64{2, 4}},
		},
		{
			desc: "four values",
			data: []float64{40, 10, 30, 20},
			want: stats.MetricStats{Min: 10, Q1: 20, Median: 30, Q3: 40, Max: 40, Mean: 25, Outliers: []float64{10, 20, 30, 40}},
		},
		{
			desc: "five values with ties",
			data: []float64{3, 1, 3, 5, 3},
			want: stats.MetricStats{Min: 1, Q1: 3, Median: 3, Q3: 3, Max: 5, Mean: 3, Outliers: []float64{1, 3, 3, 3, 5}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, stats.CalculateStats(tc.data))
		})
	}
}

func TestCalculateStatsDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	data := []float64{3, 1, 2}
	_ = stats.CalculateStats(data)

	assert.Equal(t, []float64{3, 1, 2}, data)
}

func TestCalculateStatsOrdering(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		n := rng.IntN(50) + 1
		data := make([]float64, n)
		for i := range data {
			data[i] = rng.Float64() * 1000
		}

		s := stats.CalculateStats(data)

		require.LessOrEqual(t, s.Min, s.Q1)
		require.LessOrEqual(t, s.Q1, s.Median)
		require.LessOrEqual(t, s.Median, s.Q3)
		require.LessOrEqual(t, s.Q3, s.Max)
		require.LessOrEqual(t, s.Min, s.Mean+1e-9)
		require.LessOrEqual(t, s.Mean, s.Max+1e-9)
		require.Len(t, s.Outliers, n)
	}
}

func sampleRows() []stats.Row {
	return []stats.Row{
		{Tool: "ruff", ExecutionTime: 0.2, CPUUsed: 95, MemoryUsed: 20480},
		{Tool: "mypy", ExecutionTime: 12.5, CPUUsed: 99, MemoryUsed: 310000},
		{Tool: "ruff", ExecutionTime: 0.4, CPUUsed: 90, MemoryUsed: 22528},
		{Tool: "flake8", ExecutionTime: 3, CPUUsed: 100, MemoryUsed: 41000},
		{Tool: "mypy", ExecutionTime: 10.5, CPUUsed: 97, MemoryUsed: 300000},
	}
}

func TestGenerateStats(t *testing.T) {
	t.Parallel()

	got := stats.GenerateStats(sampleRows())

	assert.Equal(t, []string{"flake8", "mypy", "ruff"}, got.Tools())

	mypy := got["mypy"]
	assert.Equal(t, 10.5, mypy.Execution.Min)
	assert.Equal(t, 12.5, mypy.Execution.Max)
	assert.Equal(t, 12.5, mypy.Execution.Median)
	assert.InDelta(t, 11.5, mypy.Execution.Mean, 1e-9)
	assert.Equal(t, []float64{300000, 310000}, mypy.Memory.Outliers)

	assert.Empty(t, stats.GenerateStats(nil))
}

func TestGenerateStatsPartitionsRows(t *testing.T) {
	t.Parallel()

	rows := sampleRows()
	got := stats.GenerateStats(rows)

	total := 0
	for _, tool := range got.Tools() {
		tm := got[tool]
		assert.Len(t, tm.CPU.Outliers, len(tm.Execution.Outliers))
		assert.Len(t, tm.Memory.Outliers, len(tm.Execution.Outliers))
		total += len(tm.Execution.Outliers)
	}
	assert.Equal(t, len(rows), total)
}

func TestGenerateStatsIsDeterministic(t *testing.T) {
	t.Parallel()

	rows := sampleRows()
	assert.Equal(t, stats.GenerateStats(rows), stats.GenerateStats(rows))
}

func TestAggregateByTool(t *testing.T) {
	t.Parallel()

	got := stats.AggregateByTool(sampleRows())

	require.Len(t, got, 3)
	ruff := got["ruff"]
	assert.Equal(t, 2, ruff.Count)
	assert.InDelta(t, 0.3, ruff.AvgExecutionTime, 1e-9)
	assert.InDelta(t, 92.5, ruff.AvgCPUUsage, 1e-9)
	assert.InDelta(t, 21504, ruff.AvgMemoryUsage, 1e-9)

	count := 0
	for _, agg := range got {
		count += agg.Count
	}
	assert.Equal(t, len(sampleRows()), count)

	assert.Empty(t, stats.AggregateByTool(nil))
}

func TestMetricStatistics(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc   string
		rows   []stats.Row
		metric stats.Metric
		want   stats.Summary
	}{
		{desc: "no rows", rows: nil, metric: stats.CPU, want: stats.Summary{}},
		{desc: "cpu", rows: sampleRows(), metric: stats.CPU, want: stats.Summary{Min: 90, Max: 100, Avg: 96.2}},
		{desc: "memory", rows: sampleRows()[:2], metric: stats.Memory, want: stats.Summary{Min: 20480, Max: 310000, Avg: 165240}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got := stats.MetricStatistics(tc.rows, tc.metric)
			assert.InDelta(t, tc.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tc.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tc.want.Avg, got.Avg, 1e-9)
		})
	}
}

func TestParseMetric(t *testing.T) {
	t.Parallel()

	m, err := stats.ParseMetric("memory")
	require.NoError(t, err)
	assert.Equal(t, stats.Memory, m)

	_, err = stats.ParseMetric("disk")
	assert.Error(t, err)
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	rows := sampleRows()
	r := stats.BuildReport(rows)

	assert.Equal(t, rows, r.Rows)
	assert.Equal(t, stats.GenerateStats(rows), r.Stats)
	assert.Equal(t, stats.AggregateByTool(rows), r.Aggregates)
	require.Len(t, r.Overall, 3)
	assert.Equal(t, 0.2, r.Overall[stats.Execution].Min)
	assert.Equal(t, 12.5, r.Overall[stats.Execution].Max)
}
