package stats_test

import (
	"math"
	"strings"
	"testing"

	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
	"github.com/absmach/pkgbench/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		in   string
		want []stats.Row
	}{
		{
			desc: "well formed",
			in: "Tool,Execution Time (s),CPU Used (%),Memory Used (KB)\n" +
				"ruff,0.25,93.5,20480\n" +
				"mypy,12,99,310000\n",
			want: []stats.Row{
				{Tool: "ruff", ExecutionTime: 0.25, CPUUsed: 93.5, MemoryUsed: 20480},
				{Tool: "mypy", ExecutionTime: 12, CPUUsed: 99, MemoryUsed: 310000},
			},
		},
		{
			desc: "spaces after commas and blank lines",
			in: "Tool, Execution Time (s), CPU Used (%), Memory Used (KB)\n" +
				"\n" +
				"flake8, 3.1, 100, 41000\n" +
				" , , , \n" +
				"\n",
			want: []stats.Row{
				{Tool: "flake8", ExecutionTime: 3.1, CPUUsed: 100, MemoryUsed: 41000},
			},
		},
		{
			desc: "lenient numeric fields",
			in: "Tool,Execution Time (s),CPU Used (%),Memory Used (KB)\n" +
				"ruff,abc,,2048.9\n" +
				"mypy,-1,NaN\n",
			want: []stats.Row{
				{Tool: "ruff", ExecutionTime: 0, CPUUsed: 0, MemoryUsed: 2048},
				{Tool: "mypy", ExecutionTime: 0, CPUUsed: 0, MemoryUsed: 0},
			},
		},
		{
			desc: "numeric prefix with trailing text",
			in: "Tool,Execution Time (s),CPU Used (%),Memory Used (KB)\n" +
				"ruff,12abc,7.5%,1e3\n" +
				"mypy,.5,1e2,512KB\n",
			want: []stats.Row{
				{Tool: "ruff", ExecutionTime: 12, CPUUsed: 7.5, MemoryUsed: 1},
				{Tool: "mypy", ExecutionTime: 0.5, CPUUsed: 100, MemoryUsed: 512},
			},
		},
		{
			desc: "memory beyond int64 saturates",
			in: "Tool,Execution Time (s),CPU Used (%),Memory Used (KB)\n" +
				"ruff,1,2,99999999999999999999\n" +
				"mypy,1,2,-99999999999999999999\n" +
				"flake8,1e999,2,1e20\n",
			want: []stats.Row{
				{Tool: "ruff", ExecutionTime: 1, CPUUsed: 2, MemoryUsed: math.MaxInt64},
				{Tool: "mypy", ExecutionTime: 1, CPUUsed: 2, MemoryUsed: 0},
				{Tool: "flake8", ExecutionTime: 0, CPUUsed: 2, MemoryUsed: 1},
			},
		},
		{
			desc: "reordered and extra columns",
			in: "Timestamp,Memory Used (KB),Tool,CPU Used (%),Execution Time (s)\n" +
				"2025-01-01T00:00:00Z,512,ruff,50,1.5\n",
			want: []stats.Row{
				{Tool: "ruff", ExecutionTime: 1.5, CPUUsed: 50, MemoryUsed: 512},
			},
		},
		{
			desc: "missing metric column defaults to zero",
			in:   "Tool,CPU Used (%)\nruff,80\n",
			want: []stats.Row{
				{Tool: "ruff", CPUUsed: 80},
			},
		},
		{
			desc: "byte order mark",
			in:   "\ufeffTool,Execution Time (s)\nruff,2\n",
			want: []stats.Row{
				{Tool: "ruff", ExecutionTime: 2},
			},
		},
		{
			desc: "empty input",
			in:   "",
			want: []stats.Row{},
		},
		{
			desc: "header only",
			in:   "Tool,Execution Time (s),CPU Used (%),Memory Used (KB)\n",
			want: []stats.Row{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := stats.ParseCSV(strings.NewReader(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCSVMissingToolColumn(t *testing.T) {
	t.Parallel()

	_, err := stats.ParseCSVBytes([]byte("Name,Execution Time (s)\nruff,1\n"))
	assert.ErrorIs(t, err, pkgerrors.ErrMissingColumn)
}
