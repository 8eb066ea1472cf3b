package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/montanaflynn/stats"
)

var ErrNothingToChart = errors.New("report has no numeric aggregates to chart")

type GroupTotal struct {
	Name  string
	Total float64
}

// GroupTotals sums the numeric aggregates of each group. Groups without any
// numeric aggregate are left out.
func GroupTotals(report *domain.ParsedReport) []GroupTotal {
	var totals []GroupTotal
	for _, g := range report.Groups {
		var values []float64
		for _, v := range g.Aggregates.Values {
			if n, ok := numeric(v); ok {
				values = append(values, n)
			}
		}
		if len(values) == 0 {
			continue
		}
		sum, err := stats.Sum(values)
		if err != nil {
			continue
		}
		totals = append(totals, GroupTotal{Name: g.Name, Total: sum})
	}
	return totals
}

// RenderChart writes an HTML page with a bar per group total.
func RenderChart(w io.Writer, report *domain.ParsedReport) error {
	totals := GroupTotals(report)
	if len(totals) == 0 {
		return ErrNothingToChart
	}

	names := make([]string, 0, len(totals))
	data := make([]opts.BarData, 0, len(totals))
	for _, t := range totals {
		names = append(names, t.Name)
		data = append(data, opts.BarData{Name: t.Name, Value: t.Total})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    report.Name,
			Subtitle: fmt.Sprintf("%s report, aggregates per group", report.Result.Format),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	bar.SetXAxis(names).AddSeries("Total", data)

	page := components.NewPage()
	page.PageTitle = report.Name
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func numeric(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Float64()
		return n, err == nil
	case float64:
		return val, true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}
