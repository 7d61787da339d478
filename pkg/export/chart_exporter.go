package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartExporter renders a dataset as a grouped bar chart in a standalone
// HTML page. The first header labels the x axis; every other header becomes
// a series of numeric values.
type ChartExporter struct{}

// NewChartExporter constructs a chart exporter.
func NewChartExporter() *ChartExporter {
	return &ChartExporter{}
}

// ContentType implements Renderer.
func (e *ChartExporter) ContentType() string { return "text/html; charset=utf-8" }

// Extension implements Renderer.
func (e *ChartExporter) Extension() string { return FormatHTML }

// Render builds the chart page.
func (e *ChartExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) < 2 {
		return nil, fmt.Errorf("chart requires a category column and at least one series")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: data.Title,
			Width:     "960px",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{Title: data.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: data.Headers[0]}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0, Max: 100}),
	)

	categories := make([]string, len(data.Rows))
	for i, row := range data.Rows {
		categories[i] = row[data.Headers[0]]
	}
	bar.SetXAxis(categories)

	for _, series := range data.Headers[1:] {
		values := make([]opts.BarData, len(data.Rows))
		for i, row := range data.Rows {
			raw := row[series]
			if raw == "" {
				values[i] = opts.BarData{Value: 0}
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("series %q row %d: %w", series, i, err)
			}
			values[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(series, values)
	}

	buf := &bytes.Buffer{}
	if err := bar.Render(buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
