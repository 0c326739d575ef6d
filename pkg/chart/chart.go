// Package chart renders a terminal job's issue summary as a standalone HTML
// bar chart, for the CLI's optional "export chart" output.
package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/reviewforge/reviewforge/internal/issue"
)

const (
	chartWidth  = "900px"
	chartHeight = "450px"
	chartTitle  = "reviewforge issue tally"
)

// SeverityBar builds a bar chart of a job's severity tally, one bar each
// for critical/high/medium/low.
func SeverityBar(summary issue.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: chartTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "severity"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "issues"}),
	)

	bar.SetXAxis([]string{"critical", "high", "medium", "low"})
	bar.AddSeries("severity", []opts.BarData{
		{Value: summary.Tally.Critical},
		{Value: summary.Tally.High},
		{Value: summary.Tally.Medium},
		{Value: summary.Tally.Low},
	})

	return bar
}

// CategoryBar builds a bar chart of a job's per-category issue counts.
func CategoryBar(summary issue.Summary) *charts.Bar {
	categories := issue.Categories()

	labels := make([]string, len(categories))
	data := make([]opts.BarData, len(categories))

	for i, c := range categories {
		labels[i] = string(c)
		data[i] = opts.BarData{Value: summary.ByCategory[c]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: chartTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "issues"}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("category", data)

	return bar
}

// RenderHTML writes the severity bar chart as a standalone HTML page.
// Category breakdown is available separately via CategoryBar for callers
// that want to render it into their own page.
func RenderHTML(w io.Writer, summary issue.Summary) error {
	return SeverityBar(summary).Render(w)
}
