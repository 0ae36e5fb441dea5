package httpapi

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"quotebot/internal/store/tradelog"
)

const (
	chartBackground  = "#060c1b"
	chartTextPrimary = "#eceff4"
	chartTextMuted   = "#9ca3af"
	chartLineColor   = "#22d3ee"
)

// renderPnLChart writes a self-contained HTML page with the cumulative PnL
// curve built from the closed trades.
func renderPnLChart(w io.Writer, symbol string, rows []tradelog.TradeModel) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           "1200px",
			Height:          "520px",
			BackgroundColor: chartBackground,
			PageTitle:       fmt.Sprintf("%s PnL", strings.ToUpper(symbol)),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("%s cumulative PnL", strings.ToUpper(symbol)),
			Subtitle:      fmt.Sprintf("%d closed trades", len(rows)),
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: chartTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: chartTextMuted},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: chartTextMuted},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: chartTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: chartTextMuted, Opacity: opts.Float(0.2)}},
		}),
	)

	xAxis := make([]string, len(rows))
	data := make([]opts.LineData, len(rows))
	var cum float64
	for i, row := range rows {
		cum += row.PnL
		xAxis[i] = row.CreatedAt.UTC().Format("01-02 15:04")
		data[i] = opts.LineData{Value: round4(cum)}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("PnL", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: chartLineColor, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line.Render(w)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
