package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/megumiii12/athlete/internal/view"
)

// sparkChars 折线图的单行字符近似
var sparkChars = []rune("▁▂▃▄▅▆▇█")

// terminalRenderer 将视图描述渲染到终端
// 轮询协程和命令协程都会调用，用互斥锁串行化输出
type terminalRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{out: out}
}

func (r *terminalRenderer) ShowUser(username, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Signed in as %s %s\n", username, userID)
}

func (r *terminalRenderer) ShowReadout(readout view.LiveReadout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "♥ %-14s 🌡 %s\n", readout.HeartRate, readout.Temperature)
}

func (r *terminalRenderer) ShowAlert(banner view.AlertBanner) {
	if !banner.Visible {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "⚠ ALERT: %s\n", banner.Message)
}

func (r *terminalRenderer) ShowLiveCharts(heartRate, temperature view.ChartSeries) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderSeries(heartRate)
	r.renderSeries(temperature)
}

func (r *terminalRenderer) ShowSessionList(items []view.SessionItem, placeholder string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, "Sessions:")
	if len(items) == 0 {
		fmt.Fprintf(r.out, "  %s\n", placeholder)
		return
	}
	for _, item := range items {
		marker := " "
		if item.Selected {
			marker = ">"
		}
		fmt.Fprintf(r.out, " %s [%d] %s %s  %s\n", marker, item.ID, item.Date, item.StartClock, item.DurationText)
	}
}

func (r *terminalRenderer) ShowSessionDetail(summary view.SessionSummary, heartRate, temperature view.ChartSeries) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "Session summary: avg %s | max %s | avg temp %s | %s\n",
		summary.AvgHeartRate, summary.MaxHeartRate, summary.AvgTemperature, summary.Duration)
	r.renderSeries(heartRate)
	r.renderSeries(temperature)
}

func (r *terminalRenderer) ShowAbnormal(table view.AbnormalTable) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if table.Loading {
		fmt.Fprintln(r.out, "Loading abnormal history...")
		return
	}
	if table.Placeholder != "" {
		fmt.Fprintln(r.out, table.Placeholder)
		return
	}

	fmt.Fprintf(r.out, "%-12s %-10s %-12s %-10s %s\n", "Date", "Time", "Temperature", "HeartRate", "Severity")
	for _, row := range table.Rows {
		fmt.Fprintf(r.out, "%-12s %-10s %-12s %-10s %s\n", row.Date, row.Clock, row.Temperature, row.HeartRate, row.Badge)
	}
}

// renderSeries 将一条序列压成单行 sparkline
func (r *terminalRenderer) renderSeries(series view.ChartSeries) {
	if len(series.Points) == 0 {
		return
	}

	var b strings.Builder
	span := series.YMax - series.YMin
	for _, point := range series.Points {
		ratio := (point - series.YMin) / span
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		idx := int(ratio * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}

	first := series.Labels[0]
	last := series.Labels[len(series.Labels)-1]
	fmt.Fprintf(r.out, "%s [%s..%s]\n  %s\n", series.Title, first, last, b.String())
}
