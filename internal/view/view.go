// Package view 将遥测数据转换为纯视图描述（字符串/结构化行）
// 不做任何 I/O，终端渲染在 cmd 层完成
package view

import (
	"fmt"

	"github.com/megumiii12/athlete/internal/models"
)

// DefaultAlertMessage 后端未提供报警文案时的默认提示
const DefaultAlertMessage = "Abnormal readings detected!"

// NoDataPlaceholder 会话窗口内没有任何记录时的占位文案
const NoDataPlaceholder = "No data available"

// AbnormalPlaceholder 异常历史为空时的占位文案
const AbnormalPlaceholder = "No abnormal readings found"

// 图表纵轴固定范围与颜色（与原仪表盘一致）
const (
	heartRateMin = 40
	heartRateMax = 180

	liveTempMin = 35
	liveTempMax = 42

	sessionTempMin = 35
	sessionTempMax = 40

	liveHeartRateColor    = "#3b82f6"
	temperatureColor      = "#f97316"
	sessionHeartRateColor = "#ef4444"
)

// LiveReadout 实时数值显示
type LiveReadout struct {
	HeartRate   string // 如 "72.35 BPM"
	Temperature string // 如 "36.6 °C"
}

func NewLiveReadout(sample *models.TelemetrySample) LiveReadout {
	return LiveReadout{
		HeartRate:   fmt.Sprintf("%.2f BPM", float64(sample.HeartRate)),
		Temperature: fmt.Sprintf("%.1f °C", float64(sample.Temperature)),
	}
}

// AlertBanner 报警横幅：可见性与样本的异常标记严格一致
type AlertBanner struct {
	Visible bool
	Message string
}

func NewAlertBanner(sample *models.TelemetrySample) AlertBanner {
	if !sample.IsAbnormal {
		return AlertBanner{}
	}
	message := sample.AlertMessage
	if message == "" {
		message = DefaultAlertMessage
	}
	return AlertBanner{Visible: true, Message: message}
}

// ChartSeries 折线图的一次完整重绘描述
type ChartSeries struct {
	Title  string
	Color  string
	Labels []string // 时刻标签，如 "14:05"
	Points []float64
	YMin   float64
	YMax   float64
	// NoAnimation 重绘时跳过动画（会话图表使用，避免闪烁）
	NoAnimation bool
}

func newSeries(title, color string, yMin, yMax float64, noAnimation bool, records []models.HistoryRecord, pick func(models.HistoryRecord) float64) ChartSeries {
	labels := make([]string, 0, len(records))
	points := make([]float64, 0, len(records))
	for _, r := range records {
		labels = append(labels, r.Timestamp.Format("15:04"))
		points = append(points, pick(r))
	}
	return ChartSeries{
		Title:       title,
		Color:       color,
		Labels:      labels,
		Points:      points,
		YMin:        yMin,
		YMax:        yMax,
		NoAnimation: noAnimation,
	}
}

func heartRateOf(r models.HistoryRecord) float64   { return float64(r.HeartRate) }
func temperatureOf(r models.HistoryRecord) float64 { return float64(r.Temperature) }

func LiveHeartRateSeries(records []models.HistoryRecord) ChartSeries {
	return newSeries("Heart Rate (BPM)", liveHeartRateColor, heartRateMin, heartRateMax, false, records, heartRateOf)
}

func LiveTemperatureSeries(records []models.HistoryRecord) ChartSeries {
	return newSeries("Temperature (°C)", temperatureColor, liveTempMin, liveTempMax, false, records, temperatureOf)
}

func SessionHeartRateSeries(records []models.HistoryRecord) ChartSeries {
	return newSeries("Heart Rate (BPM)", sessionHeartRateColor, heartRateMin, heartRateMax, true, records, heartRateOf)
}

func SessionTemperatureSeries(records []models.HistoryRecord) ChartSeries {
	return newSeries("Temperature (°C)", temperatureColor, sessionTempMin, sessionTempMax, true, records, temperatureOf)
}

// SessionItem 会话列表中的一项
type SessionItem struct {
	ID           int
	Date         string // "2026-08-30"
	StartClock   string // "14:05"
	DurationText string // "Duration: 42 min"
	Selected     bool
}

func NewSessionItems(sessions []models.Session, selectedID int) []SessionItem {
	items := make([]SessionItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, SessionItem{
			ID:           s.ID,
			Date:         s.StartTime.Format("2006-01-02"),
			StartClock:   s.StartTime.Format("15:04"),
			DurationText: fmt.Sprintf("Duration: %d min", s.DurationMinutes()),
			Selected:     s.ID == selectedID,
		})
	}
	return items
}

// SessionSummary 选中会话的汇总面板
type SessionSummary struct {
	AvgHeartRate   string // "70 BPM"
	MaxHeartRate   string // "80 BPM"
	AvgTemperature string // "36.5°C"
	Duration       string // "42 min"
}

func NewSessionSummary(stats models.SessionStats) SessionSummary {
	return SessionSummary{
		AvgHeartRate:   fmt.Sprintf("%d BPM", stats.AvgHeartRate),
		MaxHeartRate:   fmt.Sprintf("%.0f BPM", stats.MaxHeartRate),
		AvgTemperature: fmt.Sprintf("%.1f°C", stats.AvgTemperature),
		Duration:       fmt.Sprintf("%d min", stats.DurationMin),
	}
}

// AbnormalRow 异常历史表格的一行
type AbnormalRow struct {
	Date        string // "2026-08-30"
	Clock       string // "14:05:09"
	Temperature string // "38.0 °C"
	HeartRate   string // "130 BPM"
	Severity    models.Severity
	Badge       string // "CRITICAL" / "WARNING"
}

// AbnormalTable 异常历史表格
// Loading=true 表示刷新进行中（触发按钮禁用态的等价物）
type AbnormalTable struct {
	Rows        []AbnormalRow
	Loading     bool
	Placeholder string // 非空时隐藏表格，仅显示占位文案
}

func LoadingAbnormalTable() AbnormalTable {
	return AbnormalTable{Loading: true}
}

func NewAbnormalTable(records []models.AbnormalRecord) AbnormalTable {
	if len(records) == 0 {
		return AbnormalTable{Placeholder: AbnormalPlaceholder}
	}

	rows := make([]AbnormalRow, 0, len(records))
	for _, r := range records {
		badge := "WARNING"
		if r.Severity == models.SeverityCritical {
			badge = "CRITICAL"
		}
		rows = append(rows, AbnormalRow{
			Date:        r.Timestamp.Format("2006-01-02"),
			Clock:       r.Timestamp.Format("15:04:05"),
			Temperature: fmt.Sprintf("%.1f °C", float64(r.Temperature)),
			HeartRate:   fmt.Sprintf("%.0f BPM", float64(r.HeartRate)),
			Severity:    r.Severity,
			Badge:       badge,
		})
	}
	return AbnormalTable{Rows: rows}
}
