package models

import (
	"math"
	"time"
)

// Session 客户端侧的会话分组：一段连续的遥测记录
// 当前策略：每次加载将整个查询窗口归并为一个会话（见 DESIGN.md）
type Session struct {
	ID        int
	StartTime time.Time
	Data      []HistoryRecord // 按时间升序
}

// EndTime 最后一条记录的时间戳；空会话返回 StartTime
func (s Session) EndTime() time.Time {
	if len(s.Data) == 0 {
		return s.StartTime
	}
	return s.Data[len(s.Data)-1].Timestamp.Time
}

// DurationMinutes 首末记录间隔，四舍五入到整分钟（90 秒 → 2 分钟）
// 会话列表和汇总面板共用同一条舍入规则
func (s Session) DurationMinutes() int {
	return int(math.Round(s.EndTime().Sub(s.StartTime).Minutes()))
}

// SessionStats 会话汇总统计
type SessionStats struct {
	AvgHeartRate   int     // 算术平均，四舍五入取整
	MaxHeartRate   float64 // 最大心率
	AvgTemperature float64 // 算术平均，显示保留 1 位小数
	DurationMin    int     // 首末记录间隔，四舍五入到整分钟
}

// Severity 异常读数严重级别
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AbnormalRecord 命中异常条件的历史记录及其严重级别
type AbnormalRecord struct {
	HistoryRecord
	Severity Severity
}
