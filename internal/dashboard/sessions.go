package dashboard

import (
	"math"

	"github.com/megumiii12/athlete/internal/models"
)

// BuildSessions 将一个查询窗口内的历史记录归并为会话列表
// 当前策略：非空窗口恒为单个会话（ID=1），覆盖整个窗口
// 按间隔切分多个会话是未完成的特性，切分阈值未定（见 DESIGN.md）
func BuildSessions(records []models.HistoryRecord) []models.Session {
	if len(records) == 0 {
		return nil
	}
	return []models.Session{
		{
			ID:        1,
			StartTime: records[0].Timestamp.Time,
			Data:      records,
		},
	}
}

// ComputeStats 计算会话汇总统计
// 平均心率四舍五入取整，平均体温保留原值（视图层格式化为 1 位小数）
func ComputeStats(session models.Session) models.SessionStats {
	stats := models.SessionStats{
		DurationMin: session.DurationMinutes(),
	}
	if len(session.Data) == 0 {
		return stats
	}

	var sumHR, sumTemp, maxHR float64
	for _, r := range session.Data {
		hr := float64(r.HeartRate)
		sumHR += hr
		sumTemp += float64(r.Temperature)
		if hr > maxHR {
			maxHR = hr
		}
	}

	n := float64(len(session.Data))
	stats.AvgHeartRate = int(math.Round(sumHR / n))
	stats.MaxHeartRate = maxHR
	stats.AvgTemperature = sumTemp / n
	return stats
}
