package dashboard

import (
	"sort"

	"github.com/megumiii12/athlete/internal/models"
)

// Thresholds 异常读数判定阈值
type Thresholds struct {
	AbnormalTemp      float64 // 超过则入选（warning）
	CriticalTemp      float64 // 超过则标记 critical
	AbnormalHeartRate float64 // 超过则入选
}

// FilterAbnormal 过滤异常读数并按时间戳严格降序排序（最新在前）
// 判定条件逐条独立：temp > AbnormalTemp 或 hr > AbnormalHeartRate
func FilterAbnormal(records []models.HistoryRecord, th Thresholds) []models.AbnormalRecord {
	var abnormal []models.AbnormalRecord
	for _, r := range records {
		temp := float64(r.Temperature)
		hr := float64(r.HeartRate)
		if temp <= th.AbnormalTemp && hr <= th.AbnormalHeartRate {
			continue
		}

		severity := models.SeverityWarning
		if temp > th.CriticalTemp {
			severity = models.SeverityCritical
		}
		abnormal = append(abnormal, models.AbnormalRecord{
			HistoryRecord: r,
			Severity:      severity,
		})
	}

	sort.Slice(abnormal, func(i, j int) bool {
		return abnormal[i].Timestamp.After(abnormal[j].Timestamp.Time)
	})
	return abnormal
}
