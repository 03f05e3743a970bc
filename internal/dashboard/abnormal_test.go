package dashboard_test

import (
	"testing"
	"time"

	"github.com/megumiii12/athlete/internal/dashboard"
	"github.com/megumiii12/athlete/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThresholds = dashboard.Thresholds{
	AbnormalTemp:      36.5,
	CriticalTemp:      38.5,
	AbnormalHeartRate: 120,
}

func TestFilterAbnormal_PredicatePerRecord(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	records := []models.HistoryRecord{
		record(base, 80, 36.0),                   // 正常
		record(base.Add(time.Minute), 90, 37.0),  // 体温超阈值
		record(base.Add(2*time.Minute), 130, 39.0), // 双超
	}

	abnormal := dashboard.FilterAbnormal(records, testThresholds)
	require.Len(t, abnormal, 2)

	// 降序：39.0 那条在前
	assert.InDelta(t, 39.0, float64(abnormal[0].Temperature), 1e-9)
	assert.InDelta(t, 37.0, float64(abnormal[1].Temperature), 1e-9)
}

func TestFilterAbnormal_HeartRateAlone(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	records := []models.HistoryRecord{
		record(base, 130, 36.0), // 仅心率超阈值
		record(base.Add(time.Minute), 120, 36.0), // 恰好 120 不入选（严格大于）
	}

	abnormal := dashboard.FilterAbnormal(records, testThresholds)
	require.Len(t, abnormal, 1)
	assert.InDelta(t, 130, float64(abnormal[0].HeartRate), 1e-9)
}

func TestFilterAbnormal_BoundaryTempExcluded(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// 36.5 恰好等于阈值，不入选
	abnormal := dashboard.FilterAbnormal([]models.HistoryRecord{record(base, 80, 36.5)}, testThresholds)
	assert.Empty(t, abnormal)
}

func TestFilterAbnormal_SortStrictlyDescending(t *testing.T) {
	t1 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	records := []models.HistoryRecord{
		record(t1, 130, 36.0),
		record(t2, 131, 36.0),
		record(t3, 132, 36.0),
	}

	abnormal := dashboard.FilterAbnormal(records, testThresholds)
	require.Len(t, abnormal, 3)
	assert.Equal(t, t3, abnormal[0].Timestamp.Time)
	assert.Equal(t, t2, abnormal[1].Timestamp.Time)
	assert.Equal(t, t1, abnormal[2].Timestamp.Time)
}

func TestFilterAbnormal_Severity(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	records := []models.HistoryRecord{
		record(base, 80, 37.0),               // warning
		record(base.Add(time.Minute), 80, 38.5), // 恰好 38.5 仍是 warning
		record(base.Add(2*time.Minute), 80, 39.0), // critical
		record(base.Add(3*time.Minute), 130, 36.0), // 仅心率超：warning
	}

	abnormal := dashboard.FilterAbnormal(records, testThresholds)
	require.Len(t, abnormal, 4)

	severityByTemp := map[float64]models.Severity{}
	for _, r := range abnormal {
		severityByTemp[float64(r.Temperature)] = r.Severity
	}
	assert.Equal(t, models.SeverityWarning, severityByTemp[37.0])
	assert.Equal(t, models.SeverityWarning, severityByTemp[38.5])
	assert.Equal(t, models.SeverityCritical, severityByTemp[39.0])
	assert.Equal(t, models.SeverityWarning, severityByTemp[36.0])
}

func TestFilterAbnormal_EmptyInput(t *testing.T) {
	assert.Empty(t, dashboard.FilterAbnormal(nil, testThresholds))
}
