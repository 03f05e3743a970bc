package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TelemetrySample 最新遥测读数（GET /api/latest-data）
type TelemetrySample struct {
	Timestamp    ISOTime `json:"timestamp"`
	HeartRate    Float   `json:"heart_rate"`
	Temperature  Float   `json:"temperature"`
	IsAbnormal   bool    `json:"is_abnormal"`
	AlertMessage string  `json:"alert_message,omitempty"`
}

// HistoryRecord 历史遥测记录（GET /api/history）
type HistoryRecord struct {
	Timestamp   ISOTime `json:"timestamp"`
	HeartRate   Float   `json:"heart_rate"`
	Temperature Float   `json:"temperature"`
	IsAbnormal  bool    `json:"is_abnormal,omitempty"`
}

// ISOTime 后端时间戳（ISO-8601，可能不带时区）
type ISOTime struct {
	time.Time
}

// 后端由 MySQL TIMESTAMP 经 isoformat() 序列化，常见为不带时区的格式
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func (t *ISOTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("failed to parse timestamp %q", s)
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339) + `"`), nil
}

// Float 宽松的浮点数：后端 DECIMAL 字段可能被序列化为数字或字符串
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("failed to parse float %q: %w", s, err)
	}
	*f = Float(v)
	return nil
}

func (f Float) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}
