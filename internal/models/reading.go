package models

// DeviceReading ESP32 设备通过 MQTT 上报的原始读数
type DeviceReading struct {
	HeartRate    Float  `json:"heart_rate"`
	Temperature  Float  `json:"temperature"`
	AthleteID    int    `json:"athlete_id,omitempty"`
	AlertMessage string `json:"alert_message,omitempty"`
}

// BufferedReading 经 Redis Streams 缓冲的读数（桥接服务内部格式）
type BufferedReading struct {
	ReadingID  string        `json:"reading_id"` // uuid，用于日志追踪
	ReceivedAt int64         `json:"received_at"`
	Reading    DeviceReading `json:"reading"`
}

// RawReadingRequest POST /api/sensor-data-raw 请求体
type RawReadingRequest struct {
	HeartRate    float64 `json:"heart_rate"`
	Temperature  float64 `json:"temperature"`
	AthleteID    int     `json:"athlete_id"`
	AlertMessage string  `json:"alert_message,omitempty"`
}
