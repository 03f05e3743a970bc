package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 客户端套件配置
type Config struct {
	// 后端 API 配置
	API struct {
		BaseURL string
		Timeout int // 请求超时（秒）
	}

	// 本地凭证存储
	Credentials struct {
		Path string // 凭证文件路径
	}

	// 仪表盘配置
	Dashboard struct {
		PollInterval       int // 轮询间隔（秒），默认 5 秒
		LiveWindowHours    int // 实时图表历史窗口（小时）
		SessionWindowHours int // 会话历史窗口（小时）

		// 异常判定阈值（与后端模型保持一致）
		Thresholds struct {
			AbnormalTemp      float64 // 体温异常阈值（°C）
			CriticalTemp      float64 // 体温危急阈值（°C）
			AbnormalHeartRate float64 // 心率异常阈值（BPM）
		}
	}

	// 传感器桥接服务配置（ESP32 → MQTT → 后端）
	Bridge struct {
		MQTT MQTTConfig

		Redis RedisConfig

		// Redis Streams 缓冲配置
		Stream        string // 读数缓冲流名称，如 "athlete:readings"
		ConsumerGroup string // 消费者组名称
		ConsumerName  string // 消费者名称
		BatchSize     int    // 批量转发大小

		AthleteID int // 无 athlete_id 的读数归属的默认运动员
	}

	Log struct {
		Level  string
		Format string
	}
}

// MQTTConfig MQTT 连接配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load 加载配置（.env 可选，环境变量优先）
func Load() (*Config, error) {
	// .env 不存在不是错误，开发环境才使用
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.API.BaseURL = getEnv("ATHLETE_API_URL", "http://localhost:5000")
	cfg.API.Timeout = getEnvInt("ATHLETE_API_TIMEOUT", 10)

	cfg.Credentials.Path = getEnv("ATHLETE_CREDENTIALS_PATH", defaultCredentialsPath())

	cfg.Dashboard.PollInterval = getEnvInt("DASHBOARD_POLL_INTERVAL", 5)
	cfg.Dashboard.LiveWindowHours = getEnvInt("DASHBOARD_LIVE_WINDOW_HOURS", 24)
	cfg.Dashboard.SessionWindowHours = getEnvInt("DASHBOARD_SESSION_WINDOW_HOURS", 168)
	cfg.Dashboard.Thresholds.AbnormalTemp = getEnvFloat("DASHBOARD_ABNORMAL_TEMP", 36.5)
	cfg.Dashboard.Thresholds.CriticalTemp = getEnvFloat("DASHBOARD_CRITICAL_TEMP", 38.5)
	cfg.Dashboard.Thresholds.AbnormalHeartRate = getEnvFloat("DASHBOARD_ABNORMAL_HEART_RATE", 120)

	cfg.Bridge.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.Bridge.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "athlete-bridge")
	cfg.Bridge.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.Bridge.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.Bridge.MQTT.Topic = getEnv("MQTT_TOPIC", "athlete/sensor-data")
	cfg.Bridge.MQTT.QoS = 1

	cfg.Bridge.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Bridge.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Bridge.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Bridge.Stream = getEnv("BRIDGE_STREAM", "athlete:readings")
	cfg.Bridge.ConsumerGroup = getEnv("BRIDGE_CONSUMER_GROUP", "athlete-bridge-group")
	cfg.Bridge.ConsumerName = getEnv("BRIDGE_CONSUMER_NAME", "athlete-bridge-1")
	cfg.Bridge.BatchSize = getEnvInt("BRIDGE_BATCH_SIZE", 10)
	cfg.Bridge.AthleteID = getEnvInt("BRIDGE_ATHLETE_ID", 1)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// defaultCredentialsPath 默认凭证文件路径（浏览器 localStorage 的本地等价物）
func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".athlete/credentials.json"
	}
	return filepath.Join(home, ".athlete", "credentials.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}
