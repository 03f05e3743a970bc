// Package bridge 传感器桥接服务：MQTT 读数经 Redis Streams 缓冲后转发到后端
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/megumiii12/athlete/internal/models"
	"github.com/megumiii12/athlete/internal/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Consumer 接收 MQTT 读数并写入 Redis Streams 缓冲
type Consumer struct {
	redis            *redis.Client
	stream           string
	defaultAthleteID int
	logger           *zap.Logger
}

// NewConsumer 创建读数消费者
func NewConsumer(redisClient *redis.Client, stream string, defaultAthleteID int, logger *zap.Logger) *Consumer {
	return &Consumer{
		redis:            redisClient,
		stream:           stream,
		defaultAthleteID: defaultAthleteID,
		logger:           logger,
	}
}

// HandleMessage 处理一条 MQTT 消息
// 1. 解析设备读数
// 2. 补齐缺失的 athlete_id
// 3. 打上 reading_id 与接收时间后写入缓冲流
func (c *Consumer) HandleMessage(topic string, payload []byte) error {
	var reading models.DeviceReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return fmt.Errorf("failed to parse device reading: %w", err)
	}

	if reading.AthleteID == 0 {
		reading.AthleteID = c.defaultAthleteID
	}

	buffered := models.BufferedReading{
		ReadingID:  uuid.New().String(),
		ReceivedAt: time.Now().Unix(),
		Reading:    reading,
	}

	id, err := redis.PublishJSONToStream(context.Background(), c.redis, c.stream, buffered)
	if err != nil {
		return fmt.Errorf("failed to buffer reading: %w", err)
	}

	c.logger.Debug("Reading buffered",
		zap.String("topic", topic),
		zap.String("reading_id", buffered.ReadingID),
		zap.String("stream_id", id),
		zap.Float64("heart_rate", float64(reading.HeartRate)),
		zap.Float64("temperature", float64(reading.Temperature)),
	)
	return nil
}
