package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/models"
	"github.com/megumiii12/athlete/internal/redis"

	"go.uber.org/zap"
)

// Forwarder 从缓冲流批量读取读数并转发到后端
// 转发成功才 ACK，失败的消息留在 pending 列表等待重试
type Forwarder struct {
	redis  *redis.Client
	api    *api.Client
	stream string
	group  string
	name   string
	batch  int
	logger *zap.Logger
}

// NewForwarder 创建转发器
func NewForwarder(redisClient *redis.Client, apiClient *api.Client, stream, group, name string, batchSize int, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		redis:  redisClient,
		api:    apiClient,
		stream: stream,
		group:  group,
		name:   name,
		batch:  batchSize,
		logger: logger,
	}
}

// Run 循环消费缓冲流直到 ctx 取消
// TODO: 用 XAUTOCLAIM 接管崩溃消费者遗留的 pending 消息
func (f *Forwarder) Run(ctx context.Context) error {
	if err := redis.CreateConsumerGroup(ctx, f.redis, f.stream, f.group); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	f.logger.Info("Forwarder started",
		zap.String("stream", f.stream),
		zap.String("group", f.group),
		zap.String("consumer", f.name),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := f.processBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.logger.Error("Failed to process batch", zap.Error(err))
		}
	}
}

// processBatch 读取并转发一批消息，返回成功转发的条数
func (f *Forwarder) processBatch(ctx context.Context) (int, error) {
	messages, err := redis.ReadFromStream(ctx, f.redis, f.stream, f.group, f.name, int64(f.batch))
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	forwarded := 0
	for _, msg := range messages {
		buffered, err := decodeBufferedReading(msg)
		if err != nil {
			// 格式错误的消息无法重试，ACK 后丢弃
			f.logger.Error("Dropping malformed message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
			if ackErr := redis.AckMessage(ctx, f.redis, f.stream, f.group, msg.ID); ackErr != nil {
				f.logger.Error("Failed to ack malformed message", zap.Error(ackErr))
			}
			continue
		}

		request := models.RawReadingRequest{
			HeartRate:    float64(buffered.Reading.HeartRate),
			Temperature:  float64(buffered.Reading.Temperature),
			AthleteID:    buffered.Reading.AthleteID,
			AlertMessage: buffered.Reading.AlertMessage,
		}
		if err := f.api.PushReading(ctx, request); err != nil {
			f.logger.Warn("Failed to forward reading, will retry",
				zap.String("reading_id", buffered.ReadingID),
				zap.Error(err),
			)
			continue
		}

		if err := redis.AckMessage(ctx, f.redis, f.stream, f.group, msg.ID); err != nil {
			f.logger.Error("Failed to ack forwarded message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		forwarded++
	}

	if forwarded > 0 {
		f.logger.Info("Batch forwarded",
			zap.Int("forwarded", forwarded),
			zap.Int("total", len(messages)),
		)
	}
	return forwarded, nil
}

func decodeBufferedReading(msg redis.StreamMessage) (*models.BufferedReading, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("message %s has no data field", msg.ID)
	}

	var buffered models.BufferedReading
	if err := json.Unmarshal([]byte(data), &buffered); err != nil {
		return nil, fmt.Errorf("failed to parse buffered reading: %w", err)
	}
	return &buffered, nil
}
