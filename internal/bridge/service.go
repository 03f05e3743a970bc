package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/config"
	"github.com/megumiii12/athlete/internal/mqtt"
	"github.com/megumiii12/athlete/internal/redis"

	"go.uber.org/zap"
)

// Service 桥接服务：组装 MQTT 订阅、Redis 缓冲与后端转发
type Service struct {
	config *config.Config
	logger *zap.Logger

	mqttClient  *mqtt.Client
	redisClient *redis.Client
	consumer    *Consumer
	forwarder   *Forwarder

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService 创建桥接服务
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start 启动服务
// 1. 连接 Redis
// 2. 连接 MQTT 并订阅传感器主题
// 3. 启动后端转发循环
func (s *Service) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.redisClient = redis.NewClient(&s.config.Bridge.Redis)
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := redis.Ping(pingCtx, s.redisClient); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.logger.Info("Connected to Redis", zap.String("addr", s.config.Bridge.Redis.Addr))

	mqttClient, err := mqtt.NewClient(&s.config.Bridge.MQTT, s.logger)
	if err != nil {
		return err
	}
	s.mqttClient = mqttClient

	s.consumer = NewConsumer(s.redisClient, s.config.Bridge.Stream, s.config.Bridge.AthleteID, s.logger)
	if err := s.mqttClient.Subscribe(s.config.Bridge.MQTT.Topic, s.config.Bridge.MQTT.QoS, s.consumer.HandleMessage); err != nil {
		return err
	}
	s.logger.Info("Subscribed to sensor topic", zap.String("topic", s.config.Bridge.MQTT.Topic))

	apiClient := api.NewClient(
		s.config.API.BaseURL,
		time.Duration(s.config.API.Timeout)*time.Second,
		nil, // 上报接口无需认证
		s.logger,
	)
	s.forwarder = NewForwarder(
		s.redisClient,
		apiClient,
		s.config.Bridge.Stream,
		s.config.Bridge.ConsumerGroup,
		s.config.Bridge.ConsumerName,
		s.config.Bridge.BatchSize,
		s.logger,
	)

	go func() {
		defer close(s.done)
		if err := s.forwarder.Run(ctx); err != nil {
			s.logger.Error("Forwarder exited with error", zap.Error(err))
		}
	}()

	s.logger.Info("Bridge service started")
	return nil
}

// Stop 停止服务并释放连接
func (s *Service) Stop() {
	s.logger.Info("Stopping bridge service")

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	if s.mqttClient != nil {
		if err := s.mqttClient.Unsubscribe(s.config.Bridge.MQTT.Topic); err != nil {
			s.logger.Warn("Failed to unsubscribe", zap.Error(err))
		}
		s.mqttClient.Disconnect()
	}

	if s.redisClient != nil {
		if err := redis.Close(s.redisClient); err != nil {
			s.logger.Warn("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Info("Bridge service stopped")
}
