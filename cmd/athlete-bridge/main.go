package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/megumiii12/athlete/internal/bridge"
	"github.com/megumiii12/athlete/internal/config"
	"github.com/megumiii12/athlete/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "athlete-bridge")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting athlete-bridge service")

	svc := bridge.NewService(cfg, log)
	if err := svc.Start(); err != nil {
		log.Fatal("Failed to start bridge service", zap.Error(err))
	}

	// 等待退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	svc.Stop()
	log.Info("Service stopped")
}
