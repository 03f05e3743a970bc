package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/auth"
	"github.com/megumiii12/athlete/internal/config"
	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/dashboard"
	"github.com/megumiii12/athlete/internal/logger"

	"go.uber.org/zap"
)

const commandHelp = `Commands:
  a          refresh abnormal readings history
  s <id>     select a session
  x <path>   export abnormal readings report (.xlsx)
  logout     sign out and clear credentials
  q          quit
`

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志（输出到 stderr，stdout 留给仪表盘）
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "athlete-dashboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store := credentials.NewFileStore(cfg.Credentials.Path)
	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.Timeout)*time.Second, store, log)
	renderer := newTerminalRenderer(os.Stdout)

	ctrl := dashboard.NewController(cfg, client, store, renderer, log)
	authCtrl := auth.NewController(client, store, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 轮询循环
	errChan := make(chan error, 1)
	go func() {
		errChan <- ctrl.Run(ctx)
	}()

	// 命令行交互
	quitChan := make(chan struct{}, 1)
	go commandLoop(ctx, ctrl, authCtrl, cancel, quitChan, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case <-quitChan:
	case err := <-errChan:
		switch {
		case errors.Is(err, api.ErrNoSession):
			fmt.Fprintln(os.Stderr, "Not signed in. Run athlete-auth login first.")
			os.Exit(1)
		case errors.Is(err, api.ErrUnauthorized):
			fmt.Fprintln(os.Stderr, "Session expired. Run athlete-auth login to sign in again.")
			os.Exit(1)
		case err != nil:
			log.Error("Dashboard stopped", zap.Error(err))
			os.Exit(1)
		}
	}

	cancel()
	log.Info("Dashboard stopped")
}

// commandLoop 读取 stdin 命令并分发给控制器
func commandLoop(ctx context.Context, ctrl *dashboard.Controller, authCtrl *auth.Controller, cancel context.CancelFunc, quit chan<- struct{}, log *zap.Logger) {
	fmt.Print(commandHelp)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "a":
			if err := ctrl.RefreshAbnormal(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to refresh abnormal history: %v\n", err)
			}

		case "s":
			if len(fields) < 2 {
				fmt.Fprintln(os.Stderr, "Usage: s <id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid session id %q\n", fields[1])
				continue
			}
			if err := ctrl.SelectSession(id); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}

		case "x":
			if len(fields) < 2 {
				fmt.Fprintln(os.Stderr, "Usage: x <path>")
				continue
			}
			exportReport(ctx, ctrl, fields[1])

		case "logout":
			fmt.Print("Sign out? [y/N] ")
			if !scanner.Scan() || strings.TrimSpace(strings.ToLower(scanner.Text())) != "y" {
				fmt.Println("Cancelled.")
				continue
			}
			if err := authCtrl.Logout(ctx); err != nil {
				log.Error("Logout failed", zap.Error(err))
			}
			fmt.Println("Logged out.")
			cancel()
			quit <- struct{}{}
			return

		case "q":
			quit <- struct{}{}
			return

		case "h", "help":
			fmt.Print(commandHelp)

		default:
			fmt.Fprintf(os.Stderr, "Unknown command %q (h for help)\n", fields[0])
		}
	}
}

func exportReport(ctx context.Context, ctrl *dashboard.Controller, path string) {
	report, err := ctrl.AbnormalReport(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build report: %v\n", err)
		return
	}
	if err := os.WriteFile(path, report, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
		return
	}
	fmt.Printf("Report written to %s\n", path)
}
