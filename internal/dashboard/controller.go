package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/config"
	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/models"
	"github.com/megumiii12/athlete/internal/view"

	"go.uber.org/zap"
)

// Sink 视图输出接口（cmd 层实现，渲染到终端）
// 轮询协程与 stdin 命令协程都可能调用，实现方负责串行化输出
type Sink interface {
	ShowUser(username, userID string)
	ShowReadout(readout view.LiveReadout)
	ShowAlert(banner view.AlertBanner)
	ShowLiveCharts(heartRate, temperature view.ChartSeries)
	ShowSessionList(items []view.SessionItem, placeholder string)
	ShowSessionDetail(summary view.SessionSummary, heartRate, temperature view.ChartSeries)
	ShowAbnormal(table view.AbnormalTable)
}

// Controller 仪表盘控制器：轮询后端并驱动视图更新
type Controller struct {
	config *config.Config
	api    *api.Client
	creds  credentials.Store
	sink   Sink
	logger *zap.Logger

	mu         sync.Mutex
	sessions   []models.Session
	selectedID int
}

// NewController 创建仪表盘控制器
func NewController(cfg *config.Config, apiClient *api.Client, creds credentials.Store, sink Sink, logger *zap.Logger) *Controller {
	return &Controller{
		config: cfg,
		api:    apiClient,
		creds:  creds,
		sink:   sink,
		logger: logger,
	}
}

// Run 启动轮询循环：启动时立即刷新一次，之后按固定间隔刷新
// 单次刷新失败只记录日志不中断；401 会终止循环（等价于浏览器端强制跳回登录页）
func (c *Controller) Run(ctx context.Context) error {
	// 本地没有 token 直接退出，调用方引导用户先登录
	if _, err := c.creds.Get(credentials.KeyAuthToken); err != nil {
		return api.ErrNoSession
	}

	c.verifySession(ctx)

	interval := time.Duration(c.config.Dashboard.PollInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("Starting dashboard polling",
		zap.Duration("interval", interval),
		zap.Int("live_window_hours", c.config.Dashboard.LiveWindowHours),
		zap.Int("session_window_hours", c.config.Dashboard.SessionWindowHours),
	)

	// 首次立即刷新
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// verifySession 校验会话并缓存 user_id；失败仅记录日志（轮询时自然会再撞上 401）
func (c *Controller) verifySession(ctx context.Context) {
	username, _ := c.creds.Get(credentials.KeyUsername)

	user, err := c.api.VerifySession(ctx)
	if err != nil {
		c.logger.Warn("Failed to verify session", zap.Error(err))
		c.sink.ShowUser(username, "")
		return
	}

	userID := strconv.FormatInt(user.ID, 10)
	if err := c.creds.Set(credentials.KeyUserID, userID); err != nil {
		c.logger.Error("Failed to persist user_id", zap.Error(err))
	}
	c.sink.ShowUser(username, fmt.Sprintf("(ID: %s)", userID))
}

// Refresh 执行一轮完整刷新
// 每一步失败都记录日志并继续下一步；仅认证失败向上传播
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.refreshLatest(ctx); err != nil {
		if isAuthError(err) {
			return err
		}
		c.logger.Error("Failed to refresh latest reading", zap.Error(err))
	}

	if err := c.refreshLiveCharts(ctx); err != nil {
		if isAuthError(err) {
			return err
		}
		c.logger.Error("Failed to refresh live charts", zap.Error(err))
	}

	if err := c.refreshSessions(ctx); err != nil {
		if isAuthError(err) {
			return err
		}
		c.logger.Error("Failed to refresh sessions", zap.Error(err))
	}

	return nil
}

func isAuthError(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoSession)
}

func (c *Controller) refreshLatest(ctx context.Context) error {
	sample, err := c.api.LatestData(ctx)
	if err != nil {
		return err
	}

	c.sink.ShowReadout(view.NewLiveReadout(sample))
	c.sink.ShowAlert(view.NewAlertBanner(sample))
	return nil
}

func (c *Controller) refreshLiveCharts(ctx context.Context) error {
	records, err := c.api.History(ctx, c.config.Dashboard.LiveWindowHours)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	c.sink.ShowLiveCharts(view.LiveHeartRateSeries(records), view.LiveTemperatureSeries(records))
	return nil
}

func (c *Controller) refreshSessions(ctx context.Context) error {
	records, err := c.api.History(ctx, c.config.Dashboard.SessionWindowHours)
	if err != nil {
		return err
	}

	sessions := BuildSessions(records)
	if len(sessions) == 0 {
		c.mu.Lock()
		c.sessions = nil
		c.selectedID = 0
		c.mu.Unlock()
		c.sink.ShowSessionList(nil, view.NoDataPlaceholder)
		return nil
	}

	c.mu.Lock()
	c.sessions = sessions
	// 选中项不存在时回落到第一个会话
	if _, ok := findSession(sessions, c.selectedID); !ok {
		c.selectedID = sessions[0].ID
	}
	selected, _ := findSession(sessions, c.selectedID)
	selectedID := c.selectedID
	c.mu.Unlock()

	c.sink.ShowSessionList(view.NewSessionItems(sessions, selectedID), "")
	c.renderSessionDetail(selected)
	return nil
}

// SelectSession 切换选中的会话并重绘汇总与会话图表
func (c *Controller) SelectSession(id int) error {
	c.mu.Lock()
	session, ok := findSession(c.sessions, id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown session id %d", id)
	}
	c.selectedID = id
	sessions := c.sessions
	c.mu.Unlock()

	c.sink.ShowSessionList(view.NewSessionItems(sessions, id), "")
	c.renderSessionDetail(session)
	return nil
}

func (c *Controller) renderSessionDetail(session models.Session) {
	if len(session.Data) == 0 {
		return
	}
	c.sink.ShowSessionDetail(
		view.NewSessionSummary(ComputeStats(session)),
		view.SessionHeartRateSeries(session.Data),
		view.SessionTemperatureSeries(session.Data),
	)
}

// RefreshAbnormal 按需刷新异常读数历史表
// 刷新期间展示 Loading 态，结束后无论成败都恢复（等价于按钮禁用/恢复）
func (c *Controller) RefreshAbnormal(ctx context.Context) error {
	c.sink.ShowAbnormal(view.LoadingAbnormalTable())

	records, err := c.fetchAbnormal(ctx)
	if err != nil {
		c.logger.Error("Failed to load abnormal history", zap.Error(err))
		c.sink.ShowAbnormal(view.NewAbnormalTable(nil))
		return err
	}

	c.sink.ShowAbnormal(view.NewAbnormalTable(records))
	return nil
}

// AbnormalReport 生成异常读数报表（.xlsx 内容）
func (c *Controller) AbnormalReport(ctx context.Context) ([]byte, error) {
	records, err := c.fetchAbnormal(ctx)
	if err != nil {
		return nil, err
	}
	return view.ExportAbnormalXLSX(view.NewAbnormalTable(records))
}

func (c *Controller) fetchAbnormal(ctx context.Context) ([]models.AbnormalRecord, error) {
	records, err := c.api.History(ctx, c.config.Dashboard.SessionWindowHours)
	if err != nil {
		return nil, err
	}
	return FilterAbnormal(records, c.thresholds()), nil
}

func (c *Controller) thresholds() Thresholds {
	return Thresholds{
		AbnormalTemp:      c.config.Dashboard.Thresholds.AbnormalTemp,
		CriticalTemp:      c.config.Dashboard.Thresholds.CriticalTemp,
		AbnormalHeartRate: c.config.Dashboard.Thresholds.AbnormalHeartRate,
	}
}

func findSession(sessions []models.Session, id int) (models.Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Session{}, false
}
