package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// ErrNoSession 本地没有 token，调用方应引导用户先登录
	ErrNoSession = errors.New("no auth session")

	// ErrUnauthorized 后端返回 401，本地凭证已被清空
	ErrUnauthorized = errors.New("unauthorized")
)

// Client 后端 API 客户端
// 认证请求自动附加 Bearer token；收到 401 时清空本地凭证（强制登出语义）
type Client struct {
	httpClient *resty.Client
	creds      credentials.Store
	logger     *zap.Logger
}

// NewClient 创建 API 客户端
func NewClient(baseURL string, timeout time.Duration, creds credentials.Store, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		creds:      creds,
		logger:     logger,
	}
}

// authRequest 构建带 Bearer token 的请求
func (c *Client) authRequest(ctx context.Context) (*resty.Request, error) {
	token, err := c.creds.Get(credentials.KeyAuthToken)
	if err != nil {
		return nil, ErrNoSession
	}
	return c.httpClient.R().SetContext(ctx).SetAuthToken(token), nil
}

// checkAuth 处理 401：清空本地凭证并返回 ErrUnauthorized
func (c *Client) checkAuth(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		if err := c.creds.Clear(); err != nil {
			c.logger.Error("Failed to clear credentials after 401", zap.Error(err))
		}
		c.logger.Warn("Session rejected by backend, local credentials cleared")
		return ErrUnauthorized
	}
	return nil
}

// LatestData 获取最新遥测读数
func (c *Client) LatestData(ctx context.Context) (*models.TelemetrySample, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return nil, err
	}

	var sample models.TelemetrySample
	resp, err := req.SetResult(&sample).Get("/api/latest-data")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest data: %w", err)
	}
	if err := c.checkAuth(resp); err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("latest-data returned status %d", resp.StatusCode())
	}

	// 后端没有数据时返回空对象
	if sample.HeartRate == 0 {
		return nil, errors.New("no telemetry data available")
	}

	return &sample, nil
}

// History 获取指定窗口内的历史记录（按时间升序）
func (c *Client) History(ctx context.Context, hours int) ([]models.HistoryRecord, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.HistoryRecord
	resp, err := req.
		SetQueryParam("hours", strconv.Itoa(hours)).
		SetResult(&records).
		Get("/api/history")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	if err := c.checkAuth(resp); err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("history returned status %d", resp.StatusCode())
	}

	return records, nil
}

// VerifySession 校验当前会话，返回后端用户信息
func (c *Client) VerifySession(ctx context.Context) (*models.User, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return nil, err
	}

	var result models.APIResponse
	resp, err := req.SetResult(&result).Get("/api/verify-session")
	if err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	if err := c.checkAuth(resp); err != nil {
		return nil, err
	}
	if resp.IsError() || result.User == nil {
		return nil, fmt.Errorf("verify-session returned status %d", resp.StatusCode())
	}

	return result.User, nil
}

// Login 登录（无需本地 token）
// 返回的响应中 Success=false 表示凭证被拒，错误信息在 Error 字段
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var result models.LoginResponse
	_, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/api/login")
	if err != nil {
		return nil, fmt.Errorf("failed to call login: %w", err)
	}
	return &result, nil
}

// Register 注册新用户
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	var result models.APIResponse
	_, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/api/register")
	if err != nil {
		return fmt.Errorf("failed to call register: %w", err)
	}
	if !result.Success {
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return errors.New("registration failed")
	}
	return nil
}

// ResetPassword 重置密码
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	var result models.APIResponse
	_, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(models.ResetPasswordRequest{Email: email, NewPassword: newPassword}).
		SetResult(&result).
		SetError(&result).
		Post("/api/reset-password")
	if err != nil {
		return fmt.Errorf("failed to call reset-password: %w", err)
	}
	if !result.Success {
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return errors.New("password reset failed")
	}
	return nil
}

// Logout 通知后端登出当前会话
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.authRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := req.Post("/api/logout")
	if err != nil {
		return fmt.Errorf("failed to call logout: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return fmt.Errorf("logout returned status %d", resp.StatusCode())
	}
	return nil
}

// PushReading 上报设备原始读数（桥接服务使用，无需认证）
func (c *Client) PushReading(ctx context.Context, reading models.RawReadingRequest) error {
	var result models.APIResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reading).
		SetResult(&result).
		SetError(&result).
		Post("/api/sensor-data-raw")
	if err != nil {
		return fmt.Errorf("failed to push reading: %w", err)
	}
	if resp.IsError() || !result.Success {
		return fmt.Errorf("sensor-data-raw rejected reading (status %d): %s", resp.StatusCode(), result.Error)
	}
	return nil
}
