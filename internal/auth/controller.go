// Package auth 登录/注册/重置密码的客户端校验与凭证持久化
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/models"

	"go.uber.org/zap"
)

// 注册年龄允许区间
const (
	MinAge = 13
	MaxAge = 120
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Controller 认证流程控制器
type Controller struct {
	api    *api.Client
	creds  credentials.Store
	logger *zap.Logger
}

// NewController 创建认证控制器
func NewController(apiClient *api.Client, creds credentials.Store, logger *zap.Logger) *Controller {
	return &Controller{
		api:    apiClient,
		creds:  creds,
		logger: logger,
	}
}

// Login 登录并持久化凭证
// 两个字段都非空才发请求；成功后写入 token/username/user_id
func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	resp, err := c.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" || resp.User == nil {
		if resp.Error != "" {
			return nil, errors.New(resp.Error)
		}
		return nil, errors.New("login failed")
	}

	if err := c.creds.Set(credentials.KeyAuthToken, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to persist auth token: %w", err)
	}
	if err := c.creds.Set(credentials.KeyUsername, resp.User.Username); err != nil {
		return nil, fmt.Errorf("failed to persist username: %w", err)
	}
	if err := c.creds.Set(credentials.KeyUserID, strconv.FormatInt(resp.User.ID, 10)); err != nil {
		return nil, fmt.Errorf("failed to persist user_id: %w", err)
	}

	c.logger.Info("Login succeeded",
		zap.String("username", resp.User.Username),
		zap.Int64("user_id", resp.User.ID),
	)
	return resp.User, nil
}

// Register 注册新用户
// 所有字段非空且年龄在 [13, 120] 内才发请求
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Gender = strings.TrimSpace(req.Gender)
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Gender == "" {
		return ErrMissingFields
	}
	if req.Age < MinAge || req.Age > MaxAge {
		return fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	}

	if err := c.api.Register(ctx, req); err != nil {
		return err
	}

	c.logger.Info("Registration succeeded", zap.String("username", req.Username))
	return nil
}

// ResetPassword 重置密码
// 两次输入不一致时直接返回错误，不发请求
func (c *Controller) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || newPassword == "" {
		return ErrMissingFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	if err := c.api.ResetPassword(ctx, email, newPassword); err != nil {
		return err
	}

	c.logger.Info("Password reset succeeded", zap.String("email", email))
	return nil
}

// Logout 登出：先通知后端再清空本地凭证
// 后端调用失败只记录日志，本地凭证始终清空
func (c *Controller) Logout(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.api.Logout(callCtx); err != nil {
		c.logger.Warn("Failed to notify backend of logout", zap.Error(err))
	}

	if err := c.creds.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	c.logger.Info("Logged out, local credentials cleared")
	return nil
}
