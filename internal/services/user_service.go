package services

import (
	"fmt"
	"time"

	"github.com/farmchat/backend-go/internal/auth"
	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/database"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService 用户注册与登录服务
type UserService struct {
	db     *gorm.DB
	jwt    *auth.JWTService
	logger *zap.Logger
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone"`
	Language string `json:"language"`
	District string `json:"district"`
	State    string `json:"state"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB) *UserService {
	if db == nil {
		db = database.DB
	}

	cfg := config.AppConfig
	jwtService := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		time.Duration(cfg.JWT.ExpiresIn)*time.Hour,
	)

	return &UserService{
		db:     db,
		jwt:    jwtService,
		logger: logger.GetLogger(),
	}
}

// Register 注册新用户并签发token
func (s *UserService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, apperrors.NewBusinessError(apperrors.ErrCodeConflict, "email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Language:     language,
		District:     req.District,
		State:        req.State,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))

	return &AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Language: user.Language,
	}, nil
}

// Login 验证凭证并签发token
func (s *UserService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.NewBusinessError(apperrors.ErrCodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.NewBusinessError(apperrors.ErrCodeForbidden, "account is disabled")
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, apperrors.NewBusinessError(apperrors.ErrCodeUnauthorized, "invalid email or password")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in", zap.Uint("user_id", user.ID))

	return &AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Language: user.Language,
	}, nil
}
