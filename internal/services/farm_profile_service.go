package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/database"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FarmProfileService 农场档案服务
type FarmProfileService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// UpdateProfileRequest 更新档案请求
type UpdateProfileRequest struct {
	FarmSize       float64  `json:"farm_size" validate:"gte=0"`
	SoilType       string   `json:"soil_type"`
	IrrigationType string   `json:"irrigation_type"`
	Crops          []string `json:"crops"`
	District       string   `json:"district"`
	State          string   `json:"state"`
}

// ProfileResponse 档案响应
type ProfileResponse struct {
	UserID         uint     `json:"user_id"`
	FarmSize       float64  `json:"farm_size"`
	SoilType       string   `json:"soil_type"`
	IrrigationType string   `json:"irrigation_type"`
	Crops          []string `json:"crops"`
	District       string   `json:"district"`
	State          string   `json:"state"`
}

// NewFarmProfileService 创建档案服务
func NewFarmProfileService(db *gorm.DB) *FarmProfileService {
	if db == nil {
		db = database.DB
	}
	return &FarmProfileService{
		db:     db,
		logger: logger.GetLogger(),
	}
}

// GetOrCreate 获取用户档案，不存在时创建空档案
func (s *FarmProfileService) GetOrCreate(userID uint) (*ProfileResponse, error) {
	var profile models.FarmProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = models.FarmProfile{
			UserID:    userID,
			Crops:     "[]",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("failed to create farm profile: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load farm profile: %w", err)
	}

	return toProfileResponse(&profile), nil
}

// Update 更新用户档案
func (s *FarmProfileService) Update(userID uint, req *UpdateProfileRequest) (*ProfileResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.GetOrCreate(userID); err != nil {
		return nil, err
	}

	cropsJSON, err := json.Marshal(req.Crops)
	if err != nil {
		return nil, fmt.Errorf("failed to encode crops: %w", err)
	}

	updates := map[string]interface{}{
		"farm_size":       req.FarmSize,
		"soil_type":       req.SoilType,
		"irrigation_type": req.IrrigationType,
		"crops":           string(cropsJSON),
		"district":        req.District,
		"state":           req.State,
		"updated_at":      time.Now(),
	}
	if err := s.db.Model(&models.FarmProfile{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update farm profile: %w", err)
	}

	s.logger.Info("Farm profile updated", zap.Uint("user_id", userID))

	var profile models.FarmProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to reload farm profile: %w", err)
	}
	return toProfileResponse(&profile), nil
}

// PromptContext 生成注入提示词的档案摘要，空档案返回空串
func (s *FarmProfileService) PromptContext(userID uint) string {
	var profile models.FarmProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return ""
	}

	var parts []string
	if profile.District != "" {
		loc := profile.District
		if profile.State != "" {
			loc += ", " + profile.State
		}
		parts = append(parts, "location: "+loc)
	}
	if profile.FarmSize > 0 {
		parts = append(parts, fmt.Sprintf("farm size: %.1f acres", profile.FarmSize))
	}
	if profile.SoilType != "" {
		parts = append(parts, "soil: "+profile.SoilType)
	}
	if profile.IrrigationType != "" {
		parts = append(parts, "irrigation: "+profile.IrrigationType)
	}
	var crops []string
	if json.Unmarshal([]byte(profile.Crops), &crops) == nil && len(crops) > 0 {
		parts = append(parts, "crops: "+strings.Join(crops, ", "))
	}

	return strings.Join(parts, "; ")
}

func toProfileResponse(profile *models.FarmProfile) *ProfileResponse {
	var crops []string
	if profile.Crops != "" {
		_ = json.Unmarshal([]byte(profile.Crops), &crops)
	}
	if crops == nil {
		crops = []string{}
	}

	return &ProfileResponse{
		UserID:         profile.UserID,
		FarmSize:       profile.FarmSize,
		SoilType:       profile.SoilType,
		IrrigationType: profile.IrrigationType,
		Crops:          crops,
		District:       profile.District,
		State:          profile.State,
	}
}
