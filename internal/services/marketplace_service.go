package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/database"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VerifiedBuyer 认证买家目录条目
type VerifiedBuyer struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Location            string   `json:"location"`
	Contact             string   `json:"contact"`
	Email               string   `json:"email"`
	Rating              float64  `json:"rating"`
	TypicalOrderSize    string   `json:"typical_order_size"`
	PaymentTerms        string   `json:"payment_terms"`
	PreferredCrops      []string `json:"preferred_crops"`
	QualityRequirements []string `json:"quality_requirements"`
	MaxDistanceKm       int      `json:"max_distance_km"`
}

// 静态认证买家目录
var verifiedBuyers = []VerifiedBuyer{
	{
		ID: "buyer_001", Name: "Zomato Kitchens", Type: "restaurant",
		Location: "Ludhiana, Punjab", Contact: "+91-98765-43210", Email: "procurement@zomato.com",
		Rating: 4.8, TypicalOrderSize: "500kg-2 tons weekly", PaymentTerms: "Net 15 days",
		PreferredCrops:      []string{"wheat", "rice", "potato", "onion", "tomato"},
		QualityRequirements: []string{"A", "B"}, MaxDistanceKm: 50,
	},
	{
		ID: "buyer_002", Name: "Hotel Taj Palace", Type: "hotel",
		Location: "Chandigarh, Punjab", Contact: "+91-98765-43211", Email: "purchase@tajpalace.com",
		Rating: 4.9, TypicalOrderSize: "200-500kg weekly", PaymentTerms: "Net 7 days",
		PreferredCrops:      []string{"rice", "wheat", "vegetables", "fruits"},
		QualityRequirements: []string{"A"}, MaxDistanceKm: 30,
	},
	{
		ID: "buyer_003", Name: "BigBasket Punjab", Type: "retail_chain",
		Location: "Amritsar, Punjab", Contact: "+91-98765-43212", Email: "sourcing@bigbasket.com",
		Rating: 4.7, TypicalOrderSize: "5-10 tons monthly", PaymentTerms: "Net 30 days",
		PreferredCrops:      []string{"all"},
		QualityRequirements: []string{"A", "B"}, MaxDistanceKm: 100,
	},
	{
		ID: "buyer_004", Name: "Punjab Food Processing Co.", Type: "food_processor",
		Location: "Jalandhar, Punjab", Contact: "+91-98765-43213", Email: "raw.materials@punjabfood.com",
		Rating: 4.6, TypicalOrderSize: "10-50 tons monthly", PaymentTerms: "Net 45 days",
		PreferredCrops:      []string{"wheat", "rice", "maize", "sugarcane"},
		QualityRequirements: []string{"A", "B", "C"}, MaxDistanceKm: 200,
	},
	{
		ID: "buyer_005", Name: "Fresh & More Supermarket", Type: "retail_chain",
		Location: "Patiala, Punjab", Contact: "+91-98765-43214", Email: "procurement@freshandmore.com",
		Rating: 4.5, TypicalOrderSize: "1-3 tons weekly", PaymentTerms: "Net 21 days",
		PreferredCrops:      []string{"vegetables", "fruits", "grains"},
		QualityRequirements: []string{"A", "B"}, MaxDistanceKm: 75,
	},
	{
		ID: "buyer_006", Name: "Domino's Pizza Supply Chain", Type: "restaurant",
		Location: "Ludhiana, Punjab", Contact: "+91-98765-43215", Email: "supply@dominos.co.in",
		Rating: 4.4, TypicalOrderSize: "300-800kg weekly", PaymentTerms: "Net 10 days",
		PreferredCrops:      []string{"wheat", "tomato", "onion", "capsicum"},
		QualityRequirements: []string{"A"}, MaxDistanceKm: 40,
	},
	{
		ID: "buyer_007", Name: "Reliance Fresh", Type: "retail_chain",
		Location: "Bathinda, Punjab", Contact: "+91-98765-43216", Email: "vendor@reliancefresh.com",
		Rating: 4.6, TypicalOrderSize: "2-5 tons weekly", PaymentTerms: "Net 30 days",
		PreferredCrops:      []string{"all"},
		QualityRequirements: []string{"A", "B"}, MaxDistanceKm: 120,
	},
	{
		ID: "buyer_008", Name: "McDonald's India Supply", Type: "restaurant",
		Location: "Chandigarh, Punjab", Contact: "+91-98765-43217", Email: "sourcing@mcdonalds.co.in",
		Rating: 4.7, TypicalOrderSize: "1-2 tons weekly", PaymentTerms: "Net 14 days",
		PreferredCrops:      []string{"potato", "onion", "lettuce", "tomato"},
		QualityRequirements: []string{"A"}, MaxDistanceKm: 60,
	},
}

// MarketplaceService 农产品余量交易服务
type MarketplaceService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// CreateListingRequest 创建挂牌请求
type CreateListingRequest struct {
	CropName     string     `json:"crop_name" validate:"required"`
	Quantity     float64    `json:"quantity" validate:"required,gt=0"`
	Unit         string     `json:"unit"`
	PricePerKg   float64    `json:"price_per_kg" validate:"gte=0"`
	QualityGrade string     `json:"quality_grade" validate:"omitempty,oneof=A B C"`
	ReadyDate    *time.Time `json:"ready_date"`
	District     string     `json:"district"`
	State        string     `json:"state"`
	Description  string     `json:"description"`
	ContactInfo  string     `json:"contact_info"`
}

// UpdateListingRequest 更新挂牌请求
type UpdateListingRequest struct {
	Quantity    *float64 `json:"quantity" validate:"omitempty,gt=0"`
	PricePerKg  *float64 `json:"price_per_kg" validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active sold withdrawn"`
}

// NewMarketplaceService 创建交易服务
func NewMarketplaceService(db *gorm.DB) *MarketplaceService {
	if db == nil {
		db = database.DB
	}
	return &MarketplaceService{
		db:     db,
		logger: logger.GetLogger(),
	}
}

// CreateListing 创建余量挂牌
func (s *MarketplaceService) CreateListing(userID uint, req *CreateListingRequest) (*models.SurplusListing, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}
	grade := req.QualityGrade
	if grade == "" {
		grade = "B"
	}

	listing := &models.SurplusListing{
		ID:           uuid.NewString(),
		UserID:       userID,
		CropName:     req.CropName,
		Quantity:     req.Quantity,
		Unit:         unit,
		PricePerKg:   req.PricePerKg,
		QualityGrade: grade,
		ReadyDate:    req.ReadyDate,
		District:     req.District,
		State:        req.State,
		Description:  req.Description,
		ContactInfo:  req.ContactInfo,
		Status:       "active",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID),
		zap.String("crop", listing.CropName),
		zap.Uint("user_id", userID))
	return listing, nil
}

// GetUserListings 列出用户的挂牌
func (s *MarketplaceService) GetUserListings(userID uint) ([]models.SurplusListing, error) {
	var listings []models.SurplusListing
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// UpdateListing 更新挂牌，仅限所有者
func (s *MarketplaceService) UpdateListing(userID uint, listingID string, req *UpdateListingRequest) (*models.SurplusListing, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	var listing models.SurplusListing
	err := s.db.Where("id = ? AND user_id = ?", listingID, userID).First(&listing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.NewNotFoundError("listing")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.PricePerKg != nil {
		updates["price_per_kg"] = *req.PricePerKg
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if err := s.db.Model(&listing).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return &listing, nil
}

// DeleteListing 删除挂牌，重复删除返回NotFound
func (s *MarketplaceService) DeleteListing(userID uint, listingID string) error {
	result := s.db.Where("id = ? AND user_id = ?", listingID, userID).
		Delete(&models.SurplusListing{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("listing")
	}

	s.logger.Info("Listing deleted",
		zap.String("listing_id", listingID),
		zap.Uint("user_id", userID))
	return nil
}

// MatchBuyers 按作物与质量等级匹配认证买家
func (s *MarketplaceService) MatchBuyers(cropName, qualityGrade string) []VerifiedBuyer {
	crop := strings.ToLower(cropName)
	if qualityGrade == "" {
		qualityGrade = "B"
	}

	var matched []VerifiedBuyer
	for _, buyer := range verifiedBuyers {
		cropOK := false
		for _, preferred := range buyer.PreferredCrops {
			if preferred == "all" || strings.Contains(crop, preferred) || preferred == crop {
				cropOK = true
				break
			}
		}
		if !cropOK {
			continue
		}
		for _, grade := range buyer.QualityRequirements {
			if grade == qualityGrade {
				matched = append(matched, buyer)
				break
			}
		}
	}
	return matched
}

// GetVerifiedBuyers 返回完整买家目录
func (s *MarketplaceService) GetVerifiedBuyers() []VerifiedBuyer {
	return verifiedBuyers
}
