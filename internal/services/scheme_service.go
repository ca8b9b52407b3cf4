package services

import (
	"encoding/json"
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

// Scheme 政府农业补贴方案
type Scheme struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Department          string   `json:"department"`
	BenefitType         string   `json:"benefit_type"`
	BenefitAmount       int      `json:"benefit_amount"`
	BenefitDescription  string   `json:"benefit_description"`
	Description         string   `json:"description"`
	EligibilityCriteria []string `json:"eligibility_criteria"`
	RequiredDocuments   []string `json:"required_documents"`
	TargetStates        []string `json:"target_states"`
	MinLandSize         float64  `json:"min_land_size"`
	WebsiteURL          string   `json:"website_url"`
}

// 静态补贴方案目录
var schemeCatalog = []Scheme{
	{
		ID: "pm_kisan", Name: "PM-KISAN (Pradhan Mantri Kisan Samman Nidhi)",
		Category: "central", Department: "Ministry of Agriculture & Farmers Welfare",
		BenefitType: "cash", BenefitAmount: 6000,
		BenefitDescription: "₹6,000 per year in 3 equal installments of ₹2,000 each",
		Description:        "Direct income support scheme for small and marginal farmers",
		EligibilityCriteria: []string{
			"All landholding farmers (small and marginal)",
			"Land records should be in farmer's name",
			"Applicable across all states and UTs",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Bank Account Details", "Land Ownership Documents", "Mobile Number"},
		TargetStates:      []string{"all"},
		WebsiteURL:        "https://pmkisan.gov.in",
	},
	{
		ID: "pmfby", Name: "Pradhan Mantri Fasal Bima Yojana (PMFBY)",
		Category: "central", Department: "Ministry of Agriculture & Farmers Welfare",
		BenefitType: "insurance", BenefitAmount: 200000,
		BenefitDescription: "Crop insurance coverage up to ₹2 lakh per hectare",
		Description:        "Comprehensive crop insurance scheme for all farmers",
		EligibilityCriteria: []string{
			"All farmers growing notified crops",
			"Both loanee and non-loanee farmers eligible",
			"Premium: 2% for Kharif, 1.5% for Rabi crops",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Bank Account Details", "Land Records", "Sowing Certificate"},
		TargetStates:      []string{"all"},
		WebsiteURL:        "https://pmfby.gov.in",
	},
	{
		ID: "soil_health_card", Name: "Soil Health Card Scheme",
		Category: "central", Department: "Ministry of Agriculture & Farmers Welfare",
		BenefitType: "subsidy", BenefitAmount: 0,
		BenefitDescription: "Free soil testing and health card (worth ₹500-1000)",
		Description:        "Free soil testing for farmers every 3 years",
		EligibilityCriteria: []string{
			"All farmers eligible",
			"One soil health card per 2.5 acres",
			"Valid for 3 years",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Land Records", "Mobile Number", "Soil Sample"},
		TargetStates:      []string{"all"},
		WebsiteURL:        "https://soilhealth.dac.gov.in",
	},
	{
		ID: "kisan_credit_card", Name: "Kisan Credit Card (KCC)",
		Category: "central", Department: "Ministry of Agriculture & Farmers Welfare",
		BenefitType: "credit", BenefitAmount: 300000,
		BenefitDescription: "Credit limit up to ₹3 lakh at subsidized interest rates",
		Description:        "Flexible credit facility for farmers' cultivation and other needs",
		EligibilityCriteria: []string{
			"All farmers (individual/joint borrowers)",
			"Tenant farmers, oral lessees, and sharecroppers",
			"Interest subvention available",
		},
		RequiredDocuments: []string{"Application Form", "Identity Proof (Aadhaar)", "Address Proof", "Land Documents"},
		TargetStates:      []string{"all"},
		WebsiteURL:        "https://www.myscheme.gov.in/schemes/kcc",
	},
	{
		ID: "organic_farming_scheme", Name: "National Programme for Organic Production (NPOP)",
		Category: "central", Department: "Ministry of Agriculture & Farmers Welfare",
		BenefitType: "subsidy", BenefitAmount: 50000,
		BenefitDescription: "₹50,000 per hectare for organic farming conversion",
		Description:        "Support for farmers to convert to organic farming practices",
		EligibilityCriteria: []string{
			"Farmers willing to convert to organic farming",
			"Minimum 1 hectare land",
			"3-year conversion period commitment",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Land Records", "Bank Account Details", "Organic Farming Plan"},
		TargetStates:      []string{"all"},
		MinLandSize:       1,
		WebsiteURL:        "https://www.apeda.gov.in/apedawebsite/organic/Organic_Products.htm",
	},
	{
		ID: "micro_irrigation_scheme", Name: "Per Drop More Crop (Micro Irrigation)",
		Category: "central", Department: "Ministry of Agriculture & Farmers Welfare",
		BenefitType: "subsidy", BenefitAmount: 40000,
		BenefitDescription: "Up to 55% subsidy on drip and sprinkler irrigation systems",
		Description:        "Subsidy for water-efficient micro irrigation installation",
		EligibilityCriteria: []string{
			"All categories of farmers",
			"Minimum 0.5 hectare land",
			"Higher subsidy for small and marginal farmers",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Land Records", "Bank Account Details", "Water Source Proof"},
		TargetStates:      []string{"all"},
		MinLandSize:       0.5,
		WebsiteURL:        "https://pmksy.gov.in",
	},
	{
		ID: "wheat_procurement_scheme", Name: "Wheat Procurement at MSP",
		Category: "central", Department: "Food Corporation of India",
		BenefitType: "procurement", BenefitAmount: 0,
		BenefitDescription: "Guaranteed purchase of wheat at Minimum Support Price",
		Description:        "MSP-based wheat procurement through registered mandis",
		EligibilityCriteria: []string{
			"Wheat growing farmers",
			"Registration with state procurement portal",
			"Produce meeting FAQ norms",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Land Records", "Bank Account Details", "Mandi Registration"},
		TargetStates:      []string{"punjab", "haryana", "uttar-pradesh", "madhya-pradesh", "rajasthan"},
		WebsiteURL:        "https://fci.gov.in",
	},
	{
		ID: "punjab_crop_diversification", Name: "Punjab Crop Diversification Programme",
		Category: "state", Department: "Punjab Agriculture Department",
		BenefitType: "subsidy", BenefitAmount: 17500,
		BenefitDescription: "₹17,500 per hectare for shifting from paddy to alternative crops",
		Description:        "Incentive for Punjab farmers to diversify away from water-intensive paddy",
		EligibilityCriteria: []string{
			"Punjab farmers currently growing paddy",
			"Minimum 1 hectare land",
			"Shift to maize, cotton, pulses or vegetables",
		},
		RequiredDocuments: []string{"Aadhaar Card", "Land Records", "Bank Account Details", "Crop Declaration"},
		TargetStates:      []string{"punjab"},
		MinLandSize:       1,
		WebsiteURL:        "https://agri.punjab.gov.in",
	},
}

// SchemeService 补贴方案服务
type SchemeService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// FarmerDetails 资格匹配输入
type FarmerDetails struct {
	State    string   `json:"state"`
	District string   `json:"district"`
	LandSize float64  `json:"land_size"`
	Crops    []string `json:"crops"`
}

// ApplyRequest 补贴申请请求
type ApplyRequest struct {
	SchemeID string                 `json:"scheme_id" validate:"required"`
	Details  map[string]interface{} `json:"details"`
}

// NewSchemeService 创建补贴服务
func NewSchemeService(db *gorm.DB) *SchemeService {
	if db == nil {
		db = database.DB
	}
	return &SchemeService{
		db:     db,
		logger: logger.GetLogger(),
	}
}

// GetAllSchemes 返回完整方案目录
func (s *SchemeService) GetAllSchemes() []Scheme {
	return schemeCatalog
}

// FindMatchingSchemes 按农户档案匹配可申请方案
func (s *SchemeService) FindMatchingSchemes(details *FarmerDetails) []Scheme {
	state := strings.ToLower(strings.ReplaceAll(details.State, " ", "-"))

	var matched []Scheme
	for _, scheme := range schemeCatalog {
		stateOK := false
		for _, target := range scheme.TargetStates {
			if target == "all" || target == state {
				stateOK = true
				break
			}
		}
		if !stateOK {
			continue
		}
		if details.LandSize < scheme.MinLandSize {
			continue
		}
		matched = append(matched, scheme)
	}
	return matched
}

// Apply 创建申请记录
func (s *SchemeService) Apply(userID uint, req *ApplyRequest) (*models.SchemeApplication, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	var scheme *Scheme
	for i := range schemeCatalog {
		if schemeCatalog[i].ID == req.SchemeID {
			scheme = &schemeCatalog[i]
			break
		}
	}
	if scheme == nil {
		return nil, apperrors.NewNotFoundError("scheme")
	}

	// 同一方案不允许重复申请
	var existing models.SchemeApplication
	err := s.db.Where("user_id = ? AND scheme_id = ? AND status IN ?",
		userID, req.SchemeID, []string{"submitted", "under_review", "approved"}).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.NewBusinessError(apperrors.ErrCodeConflict,
			fmt.Sprintf("application for scheme '%s' already exists", req.SchemeID))
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}

	detailsJSON := "{}"
	if req.Details != nil {
		if data, err := json.Marshal(req.Details); err == nil {
			detailsJSON = string(data)
		}
	}

	application := &models.SchemeApplication{
		ID:         uuid.NewString(),
		UserID:     userID,
		SchemeID:   scheme.ID,
		SchemeName: scheme.Name,
		Status:     "submitted",
		Details:    detailsJSON,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.db.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info("Scheme application submitted",
		zap.String("application_id", application.ID),
		zap.String("scheme_id", scheme.ID),
		zap.Uint("user_id", userID))
	return application, nil
}

// GetUserApplications 列出用户的申请记录
func (s *SchemeService) GetUserApplications(userID uint) ([]models.SchemeApplication, error) {
	var applications []models.SchemeApplication
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}
