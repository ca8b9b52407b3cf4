package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// MarketplaceController 余量农产品交易
type MarketplaceController struct {
	BaseController
	marketplaceService *services.MarketplaceService
}

// NewMarketplaceController 创建交易控制器
func NewMarketplaceController() *MarketplaceController {
	return &MarketplaceController{
		marketplaceService: services.NewMarketplaceService(nil),
	}
}

// CreateListing 创建余量挂牌
func (c *MarketplaceController) CreateListing() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	var req services.CreateListingRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := c.marketplaceService.CreateListing(claims.UserID, &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    listing,
	})
}

// ListMine 列出当前用户的挂牌
func (c *MarketplaceController) ListMine() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	listings, err := c.marketplaceService.GetUserListings(claims.UserID)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"listings": listings,
		"total":    len(listings),
	})
}

// UpdateListing 部分更新挂牌
func (c *MarketplaceController) UpdateListing() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	listingID := c.Ctx.Input.Param(":id")

	var req services.UpdateListingRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := c.marketplaceService.UpdateListing(claims.UserID, listingID, &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(listing)
}

// DeleteListing 删除挂牌
func (c *MarketplaceController) DeleteListing() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	listingID := c.Ctx.Input.Param(":id")
	if err := c.marketplaceService.DeleteListing(claims.UserID, listingID); err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"deleted": listingID,
	})
}

// MatchBuyers 按作物和等级匹配认证买家
func (c *MarketplaceController) MatchBuyers() {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	cropName := c.GetString("crop")
	if cropName == "" {
		c.JSONError(http.StatusBadRequest, "crop query parameter is required")
		return
	}
	qualityGrade := c.GetString("grade", "B")

	buyers := c.marketplaceService.MatchBuyers(cropName, qualityGrade)
	c.JSONSuccess(map[string]interface{}{
		"crop":    cropName,
		"grade":   qualityGrade,
		"matches": buyers,
		"total":   len(buyers),
	})
}

// Buyers 列出全部认证买家
func (c *MarketplaceController) Buyers() {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	buyers := c.marketplaceService.GetVerifiedBuyers()
	c.JSONSuccess(map[string]interface{}{
		"buyers": buyers,
		"total":  len(buyers),
	})
}
