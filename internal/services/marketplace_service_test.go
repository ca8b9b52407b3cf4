package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchBuyers_CropAndGrade(t *testing.T) {
	svc := &MarketplaceService{}

	matches := svc.MatchBuyers("potato", "A")
	require.NotEmpty(t, matches)

	ids := make(map[string]bool)
	for _, buyer := range matches {
		ids[buyer.ID] = true
	}
	// Zomato、BigBasket、Reliance（all）、McDonald's 都接受A级土豆
	assert.True(t, ids["buyer_001"])
	assert.True(t, ids["buyer_003"])
	assert.True(t, ids["buyer_007"])
	assert.True(t, ids["buyer_008"])
}

func TestMatchBuyers_GradeFiltering(t *testing.T) {
	svc := &MarketplaceService{}

	// C级只有食品加工厂接受
	matches := svc.MatchBuyers("wheat", "C")
	require.Len(t, matches, 1)
	assert.Equal(t, "buyer_004", matches[0].ID)
}

func TestMatchBuyers_DefaultGradeB(t *testing.T) {
	svc := &MarketplaceService{}

	withDefault := svc.MatchBuyers("wheat", "")
	explicit := svc.MatchBuyers("wheat", "B")
	assert.Equal(t, explicit, withDefault)
}

func TestMatchBuyers_AllCropBuyers(t *testing.T) {
	svc := &MarketplaceService{}

	// 冷门作物只匹配preferred_crops为all的买家
	matches := svc.MatchBuyers("dragonfruit", "A")
	for _, buyer := range matches {
		assert.Contains(t, buyer.PreferredCrops, "all")
	}
	assert.Len(t, matches, 2)
}

func TestGetVerifiedBuyers(t *testing.T) {
	svc := &MarketplaceService{}
	buyers := svc.GetVerifiedBuyers()
	assert.Len(t, buyers, 8)
}
