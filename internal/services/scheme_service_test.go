package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemeIDs(schemes []Scheme) map[string]bool {
	ids := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		ids[s.ID] = true
	}
	return ids
}

func TestFindMatchingSchemes_PunjabFarmer(t *testing.T) {
	svc := &SchemeService{}

	schemes := svc.FindMatchingSchemes(&FarmerDetails{
		State:    "Punjab",
		LandSize: 2,
	})
	require.NotEmpty(t, schemes)

	ids := schemeIDs(schemes)
	// 全国方案 + 旁遮普专属方案
	assert.True(t, ids["pm_kisan"])
	assert.True(t, ids["wheat_procurement_scheme"])
	assert.True(t, ids["punjab_crop_diversification"])
	assert.Len(t, schemes, 8)
}

func TestFindMatchingSchemes_StateFilter(t *testing.T) {
	svc := &SchemeService{}

	schemes := svc.FindMatchingSchemes(&FarmerDetails{
		State:    "Kerala",
		LandSize: 2,
	})

	ids := schemeIDs(schemes)
	assert.True(t, ids["pm_kisan"])
	assert.False(t, ids["wheat_procurement_scheme"])
	assert.False(t, ids["punjab_crop_diversification"])
}

func TestFindMatchingSchemes_StateNameNormalization(t *testing.T) {
	svc := &SchemeService{}

	// 空格转连字符后匹配uttar-pradesh
	schemes := svc.FindMatchingSchemes(&FarmerDetails{
		State:    "Uttar Pradesh",
		LandSize: 1,
	})
	assert.True(t, schemeIDs(schemes)["wheat_procurement_scheme"])
}

func TestFindMatchingSchemes_LandSizeThreshold(t *testing.T) {
	svc := &SchemeService{}

	small := svc.FindMatchingSchemes(&FarmerDetails{State: "Punjab", LandSize: 0.3})
	ids := schemeIDs(small)
	// 0.3公顷不满足有机（1）和微灌（0.5）的门槛
	assert.False(t, ids["organic_farming_scheme"])
	assert.False(t, ids["micro_irrigation_scheme"])
	assert.True(t, ids["pm_kisan"])

	medium := svc.FindMatchingSchemes(&FarmerDetails{State: "Punjab", LandSize: 0.5})
	assert.True(t, schemeIDs(medium)["micro_irrigation_scheme"])
	assert.False(t, schemeIDs(medium)["organic_farming_scheme"])
}

func TestGetAllSchemes(t *testing.T) {
	svc := &SchemeService{}
	assert.Len(t, svc.GetAllSchemes(), 8)
}
