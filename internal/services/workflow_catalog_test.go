package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowCatalog_AllDefinitions(t *testing.T) {
	defs := AllWorkflowDefs()
	require.Len(t, defs, 4)

	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.WorkflowID)
	}
	assert.Equal(t, []string{"crop_selection", "pest_management", "irrigation_planning", "harvest_timing"}, ids)
}

func TestWorkflowCatalog_EveryWorkflowHasFiveSteps(t *testing.T) {
	for _, def := range AllWorkflowDefs() {
		assert.Len(t, def.Steps, 5, def.WorkflowID)
	}
}

func TestWorkflowCatalog_EstimatedTotalTime(t *testing.T) {
	def, ok := GetWorkflowDef("crop_selection")
	require.True(t, ok)

	total := 0
	for _, step := range def.Steps {
		total += step.EstimatedTime
	}
	assert.Equal(t, total, def.EstimatedTotalTime)
	assert.Equal(t, 55, def.EstimatedTotalTime)
}

func TestWorkflowCatalog_PrerequisitesExist(t *testing.T) {
	for _, def := range AllWorkflowDefs() {
		stepIDs := make(map[string]bool, len(def.Steps))
		for _, step := range def.Steps {
			stepIDs[step.StepID] = true
		}
		for _, step := range def.Steps {
			for _, prereq := range step.Prerequisites {
				assert.True(t, stepIDs[prereq], "%s/%s requires unknown step %s", def.WorkflowID, step.StepID, prereq)
			}
		}
	}
}

func TestWorkflowCatalog_OptionalSteps(t *testing.T) {
	irrigation, ok := GetWorkflowDef("irrigation_planning")
	require.True(t, ok)
	assert.True(t, irrigation.Steps[4].Optional)
	assert.Equal(t, "water_conservation", irrigation.Steps[4].StepID)

	harvest, ok := GetWorkflowDef("harvest_timing")
	require.True(t, ok)
	assert.True(t, harvest.Steps[4].Optional)

	// crop_selection全部为必选步骤
	cropSelection, _ := GetWorkflowDef("crop_selection")
	for _, step := range cropSelection.Steps {
		assert.False(t, step.Optional)
	}
}

func TestGetWorkflowDef_Unknown(t *testing.T) {
	_, ok := GetWorkflowDef("moon_farming")
	assert.False(t, ok)
}
