package services

// WorkflowStepDef 工作流步骤定义
type WorkflowStepDef struct {
	StepID        string   `json:"step_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ToolsRequired []string `json:"tools_required"`
	EstimatedTime int      `json:"estimated_time"` // 分钟
	Prerequisites []string `json:"prerequisites"`
	Optional      bool     `json:"optional"`
}

// WorkflowDef 预置农业工作流定义
type WorkflowDef struct {
	WorkflowID         string            `json:"workflow_id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Category           string            `json:"category"`
	Difficulty         string            `json:"difficulty"`
	Steps              []WorkflowStepDef `json:"steps"`
	EstimatedTotalTime int               `json:"estimated_total_time"`
}

// workflowCatalog 静态工作流目录
var workflowCatalog = buildCatalog()

func buildCatalog() map[string]*WorkflowDef {
	defs := []*WorkflowDef{
		{
			WorkflowID:  "crop_selection",
			Title:       "Smart Crop Selection Guide",
			Description: "Complete guide to select the best crops based on soil, weather, and market conditions",
			Category:    "crop_selection",
			Difficulty:  "beginner",
			Steps: []WorkflowStepDef{
				{
					StepID:        "soil_analysis",
					Title:         "Analyze Soil Conditions",
					Description:   "Test and analyze your soil's NPK levels, pH, and organic content",
					ToolsRequired: []string{ToolSoilHealth},
					EstimatedTime: 10,
				},
				{
					StepID:        "weather_check",
					Title:         "Check Weather Forecast",
					Description:   "Review 7-day weather forecast and seasonal patterns",
					ToolsRequired: []string{ToolWeather},
					EstimatedTime: 5,
				},
				{
					StepID:        "market_research",
					Title:         "Research Market Prices",
					Description:   "Check current and predicted prices for potential crops",
					ToolsRequired: []string{ToolCropPrice, ToolMandiPrice},
					EstimatedTime: 15,
				},
				{
					StepID:        "crop_recommendation",
					Title:         "Get Crop Recommendations",
					Description:   "Analyze all data to recommend the best crops for your conditions",
					ToolsRequired: []string{ToolWebSearch},
					EstimatedTime: 10,
					Prerequisites: []string{"soil_analysis", "weather_check", "market_research"},
				},
				{
					StepID:        "financial_planning",
					Title:         "Plan Investment and Returns",
					Description:   "Calculate expected costs, yields, and profits",
					EstimatedTime: 15,
					Prerequisites: []string{"crop_recommendation"},
				},
			},
		},
		{
			WorkflowID:  "pest_management",
			Title:       "Integrated Pest Management",
			Description: "Comprehensive pest identification and treatment workflow",
			Category:    "pest_management",
			Difficulty:  "intermediate",
			Steps: []WorkflowStepDef{
				{
					StepID:        "pest_identification",
					Title:         "Identify Pest or Disease",
					Description:   "Upload images and describe symptoms to identify the problem",
					ToolsRequired: []string{ToolPestIdentifier},
					EstimatedTime: 10,
				},
				{
					StepID:        "weather_correlation",
					Title:         "Check Weather Impact",
					Description:   "Analyze how weather conditions affect pest development",
					ToolsRequired: []string{ToolWeather},
					EstimatedTime: 5,
					Prerequisites: []string{"pest_identification"},
				},
				{
					StepID:        "treatment_options",
					Title:         "Explore Treatment Options",
					Description:   "Research organic and chemical treatment methods",
					ToolsRequired: []string{ToolWebSearch},
					EstimatedTime: 15,
					Prerequisites: []string{"pest_identification"},
				},
				{
					StepID:        "cost_analysis",
					Title:         "Analyze Treatment Costs",
					Description:   "Compare costs of different treatment approaches",
					ToolsRequired: []string{ToolMandiPrice},
					EstimatedTime: 10,
					Prerequisites: []string{"treatment_options"},
				},
				{
					StepID:        "implementation_plan",
					Title:         "Create Implementation Plan",
					Description:   "Develop timeline and application schedule for treatment",
					EstimatedTime: 20,
					Prerequisites: []string{"weather_correlation", "cost_analysis"},
				},
			},
		},
		{
			WorkflowID:  "irrigation_planning",
			Title:       "Smart Irrigation Planning",
			Description: "Optimize water usage based on soil, weather, and crop requirements",
			Category:    "irrigation",
			Difficulty:  "intermediate",
			Steps: []WorkflowStepDef{
				{
					StepID:        "soil_moisture_check",
					Title:         "Check Soil Moisture Levels",
					Description:   "Assess current soil moisture and water retention capacity",
					ToolsRequired: []string{ToolSoilHealth},
					EstimatedTime: 10,
				},
				{
					StepID:        "weather_forecast",
					Title:         "Review Weather Forecast",
					Description:   "Check rainfall predictions and temperature patterns",
					ToolsRequired: []string{ToolWeather},
					EstimatedTime: 5,
				},
				{
					StepID:        "crop_water_needs",
					Title:         "Determine Crop Water Requirements",
					Description:   "Calculate water needs based on crop type and growth stage",
					ToolsRequired: []string{ToolWebSearch},
					EstimatedTime: 15,
					Prerequisites: []string{"soil_moisture_check"},
				},
				{
					StepID:        "irrigation_schedule",
					Title:         "Create Irrigation Schedule",
					Description:   "Develop optimal watering schedule based on all factors",
					EstimatedTime: 15,
					Prerequisites: []string{"weather_forecast", "crop_water_needs"},
				},
				{
					StepID:        "water_conservation",
					Title:         "Plan Water Conservation",
					Description:   "Implement water-saving techniques and monitoring",
					EstimatedTime: 10,
					Prerequisites: []string{"irrigation_schedule"},
					Optional:      true,
				},
			},
		},
		{
			WorkflowID:  "harvest_timing",
			Title:       "Optimal Harvest Timing",
			Description: "Determine the best time to harvest for maximum yield and profit",
			Category:    "harvest_timing",
			Difficulty:  "advanced",
			Steps: []WorkflowStepDef{
				{
					StepID:        "crop_maturity_check",
					Title:         "Assess Crop Maturity",
					Description:   "Evaluate crop maturity indicators and readiness",
					EstimatedTime: 15,
				},
				{
					StepID:        "weather_window",
					Title:         "Find Weather Window",
					Description:   "Identify optimal weather conditions for harvesting",
					ToolsRequired: []string{ToolWeather},
					EstimatedTime: 10,
				},
				{
					StepID:        "market_timing",
					Title:         "Analyze Market Timing",
					Description:   "Check current prices and predict optimal selling time",
					ToolsRequired: []string{ToolCropPrice, ToolMandiPrice},
					EstimatedTime: 20,
				},
				{
					StepID:        "logistics_planning",
					Title:         "Plan Harvest Logistics",
					Description:   "Organize labor, equipment, and transportation",
					EstimatedTime: 25,
					Prerequisites: []string{"crop_maturity_check", "weather_window"},
				},
				{
					StepID:        "quality_optimization",
					Title:         "Optimize Harvest Quality",
					Description:   "Implement best practices for maximum quality and storage life",
					EstimatedTime: 15,
					Prerequisites: []string{"logistics_planning"},
					Optional:      true,
				},
			},
		},
	}

	catalog := make(map[string]*WorkflowDef, len(defs))
	for _, def := range defs {
		total := 0
		for _, step := range def.Steps {
			total += step.EstimatedTime
		}
		def.EstimatedTotalTime = total
		catalog[def.WorkflowID] = def
	}
	return catalog
}

// GetWorkflowDef 按ID查找工作流定义
func GetWorkflowDef(workflowID string) (*WorkflowDef, bool) {
	def, ok := workflowCatalog[workflowID]
	return def, ok
}

// AllWorkflowDefs 返回全部工作流定义，顺序稳定
func AllWorkflowDefs() []*WorkflowDef {
	ids := []string{"crop_selection", "pest_management", "irrigation_planning", "harvest_timing"}
	defs := make([]*WorkflowDef, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, workflowCatalog[id])
	}
	return defs
}
