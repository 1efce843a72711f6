package domain

import "context"

const (
	SourceGemini   = "gemini"
	SourceFallback = "fallback"
)

type Service interface {
	Group(ctx context.Context, req GroupRequest) (*GroupRecommendation, error)
	Dashboard(ctx context.Context, req DashboardRequest) (*DashboardRecommendation, error)
	GroupOpportunities(ctx context.Context, req OpportunitiesRequest) (*OpportunitiesRecommendation, error)
}

type GroupRequest struct {
	GroupID     string `json:"group_id"`
	Constraints string `json:"constraints"`
}

type GroupRecommendation struct {
	GroupID              string `json:"group_id"`
	Source               string `json:"source"`
	RecommendedPackaging string `json:"recommended_packaging"`
	Tradeoffs            string `json:"tradeoffs"`
	SustainabilityReport string `json:"sustainability_report"`
}

type DashboardRequest struct {
	BusinessName   string `json:"business_name"`
	CityBusinesses int    `json:"city_businesses"`
}

type DashboardRecommendation struct {
	Source           string   `json:"source"`
	Summary          string   `json:"summary"`
	SuggestedActions []string `json:"suggested_actions"`
}

type OpportunitiesRequest struct {
	BusinessID string `json:"business_id"`
}

type Opportunity struct {
	GroupID        string  `json:"group_id"`
	ProductName    string  `json:"product_name"`
	ProgressPct    float64 `json:"progress_pct"`
	RemainingUnits int     `json:"remaining_units"`
	Reason         string  `json:"reason"`
}

type OpportunitiesRecommendation struct {
	Source        string        `json:"source"`
	Opportunities []Opportunity `json:"opportunities"`
}
