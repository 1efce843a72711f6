package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/providers/genai"
	"github.com/greensupply/greensupply/internal/recommend/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenAI        genai.Provider
	Groups       groupdomain.Service
	GroupRepo    groupdomain.Repository
	BusinessRepo businessdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genai        genai.Provider
	groups       groupdomain.Service
	groupRepo    groupdomain.Repository
	businessRepo businessdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("recommend.service"),
		genai:        p.GenAI,
		groups:       p.Groups,
		groupRepo:    p.GroupRepo,
		businessRepo: p.BusinessRepo,
	}
}

func (s *Service) Group(ctx context.Context, req domain.GroupRequest) (*domain.GroupRecommendation, error) {
	detail, err := s.groups.Get(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	impact, err := s.groups.Impact(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	prompt := buildGroupPrompt(detail, impact, req.Constraints)
	if generated := s.generateGroup(ctx, prompt); generated != nil {
		generated.GroupID = detail.ID
		return generated, nil
	}

	return &domain.GroupRecommendation{
		GroupID: detail.ID,
		Source:  domain.SourceFallback,
		RecommendedPackaging: fmt.Sprintf(
			"Use %s %s options such as %s to meet compostable packaging goals while reducing unit cost in bulk groups.",
			detail.Product.Material, detail.Product.Category, detail.Product.Name,
		),
		Tradeoffs: "Compostable materials often need proper collection/compost streams and may have " +
			"higher retail pricing outside bulk purchase windows.",
		SustainabilityReport: fmt.Sprintf(
			"This group currently avoids about %v kg plastic and %v kg CO2, while reducing about %d "+
				"delivery trips and saving roughly %v miles.",
			impact.EstimatedPlasticAvoidedKg, impact.EstimatedCO2SavedKg,
			impact.DeliveryTripsReduced, impact.DeliveryMilesSaved,
		),
	}, nil
}

func (s *Service) Dashboard(ctx context.Context, req domain.DashboardRequest) (*domain.DashboardRecommendation, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		name = "your business"
	}

	prompt := fmt.Sprintf(
		"You are a sustainability advisor for small food businesses.\n"+
			"Return valid JSON with keys: summary, suggested_actions (array of strings).\n"+
			"Keep each value concise and practical.\n\n"+
			"Business name: %s\nBusinesses in the city program: %d\n",
		name, req.CityBusinesses,
	)
	if generated := s.generateDashboard(ctx, prompt); generated != nil {
		return generated, nil
	}

	return &domain.DashboardRecommendation{
		Source: domain.SourceFallback,
		Summary: fmt.Sprintf(
			"Joining buying groups lets %s pool orders with nearby businesses for bulk pricing "+
				"and a single consolidated delivery.", name,
		),
		SuggestedActions: []string{
			"Join an active buying group in your region before its deadline.",
			"Commit units early so groups reach their business quorum sooner.",
			"Switch high-volume items to compostable alternatives first.",
		},
	}, nil
}

func (s *Service) GroupOpportunities(ctx context.Context, req domain.OpportunitiesRequest) (*domain.OpportunitiesRecommendation, error) {
	business, err := s.lookupBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}

	opportunities := make([]domain.Opportunity, 0, 3)
	for _, summary := range summaries {
		if summary.Status != groupdomain.StatusActive {
			continue
		}
		if business != nil && business.RegionID != nil &&
			summary.RegionID != snowflake.ID(*business.RegionID).String() {
			continue
		}
		opportunities = append(opportunities, domain.Opportunity{
			GroupID:        summary.ID,
			ProductName:    summary.Product.Name,
			ProgressPct:    summary.ProgressPct,
			RemainingUnits: summary.RemainingUnits,
			Reason: fmt.Sprintf(
				"%s is %.0f%% toward its target with %d units still open.",
				summary.Product.Name, summary.ProgressPct, summary.RemainingUnits,
			),
		})
		if len(opportunities) == 3 {
			break
		}
	}

	return &domain.OpportunitiesRecommendation{
		Source:        domain.SourceFallback,
		Opportunities: opportunities,
	}, nil
}

func (s *Service) lookupBusiness(ctx context.Context, businessID string) (*businessdomain.Business, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(businessID))
	if err != nil {
		return nil, nil
	}
	return s.businessRepo.FindByID(ctx, s.db, id.Int64())
}

// generateGroup asks the generative provider for a structured
// recommendation. Unstructured text is salvaged into the packaging field;
// missing keys or any provider failure yields nil so the caller falls back.
func (s *Service) generateGroup(ctx context.Context, prompt string) *domain.GroupRecommendation {
	text, err := s.genai.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		return nil
	}
	text = stripCodeFences(text)

	var parsed struct {
		RecommendedPackaging string `json:"recommended_packaging"`
		Tradeoffs            string `json:"tradeoffs"`
		SustainabilityReport string `json:"sustainability_report"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return &domain.GroupRecommendation{
			Source:               domain.SourceGemini,
			RecommendedPackaging: strings.TrimSpace(text),
			Tradeoffs:            "Review composting collection and material compliance requirements.",
			SustainabilityReport: "AI returned unstructured output; verify details against dashboard metrics.",
		}
	}
	if parsed.RecommendedPackaging == "" || parsed.Tradeoffs == "" || parsed.SustainabilityReport == "" {
		return nil
	}
	return &domain.GroupRecommendation{
		Source:               domain.SourceGemini,
		RecommendedPackaging: parsed.RecommendedPackaging,
		Tradeoffs:            parsed.Tradeoffs,
		SustainabilityReport: parsed.SustainabilityReport,
	}
}

func (s *Service) generateDashboard(ctx context.Context, prompt string) *domain.DashboardRecommendation {
	text, err := s.genai.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		return nil
	}

	var parsed struct {
		Summary          string   `json:"summary"`
		SuggestedActions []string `json:"suggested_actions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &parsed); err != nil {
		return nil
	}
	if parsed.Summary == "" || len(parsed.SuggestedActions) == 0 {
		return nil
	}
	return &domain.DashboardRecommendation{
		Source:           domain.SourceGemini,
		Summary:          parsed.Summary,
		SuggestedActions: parsed.SuggestedActions,
	}
}

func buildGroupPrompt(detail *groupdomain.Detail, impact *groupdomain.ImpactReport, constraints string) string {
	constraintsText := strings.TrimSpace(constraints)
	if constraintsText == "" {
		constraintsText = "No extra constraints provided."
	}
	return fmt.Sprintf(
		"You are sustainability advisor for small food businesses.\n"+
			"Return valid JSON with keys: recommended_packaging, tradeoffs, sustainability_report.\n"+
			"Keep each value concise and practical.\n\n"+
			"Product name: %s\nCategory: %s\nMaterial: %s\nCertifications: %s\n"+
			"Current units: %d\nTarget units: %d\n"+
			"Estimated savings USD: %v\nEstimated CO2 saved kg: %v\n"+
			"Estimated plastic avoided kg: %v\nDelivery miles saved: %v\n"+
			"Constraints: %s\n",
		detail.Product.Name, detail.Product.Category, detail.Product.Material,
		strings.Join(detail.Product.Certifications, ", "),
		detail.CurrentUnits, detail.TargetUnits,
		impact.EstimatedSavingsUSD, impact.EstimatedCO2SavedKg,
		impact.EstimatedPlasticAvoidedKg, impact.DeliveryMilesSaved,
		constraintsText,
	)
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
