package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clatprep/backend/config"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/model"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// InsightService generates a short study plan from a computed analytics
// report. It degrades to an error when no Gemini API key is configured.
type InsightService interface {
	GenerateStudyPlan(ctx context.Context, report *dto.AnalyticsReport) (string, error)
}

type insightService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewInsightService(cfg *config.Config) (InsightService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. InsightService will be non-functional.")
		return &insightService{cfg: cfg, client: nil}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &insightService{client: model, cfg: cfg}, nil
}

func (s *insightService) GenerateStudyPlan(ctx context.Context, report *dto.AnalyticsReport) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	var sb strings.Builder
	sb.WriteString("You are a CLAT exam preparation coach. Based on the student's practice statistics below, ")
	sb.WriteString("write a concise study plan (at most 200 words) focusing on their weakest section.\n\n")
	fmt.Fprintf(&sb, "Tests taken: %d, average score: %.1f%%, best: %.1f%%, current streak: %d days.\n",
		report.Overview.TotalTests, report.Overview.AverageScore, report.Overview.BestScore, report.Overview.CurrentStreak)
	for _, sec := range model.AllSections {
		stats := report.SectionAnalytics[sec]
		if stats == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s: %d answered, accuracy %.1f%%, avg %.0fs per question.\n",
			sec, stats.Total, stats.Accuracy, stats.AverageTime)
	}
	fmt.Fprintf(&sb, "Weakest section: %s. Most practiced section: %s.\n",
		report.Insights.NeedsImprovement, report.Insights.MostActiveSection)

	resp, err := s.client.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		log.Error().Err(err).Msg("GenerateStudyPlan: Gemini request failed")
		return "", fmt.Errorf("generating study plan: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}
