package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/steamachieve/steamachieve-backend/internal/clients/openrouter"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/ratelimit"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

const aiSystemPrompt = `You are an expert gaming guide writer specializing in Steam achievements.
Write a practical, step-by-step guide for unlocking the achievement you are given.
Respond with a single JSON object with these keys:
  "difficulty_rating": integer 1-10 (1 = trivial, 10 = extremely hard),
  "estimated_time": short string like "30 minutes" or "2-3 hours",
  "strategies": array of strings, the main steps in order,
  "tips": array of strings, shorter practical hints,
  "summary": one or two sentence overview.
Respond with JSON only, no markdown fences or commentary.`

const defaultEstimatedTime = "Varies"

var ErrAIDailyLimitReached = fmt.Errorf("daily AI generation limit reached")

type AIGuideResult struct {
	Guide     types.AIGuidePayload `json:"guide"`
	FromCache bool                 `json:"from_cache"`
}

type BatchGenerateResult struct {
	Generated []string `json:"generated"`
	Failed    []string `json:"failed"`
	Skipped   []string `json:"skipped"`
}

type AIGuideService interface {
	Generate(ctx context.Context, ref types.AchievementRef, force bool) (*AIGuideResult, error)
	BatchGenerate(ctx context.Context, gameName string, appID int, refs []types.AchievementRef) (*BatchGenerateResult, error)
	Get(ctx context.Context, appID int, achievementName string) (*types.AIGuidePayload, error)
	RecordView(ctx context.Context, appID int, achievementName string) error
	RateGuide(ctx context.Context, appID int, achievementName string, rating int) error
	LimiterStatus() ratelimit.Status
}

type aiGuideService struct {
	log       *logger.Logger
	completer openrouter.Completer
	repo      repos.AIGuideRepo
	limiter   *ratelimit.Limiter
}

func NewAIGuideService(
	completer openrouter.Completer,
	repo repos.AIGuideRepo,
	limiter *ratelimit.Limiter,
	baseLog *logger.Logger,
) AIGuideService {
	return &aiGuideService{
		log:       baseLog.With("service", "AIGuideService"),
		completer: completer,
		repo:      repo,
		limiter:   limiter,
	}
}

// Generate returns the stored guide when one exists, unless force is
// set. A fresh generation consumes rate-limit budget and blocks for the
// minute window, but a spent daily window aborts immediately.
func (as *aiGuideService) Generate(ctx context.Context, ref types.AchievementRef, force bool) (*AIGuideResult, error) {
	if !force {
		existing, err := as.repo.Get(ctx, nil, ref.AppID, ref.AchievementName)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			payload := payloadFromModel(existing)
			return &AIGuideResult{Guide: payload, FromCache: true}, nil
		}
	}

	if as.limiter.DailyExhausted() {
		return nil, ErrAIDailyLimitReached
	}
	if !as.limiter.Allow() {
		wait := as.limiter.TimeUntilAllowed()
		as.log.Info("AI rate limited, waiting", "seconds", wait.Seconds())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	as.limiter.Record()

	raw, err := as.completer.Complete(ctx, aiSystemPrompt, buildUserPrompt(ref), 0)
	if err != nil {
		return nil, fmt.Errorf("AI completion: %w", err)
	}

	payload := parseAIResponse(raw, ref.GlobalPercent)
	payload.ModelUsed = as.completer.Model()
	payload.GeneratedAt = time.Now().UTC()

	if err := as.store(ctx, ref, raw, payload); err != nil {
		return nil, err
	}

	return &AIGuideResult{Guide: payload, FromCache: false}, nil
}

// BatchGenerate runs through the refs until the limiter denies a call.
// A batch never waits out a window; it stops at the first denial.
// Achievements that already have a guide are skipped, not regenerated.
func (as *aiGuideService) BatchGenerate(ctx context.Context, gameName string, appID int, refs []types.AchievementRef) (*BatchGenerateResult, error) {
	result := &BatchGenerateResult{
		Generated: []string{},
		Failed:    []string{},
		Skipped:   []string{},
	}

	for _, ref := range refs {
		ref.AppID = appID
		if ref.GameName == "" {
			ref.GameName = gameName
		}

		existing, err := as.repo.Get(ctx, nil, ref.AppID, ref.AchievementName)
		if err == nil && existing != nil {
			result.Skipped = append(result.Skipped, ref.AchievementName)
			continue
		}

		if !as.limiter.Allow() {
			as.log.Warn("rate limit hit during batch", "generated", len(result.Generated))
			break
		}

		if _, err := as.Generate(ctx, ref, false); err != nil {
			if err == ErrAIDailyLimitReached {
				break
			}
			as.log.Warn("batch generation failed", "achievement", ref.AchievementName, "error", err)
			result.Failed = append(result.Failed, ref.AchievementName)
			continue
		}
		result.Generated = append(result.Generated, ref.AchievementName)
	}

	return result, nil
}

func (as *aiGuideService) Get(ctx context.Context, appID int, achievementName string) (*types.AIGuidePayload, error) {
	model, err := as.repo.Get(ctx, nil, appID, achievementName)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}
	payload := payloadFromModel(model)
	return &payload, nil
}

func (as *aiGuideService) RecordView(ctx context.Context, appID int, achievementName string) error {
	return as.repo.IncrementViews(ctx, nil, appID, achievementName)
}

func (as *aiGuideService) RateGuide(ctx context.Context, appID int, achievementName string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	updated, err := as.repo.UpdateRating(ctx, nil, appID, achievementName, rating)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("no guide found for %s", achievementName)
	}
	return nil
}

func (as *aiGuideService) LimiterStatus() ratelimit.Status {
	return as.limiter.Status()
}

func (as *aiGuideService) store(ctx context.Context, ref types.AchievementRef, raw string, payload types.AIGuidePayload) error {
	strategies, err := json.Marshal(payload.Strategies)
	if err != nil {
		return err
	}
	tips, err := json.Marshal(payload.Tips)
	if err != nil {
		return err
	}

	model := &types.AIGuide{
		AppID:                  ref.AppID,
		AchievementName:        ref.AchievementName,
		GameName:               ref.GameName,
		AchievementDescription: ref.Description,
		GuideContent:           raw,
		DifficultyRating:       payload.DifficultyRating,
		EstimatedTime:          payload.EstimatedTime,
		Strategies:             datatypes.JSON(strategies),
		Tips:                   datatypes.JSON(tips),
		ModelUsed:              payload.ModelUsed,
		GeneratedAt:            payload.GeneratedAt,
	}
	return as.repo.Upsert(ctx, nil, model)
}

func buildUserPrompt(ref types.AchievementRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s\nAchievement: %s\n", ref.GameName, ref.AchievementName)
	if ref.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ref.Description)
	}
	if ref.GlobalPercent != nil {
		fmt.Fprintf(&b, "Global completion rate: %.1f%% of players\n", *ref.GlobalPercent)
	}
	return b.String()
}

// parseAIResponse reads the model's JSON, tolerating markdown fences.
// When the response is not valid JSON the whole text is kept as the
// single strategy, the summary is truncated, and the difficulty falls
// back to the rarity band.
func parseAIResponse(raw string, globalPercent *float64) types.AIGuidePayload {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		DifficultyRating int      `json:"difficulty_rating"`
		EstimatedTime    string   `json:"estimated_time"`
		Strategies       []string `json:"strategies"`
		Tips             []string `json:"tips"`
		Summary          string   `json:"summary"`
	}

	payload := types.AIGuidePayload{
		EstimatedTime: defaultEstimatedTime,
		Strategies:    []string{},
		Tips:          []string{},
	}

	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		text := strings.TrimSpace(raw)
		payload.Strategies = []string{text}
		payload.Summary = truncateSummary(text)
		payload.DifficultyRating = difficultyFromPercent(globalPercent)
		return payload
	}

	payload.Summary = parsed.Summary
	payload.DifficultyRating = parsed.DifficultyRating
	if payload.DifficultyRating < 1 || payload.DifficultyRating > 10 {
		payload.DifficultyRating = difficultyFromPercent(globalPercent)
	}
	if parsed.EstimatedTime != "" {
		payload.EstimatedTime = parsed.EstimatedTime
	}
	if parsed.Strategies != nil {
		payload.Strategies = parsed.Strategies
	}
	if parsed.Tips != nil {
		payload.Tips = parsed.Tips
	}
	return payload
}

const summaryMaxLen = 200

func truncateSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryMaxLen {
		return text
	}
	return string(runes[:summaryMaxLen]) + "..."
}

// difficultyFromPercent bands rarity into a 1-10 difficulty when the
// model does not supply one.
func difficultyFromPercent(globalPercent *float64) int {
	if globalPercent == nil {
		return 5
	}
	p := *globalPercent
	switch {
	case p >= 75:
		return 1
	case p >= 50:
		return 3
	case p >= 25:
		return 5
	case p >= 10:
		return 7
	case p >= 1:
		return 9
	default:
		return 10
	}
}

func payloadFromModel(model *types.AIGuide) types.AIGuidePayload {
	payload := types.AIGuidePayload{
		DifficultyRating: model.DifficultyRating,
		EstimatedTime:    model.EstimatedTime,
		Strategies:       []string{},
		Tips:             []string{},
		ModelUsed:        model.ModelUsed,
		GeneratedAt:      model.GeneratedAt,
		Views:            model.Views,
		Rating:           model.Rating,
	}
	if len(model.Strategies) > 0 {
		_ = json.Unmarshal(model.Strategies, &payload.Strategies)
	}
	if len(model.Tips) > 0 {
		_ = json.Unmarshal(model.Tips, &payload.Tips)
	}

	// Older rows can hold the raw completion text; surface it as the
	// summary when structured fields are empty.
	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(model.GuideContent), &parsed); err == nil && parsed.Summary != "" {
		payload.Summary = parsed.Summary
	} else if len(payload.Strategies) == 0 && len(payload.Tips) == 0 {
		payload.Summary = strings.TrimSpace(model.GuideContent)
	}
	return payload
}
