package services

import (
	"context"
	"sort"
	"time"

	"github.com/steamachieve/steamachieve-backend/internal/clients/steam"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

const gameCacheTTL = time.Hour

type GamesResponse struct {
	Success   bool                `json:"success"`
	Games     []*types.CachedGame `json:"games"`
	GameCount int                 `json:"game_count"`
	FromCache bool                `json:"from_cache"`
}

type AchievementsResponse struct {
	Success      bool                   `json:"success"`
	GameName     string                 `json:"game_name"`
	Achievements []types.Achievement    `json:"achievements"`
	Stats        types.AchievementStats `json:"stats"`
}

type LibraryService interface {
	GetOwnedGames(ctx context.Context, steamID string, forceRefresh bool) (*GamesResponse, error)
	GetRecentlyPlayed(ctx context.Context, steamID string, count int) ([]*types.CachedGame, error)
	GetAchievements(ctx context.Context, steamID string, appID int) (*AchievementsResponse, error)
	GetAchievementRefs(ctx context.Context, steamID string, appID int, lockedOnly bool) (string, []types.AchievementRef, error)
}

type libraryService struct {
	log      *logger.Logger
	steam    steam.Client
	gameRepo repos.CachedGameRepo
}

func NewLibraryService(steamClient steam.Client, gameRepo repos.CachedGameRepo, baseLog *logger.Logger) LibraryService {
	return &libraryService{
		log:      baseLog.With("service", "LibraryService"),
		steam:    steamClient,
		gameRepo: gameRepo,
	}
}

// GetOwnedGames serves the cached library when it is under an hour old,
// otherwise refreshes from Steam and replaces the cached rows.
func (ls *libraryService) GetOwnedGames(ctx context.Context, steamID string, forceRefresh bool) (*GamesResponse, error) {
	if !forceRefresh {
		cached, err := ls.gameRepo.GetFresh(ctx, nil, steamID, gameCacheTTL)
		if err != nil {
			ls.log.Warn("cached games lookup failed", "steam_id", steamID, "error", err)
		} else if len(cached) > 0 {
			return &GamesResponse{Success: true, Games: cached, GameCount: len(cached), FromCache: true}, nil
		}
	}

	games, err := ls.steam.GetOwnedGames(ctx, steamID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rows := make([]*types.CachedGame, 0, len(games))
	for _, g := range games {
		rows = append(rows, cachedGameFromSteam(steamID, g, now))
	}

	if err := ls.gameRepo.ReplaceForUser(ctx, nil, steamID, rows); err != nil {
		ls.log.Warn("game cache write failed", "steam_id", steamID, "error", err)
	}

	// Most-played first, matching the cached read path.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PlaytimeForever > rows[j].PlaytimeForever
	})

	return &GamesResponse{Success: true, Games: rows, GameCount: len(rows), FromCache: false}, nil
}

func (ls *libraryService) GetRecentlyPlayed(ctx context.Context, steamID string, count int) ([]*types.CachedGame, error) {
	if count <= 0 {
		count = 5
	}
	games, err := ls.steam.GetRecentlyPlayedGames(ctx, steamID, count)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rows := make([]*types.CachedGame, 0, len(games))
	for _, g := range games {
		rows = append(rows, cachedGameFromSteam(steamID, g, now))
	}
	return rows, nil
}

// GetAchievements merges player unlock state, the game schema and global
// percentages into a display-ready list with summary stats.
func (ls *libraryService) GetAchievements(ctx context.Context, steamID string, appID int) (*AchievementsResponse, error) {
	playerAchievements, err := ls.steam.GetPlayerAchievements(ctx, steamID, appID)
	if err != nil {
		return nil, err
	}
	schema, err := ls.steam.GetSchemaForGame(ctx, appID)
	if err != nil {
		return nil, err
	}
	percentages, err := ls.steam.GetGlobalAchievementPercentages(ctx, appID)
	if err != nil {
		ls.log.Warn("global percentages unavailable", "app_id", appID, "error", err)
		percentages = nil
	}

	merged := steam.MergeAchievementData(playerAchievements, schema.Achievements, percentages)
	merged = steam.SortLockedFirst(merged)

	unlocked := 0
	for _, ach := range merged {
		if ach.Achieved {
			unlocked++
		}
	}
	total := len(merged)
	completion := 0.0
	if total > 0 {
		completion = float64(unlocked) / float64(total) * 100
	}

	return &AchievementsResponse{
		Success:      true,
		GameName:     schema.GameName,
		Achievements: merged,
		Stats: types.AchievementStats{
			Total:             total,
			Unlocked:          unlocked,
			Locked:            total - unlocked,
			CompletionPercent: completion,
		},
	}, nil
}

// GetAchievementRefs builds generation inputs for a game's achievements,
// optionally restricted to still-locked ones.
func (ls *libraryService) GetAchievementRefs(ctx context.Context, steamID string, appID int, lockedOnly bool) (string, []types.AchievementRef, error) {
	resp, err := ls.GetAchievements(ctx, steamID, appID)
	if err != nil {
		return "", nil, err
	}

	refs := make([]types.AchievementRef, 0, len(resp.Achievements))
	for _, ach := range resp.Achievements {
		if lockedOnly && ach.Achieved {
			continue
		}
		percent := ach.GlobalPercent
		refs = append(refs, types.AchievementRef{
			AppID:           appID,
			AchievementName: ach.Name,
			GameName:        resp.GameName,
			Description:     ach.Description,
			GlobalPercent:   &percent,
		})
	}
	return resp.GameName, refs, nil
}

func cachedGameFromSteam(steamID string, g steam.Game, now time.Time) *types.CachedGame {
	row := &types.CachedGame{
		SteamID:         steamID,
		AppID:           g.AppID,
		Name:            g.Name,
		ImgIconURL:      g.ImgIconURL,
		HeaderImage:     steam.GameHeaderImage(g.AppID),
		CapsuleImage:    steam.GameCapsuleImage(g.AppID, ""),
		HeroImage:       steam.GameHeroImage(g.AppID),
		LogoImage:       steam.GameLogo(g.AppID),
		LibraryCapsule:  steam.GameLibraryCapsule(g.AppID),
		PlaytimeForever: g.PlaytimeForever,
		Playtime2Weeks:  g.Playtime2Weeks,
		CachedAt:        now,
	}
	if g.RtimeLastPlayed > 0 {
		t := time.Unix(g.RtimeLastPlayed, 0).UTC()
		row.LastPlayed = &t
	}
	return row
}
