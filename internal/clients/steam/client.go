// Package steam wraps the Steam Web API endpoints this app consumes: player
// summaries, owned games, per-game achievements, achievement schemas and
// global unlock percentages.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

const (
	baseURL  = "https://api.steampowered.com"
	cdnURL   = "http://cdn.steampowered.com/steamcommunity/public/images/apps"
	storeCDN = "https://cdn.cloudflare.steamstatic.com/steam/apps"
)

type Client interface {
	GetPlayerSummaries(ctx context.Context, steamIDs []string) ([]Player, error)
	GetOwnedGames(ctx context.Context, steamID string) ([]Game, error)
	GetRecentlyPlayedGames(ctx context.Context, steamID string, count int) ([]Game, error)
	GetPlayerAchievements(ctx context.Context, steamID string, appID int) ([]PlayerAchievement, error)
	GetSchemaForGame(ctx context.Context, appID int) (*GameSchema, error)
	GetGlobalAchievementPercentages(ctx context.Context, appID int) ([]GlobalPercentage, error)
}

type Player struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	ProfileURL  string `json:"profileurl"`
	AvatarFull  string `json:"avatarfull"`
}

type Game struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	ImgIconURL      string `json:"img_icon_url"`
	PlaytimeForever int    `json:"playtime_forever"`
	Playtime2Weeks  int    `json:"playtime_2weeks"`
	RtimeLastPlayed int64  `json:"rtime_last_played"`
}

type PlayerAchievement struct {
	APIName    string `json:"apiname"`
	Achieved   int    `json:"achieved"`
	UnlockTime int64  `json:"unlocktime"`
	Name       string `json:"name"`
}

type SchemaAchievement struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
	Hidden      int    `json:"hidden"`
}

type GameSchema struct {
	GameName     string
	GameVersion  string
	Achievements []SchemaAchievement
}

type GlobalPercentage struct {
	Name    string      `json:"name"`
	Percent json.Number `json:"percent"`
}

type steamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *steamHTTPError) Error() string {
	return fmt.Sprintf("steam http %d: %s", e.StatusCode, e.Body)
}

type client struct {
	log        *logger.Logger
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Steam Web API client from the environment. A missing
// STEAM_API_KEY is a configuration error surfaced here, before any call.
func NewClient(log *logger.Logger) (Client, error) {
	apiKey := utils.GetEnv("STEAM_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("missing STEAM_API_KEY")
	}

	timeoutSec := utils.GetEnvAsInt("STEAM_TIMEOUT_SECONDS", 10, log)

	return &client{
		log:        log.With("client", "SteamClient"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (c *client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("steam request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("steam read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &steamHTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("steam decode: %w", err)
	}
	return nil
}

func (c *client) GetPlayerSummaries(ctx context.Context, steamIDs []string) ([]Player, error) {
	params := url.Values{}
	ids := ""
	for i, id := range steamIDs {
		if i > 0 {
			ids += ","
		}
		ids += id
	}
	params.Set("steamids", ids)

	var payload struct {
		Response struct {
			Players []Player `json:"players"`
		} `json:"response"`
	}
	if err := c.get(ctx, "ISteamUser/GetPlayerSummaries/v2/", params, &payload); err != nil {
		c.log.Warn("GetPlayerSummaries failed", "error", err)
		return nil, err
	}
	return payload.Response.Players, nil
}

func (c *client) GetOwnedGames(ctx context.Context, steamID string) ([]Game, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")

	var payload struct {
		Response struct {
			Games []Game `json:"games"`
		} `json:"response"`
	}
	if err := c.get(ctx, "IPlayerService/GetOwnedGames/v1/", params, &payload); err != nil {
		c.log.Warn("GetOwnedGames failed", "steam_id", steamID, "error", err)
		return nil, err
	}
	if payload.Response.Games == nil {
		return nil, fmt.Errorf("no games in response, profile may be private")
	}
	return payload.Response.Games, nil
}

func (c *client) GetRecentlyPlayedGames(ctx context.Context, steamID string, count int) ([]Game, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("count", strconv.Itoa(count))

	var payload struct {
		Response struct {
			Games []Game `json:"games"`
		} `json:"response"`
	}
	if err := c.get(ctx, "IPlayerService/GetRecentlyPlayedGames/v1/", params, &payload); err != nil {
		c.log.Warn("GetRecentlyPlayedGames failed", "steam_id", steamID, "error", err)
		return nil, err
	}
	return payload.Response.Games, nil
}

func (c *client) GetPlayerAchievements(ctx context.Context, steamID string, appID int) ([]PlayerAchievement, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("appid", strconv.Itoa(appID))

	var payload struct {
		PlayerStats struct {
			Success      bool                `json:"success"`
			Achievements []PlayerAchievement `json:"achievements"`
		} `json:"playerstats"`
	}
	if err := c.get(ctx, "ISteamUserStats/GetPlayerAchievements/v1/", params, &payload); err != nil {
		c.log.Warn("GetPlayerAchievements failed", "steam_id", steamID, "app_id", appID, "error", err)
		return nil, err
	}
	if !payload.PlayerStats.Success {
		return nil, fmt.Errorf("player achievements unavailable, profile may be private or game has no achievements")
	}
	return payload.PlayerStats.Achievements, nil
}

func (c *client) GetSchemaForGame(ctx context.Context, appID int) (*GameSchema, error) {
	params := url.Values{}
	params.Set("appid", strconv.Itoa(appID))

	var payload struct {
		Game struct {
			GameName           string `json:"gameName"`
			GameVersion        string `json:"gameVersion"`
			AvailableGameStats struct {
				Achievements []SchemaAchievement `json:"achievements"`
			} `json:"availableGameStats"`
		} `json:"game"`
	}
	if err := c.get(ctx, "ISteamUserStats/GetSchemaForGame/v2/", params, &payload); err != nil {
		c.log.Warn("GetSchemaForGame failed", "app_id", appID, "error", err)
		return nil, err
	}
	return &GameSchema{
		GameName:     payload.Game.GameName,
		GameVersion:  payload.Game.GameVersion,
		Achievements: payload.Game.AvailableGameStats.Achievements,
	}, nil
}

func (c *client) GetGlobalAchievementPercentages(ctx context.Context, appID int) ([]GlobalPercentage, error) {
	params := url.Values{}
	params.Set("gameid", strconv.Itoa(appID))

	var payload struct {
		AchievementPercentages struct {
			Achievements []GlobalPercentage `json:"achievements"`
		} `json:"achievementpercentages"`
	}
	if err := c.get(ctx, "ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", params, &payload); err != nil {
		c.log.Warn("GetGlobalAchievementPercentages failed", "app_id", appID, "error", err)
		return nil, err
	}
	return payload.AchievementPercentages.Achievements, nil
}
