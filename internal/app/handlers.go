package app

import (
	"github.com/steamachieve/steamachieve-backend/internal/handlers"
)

type Handlers struct {
	Healthcheck *handlers.HealthcheckHandler
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Games       *handlers.GamesHandler
	Guides      *handlers.GuidesHandler
	Bookmarks   *handlers.BookmarksHandler
	Preferences *handlers.PreferencesHandler
}

func wireHandlers(serviceset Services, reposet Repos) Handlers {
	return Handlers{
		Healthcheck: handlers.NewHealthcheckHandler(),
		Auth:        handlers.NewAuthHandler(serviceset.Auth),
		User:        handlers.NewUserHandler(reposet.User),
		Games:       handlers.NewGamesHandler(serviceset.Library),
		Guides: handlers.NewGuidesHandler(
			serviceset.GuideSearch,
			serviceset.AIGuide,
			serviceset.Aggregator,
			serviceset.Library,
		),
		Bookmarks:   handlers.NewBookmarksHandler(serviceset.Profile),
		Preferences: handlers.NewPreferencesHandler(serviceset.Profile),
	}
}
