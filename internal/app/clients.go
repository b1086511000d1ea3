package app

import (
	"fmt"

	"github.com/steamachieve/steamachieve-backend/internal/clients/duckduckgo"
	"github.com/steamachieve/steamachieve-backend/internal/clients/openrouter"
	redisclient "github.com/steamachieve/steamachieve-backend/internal/clients/redis"
	"github.com/steamachieve/steamachieve-backend/internal/clients/steam"
	"github.com/steamachieve/steamachieve-backend/internal/clients/webpage"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
)

type Clients struct {
	Steam      steam.Client
	OpenRouter openrouter.Completer
	DuckDuckGo duckduckgo.Searcher
	Webpage    webpage.Fetcher
	// SearchCache degrades to a no-op when redis is not configured.
	SearchCache redisclient.SearchCache
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	steamClient, err := steam.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init steam client: %w", err)
	}
	completer, err := openrouter.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openrouter client: %w", err)
	}

	searchCache := redisclient.NewNoopSearchCache()
	if cfg.EnableRedis {
		if sc, scErr := redisclient.NewSearchCache(log); scErr != nil {
			log.Warn("redis unavailable, search hot cache disabled", "error", scErr)
		} else {
			searchCache = sc
		}
	}

	return Clients{
		Steam:       steamClient,
		OpenRouter:  completer,
		DuckDuckGo:  duckduckgo.NewClient(log),
		Webpage:     webpage.NewClient(log),
		SearchCache: searchCache,
	}, nil
}
