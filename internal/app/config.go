package app

import (
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

type Config struct {
	Port               string
	SearchPerMinute    int
	SearchPerDay       int
	AIPerMinute        int
	AIPerDay           int
	EnableRedis        bool
	EnableCacheSweeper bool
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:               utils.GetEnv("PORT", "8080", log),
		SearchPerMinute:    utils.GetEnvAsInt("SEARCH_RATE_PER_MINUTE", 5, log),
		SearchPerDay:       utils.GetEnvAsInt("SEARCH_RATE_PER_DAY", 1000, log),
		AIPerMinute:        utils.GetEnvAsInt("AI_RATE_PER_MINUTE", 10, log),
		AIPerDay:           utils.GetEnvAsInt("AI_RATE_PER_DAY", 200, log),
		EnableRedis:        utils.GetEnv("REDIS_ADDR", "", log) != "",
		EnableCacheSweeper: utils.GetEnv("ENABLE_CACHE_SWEEPER", "true", log) == "true",
	}
}
