package types

// Achievement is the merged view of one achievement for one player: player
// unlock state joined with schema metadata and the global unlock percentage.
type Achievement struct {
	APIName       string  `json:"apiname"`
	Achieved      bool    `json:"achieved"`
	UnlockTime    int64   `json:"unlocktime"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	IconGray      string  `json:"icongray"`
	Hidden        bool    `json:"hidden"`
	GlobalPercent float64 `json:"global_percent"`
}

// AchievementStats summarizes completion for one game.
type AchievementStats struct {
	Total             int     `json:"total"`
	Unlocked          int     `json:"unlocked"`
	Locked            int     `json:"locked"`
	CompletionPercent float64 `json:"completion_percent"`
}
