package steam

import (
	"sort"

	"github.com/steamachieve/steamachieve-backend/internal/types"
)

// MergeAchievementData joins player unlock state with schema metadata and
// global unlock percentages into the merged achievement view. Percentages
// that fail to parse are coerced to zero rather than dropped.
func MergeAchievementData(playerAchievements []PlayerAchievement, schemaAchievements []SchemaAchievement, globalPercentages []GlobalPercentage) []types.Achievement {
	if len(playerAchievements) == 0 || len(schemaAchievements) == 0 {
		return []types.Achievement{}
	}

	schemaByName := make(map[string]SchemaAchievement, len(schemaAchievements))
	for _, ach := range schemaAchievements {
		schemaByName[ach.Name] = ach
	}
	percentByName := make(map[string]float64, len(globalPercentages))
	for _, gp := range globalPercentages {
		percent, err := gp.Percent.Float64()
		if err != nil {
			percent = 0
		}
		percentByName[gp.Name] = percent
	}

	merged := make([]types.Achievement, 0, len(playerAchievements))
	for _, pa := range playerAchievements {
		schema := schemaByName[pa.APIName]

		name := pa.Name
		if name == "" {
			name = schema.DisplayName
		}
		if name == "" {
			name = pa.APIName
		}

		merged = append(merged, types.Achievement{
			APIName:       pa.APIName,
			Achieved:      pa.Achieved == 1,
			UnlockTime:    pa.UnlockTime,
			Name:          name,
			Description:   schema.Description,
			Icon:          schema.Icon,
			IconGray:      schema.IconGray,
			Hidden:        schema.Hidden == 1,
			GlobalPercent: percentByName[pa.APIName],
		})
	}
	return merged
}

// SortLockedFirst orders achievements for display: locked ones first, rarest
// leading, then unlocked ones by most recent unlock.
func SortLockedFirst(achievements []types.Achievement) []types.Achievement {
	locked := make([]types.Achievement, 0, len(achievements))
	unlocked := make([]types.Achievement, 0, len(achievements))
	for _, ach := range achievements {
		if ach.Achieved {
			unlocked = append(unlocked, ach)
		} else {
			locked = append(locked, ach)
		}
	}

	sort.SliceStable(locked, func(i, j int) bool {
		return locked[i].GlobalPercent < locked[j].GlobalPercent
	})
	sort.SliceStable(unlocked, func(i, j int) bool {
		return unlocked[i].UnlockTime > unlocked[j].UnlockTime
	})

	return append(locked, unlocked...)
}
