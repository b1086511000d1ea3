package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SearchCacheEntry caches the ranked result list for one normalized search
// query. A re-search for the same query overwrites the row in place; reads
// are valid only while now < expires_at.
type SearchCacheEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SearchQuery string         `gorm:"uniqueIndex;not null;column:search_query" json:"search_query"`
	ResultsJSON datatypes.JSON `gorm:"column:results_json" json:"results_json"`
	ResultCount int            `gorm:"not null;default:0;column:result_count" json:"result_count"`
	SearchedAt  time.Time      `gorm:"not null;column:searched_at" json:"searched_at"`
	ExpiresAt   time.Time      `gorm:"not null;index;column:expires_at" json:"expires_at"`
}

func (SearchCacheEntry) TableName() string {
	return "guide_search_cache"
}
