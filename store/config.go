package store

// Config holds table names, index names, and operational tunables.
type Config struct {
	// ReviewsTable is the reviews table name.
	// Default: "tastetrail_reviews"
	ReviewsTable string

	// SpotsTable is the spots table name. Spot documents are owned by
	// another system; this library only maintains their aggregate fields.
	// Default: "tastetrail_spots"
	SpotsTable string

	// FavoritesTable is the favorites table name, keyed (userId, spotId).
	// Default: "tastetrail_favorites"
	FavoritesTable string

	// ReviewsBySpotIndex is the reviews GSI keyed (spotId, createdAt).
	// Default: "spotId-createdAt-index"
	ReviewsBySpotIndex string

	// ReviewsByUserIndex is the reviews GSI keyed (userId, createdAt).
	// Default: "userId-createdAt-index"
	ReviewsByUserIndex string

	// FavoritesByAddedIndex is the favorites index keyed (userId, createdAt),
	// used to list a user's favorites most-recent-first.
	// Default: "userId-createdAt-index"
	FavoritesByAddedIndex string

	// MaxUpdateAttempts bounds the optimistic-concurrency retry loop for
	// spot aggregate updates.
	// Default: 5
	MaxUpdateAttempts int

	// BatchSize is the number of keys per BatchGetItem request.
	// Default and max: 100 (the DynamoDB batch-get limit)
	BatchSize int

	// MaxBatchRounds caps how many times a batch-get round may be reissued
	// for unprocessed keys. DynamoDB only guarantees termination
	// cooperatively, so the cap is a guard against a store that never
	// drains; hitting it logs and returns the keys resolved so far.
	// Default: 50
	MaxBatchRounds int
}

// DefaultConfig returns sensible defaults for a single-region deployment.
func DefaultConfig() Config {
	return Config{
		ReviewsTable:          "tastetrail_reviews",
		SpotsTable:            "tastetrail_spots",
		FavoritesTable:        "tastetrail_favorites",
		ReviewsBySpotIndex:    "spotId-createdAt-index",
		ReviewsByUserIndex:    "userId-createdAt-index",
		FavoritesByAddedIndex: "userId-createdAt-index",
		MaxUpdateAttempts:     5,
		BatchSize:             100,
		MaxBatchRounds:        50,
	}
}

// Validate fills zero values with defaults and clamps out-of-range tunables.
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.ReviewsTable == "" {
		c.ReviewsTable = def.ReviewsTable
	}
	if c.SpotsTable == "" {
		c.SpotsTable = def.SpotsTable
	}
	if c.FavoritesTable == "" {
		c.FavoritesTable = def.FavoritesTable
	}
	if c.ReviewsBySpotIndex == "" {
		c.ReviewsBySpotIndex = def.ReviewsBySpotIndex
	}
	if c.ReviewsByUserIndex == "" {
		c.ReviewsByUserIndex = def.ReviewsByUserIndex
	}
	if c.FavoritesByAddedIndex == "" {
		c.FavoritesByAddedIndex = def.FavoritesByAddedIndex
	}
	if c.MaxUpdateAttempts < 1 {
		c.MaxUpdateAttempts = def.MaxUpdateAttempts
	}
	if c.BatchSize < 1 || c.BatchSize > 100 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxBatchRounds < 1 {
		c.MaxBatchRounds = def.MaxBatchRounds
	}
}
