package review

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tastetrail/tastetrail/store"
)

// Repository is the storage façade for reviews, spot aggregates, and
// favorites. It holds no state beyond the injected client; every call is
// independent and honors ctx at each store round trip.
type Repository struct {
	client store.Client
	cfg    store.Config
	logger *zap.Logger
	spots  *store.Resolver
	now    func() time.Time
}

// New creates a Repository. cfg zero values are filled with defaults; a nil
// logger falls back to zap.NewNop.
func New(client store.Client, cfg store.Config, logger *zap.Logger) *Repository {
	cfg.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		client: client,
		cfg:    cfg,
		logger: logger,
		spots:  store.NewResolver(client, cfg.SpotsTable, cfg, logger),
		now:    time.Now,
	}
}

// Save persists the review, then folds its ratings into the spot's
// aggregates. The put is unconditional: a colliding id silently overwrites.
// An aggregate failure propagates to the caller, but the review item is
// already durable at that point and is not rolled back.
//
// Save assigns ID and CreatedAt when they are zero, mutating rev.
func (r *Repository) Save(ctx context.Context, rev *Review) error {
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = r.now().UTC()
	}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.cfg.ReviewsTable),
		Item:      reviewItem(rev),
	})
	if err != nil {
		return fmt.Errorf("put review: %w", err)
	}

	if err := r.applyReviewToSpot(ctx, rev); err != nil {
		return fmt.Errorf("review %s saved, spot %s aggregates not updated: %w", rev.ID, rev.SpotID, err)
	}
	return nil
}

// GetBySpot returns a spot's reviews, newest first.
func (r *Repository) GetBySpot(ctx context.Context, spotID string) ([]Review, error) {
	return r.queryReviews(ctx, r.cfg.ReviewsBySpotIndex, "spotId", spotID)
}

// GetByUser returns a user's reviews, newest first.
func (r *Repository) GetByUser(ctx context.Context, userID string) ([]Review, error) {
	return r.queryReviews(ctx, r.cfg.ReviewsByUserIndex, "userId", userID)
}

// queryReviews pages through a reviews GSI in createdAt-descending order.
func (r *Repository) queryReviews(ctx context.Context, index, keyName, keyValue string) ([]Review, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyName).Equal(expression.Value(keyValue))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	var reviews []Review
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.cfg.ReviewsTable),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			reviews = append(reviews, reviewFromItem(raw))
		}
	}
	return reviews, nil
}

// GetRecentWithSpot returns the limit most-recently-created reviews across
// the whole collection, joined with their spot documents. The reviews table
// has no global time index, so order is reconstructed in memory from a full
// scan, O(total review count) per call, acceptable only at small scale.
// limit <= 0 returns empty without touching the store.
func (r *Repository) GetRecentWithSpot(ctx context.Context, limit int) ([]RecentReviewItem, error) {
	if limit <= 0 {
		return []RecentReviewItem{}, nil
	}

	items, err := store.ScanAll(ctx, r.client, r.cfg.ReviewsTable)
	if err != nil {
		return nil, err
	}

	reviews := make([]Review, 0, len(items))
	for _, it := range items {
		reviews = append(reviews, reviewFromItem(it))
	}
	// Stable: equal timestamps keep scan order.
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}

	ids := make([]string, 0, len(reviews))
	for _, rev := range reviews {
		ids = append(ids, rev.SpotID)
	}
	spots, err := r.spots.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RecentReviewItem, 0, len(reviews))
	for _, rev := range reviews {
		item := RecentReviewItem{Review: rev}
		if raw, ok := spots[rev.SpotID]; ok {
			item.Spot = spotFromItem(raw)
		}
		out = append(out, item)
	}
	return out, nil
}

// IsFavorite reports whether the user has favorited the spot.
func (r *Repository) IsFavorite(ctx context.Context, userID, spotID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.cfg.FavoritesTable),
		Key:       favoriteKey(userID, spotID),
	})
	if err != nil {
		return false, err
	}
	return len(out.Item) > 0, nil
}

// AddFavorite marks the spot as a favorite of the user. Idempotent under the
// composite key; every call stamps createdAt afresh, so re-adding resets the
// timestamp.
func (r *Repository) AddFavorite(ctx context.Context, userID, spotID string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.cfg.FavoritesTable),
		Item: store.Item{
			"userId":    &types.AttributeValueMemberS{Value: userID},
			"spotId":    &types.AttributeValueMemberS{Value: spotID},
			"createdAt": &types.AttributeValueMemberN{Value: strconv.FormatInt(r.now().UTC().UnixMilli(), 10)},
		},
	})
	return err
}

// RemoveFavorite removes the favorite. Deleting a favorite that does not
// exist is a no-op.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, spotID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.cfg.FavoritesTable),
		Key:       favoriteKey(userID, spotID),
	})
	return err
}

// GetFavoritesWithSpot returns the user's favorites, most recent first,
// joined with their spot documents. Malformed rows missing the spot key are
// silently dropped; an unresolvable spot yields a nil Spot, not an error.
func (r *Repository) GetFavoritesWithSpot(ctx context.Context, userID string) ([]FavoriteSpotItem, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(userID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	var favorites []Favorite
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.cfg.FavoritesTable),
		IndexName:                 aws.String(r.cfg.FavoritesByAddedIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			if fav, ok := favoriteFromItem(raw); ok {
				favorites = append(favorites, fav)
			}
		}
	}

	ids := make([]string, 0, len(favorites))
	for _, fav := range favorites {
		ids = append(ids, fav.SpotID)
	}
	spots, err := r.spots.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]FavoriteSpotItem, 0, len(favorites))
	for _, fav := range favorites {
		item := FavoriteSpotItem{SpotID: fav.SpotID, AddedAt: fav.AddedAt}
		if raw, ok := spots[fav.SpotID]; ok {
			item.Spot = spotFromItem(raw)
		}
		out = append(out, item)
	}
	return out, nil
}

func favoriteKey(userID, spotID string) store.PK {
	return store.PK{
		"userId": &types.AttributeValueMemberS{Value: userID},
		"spotId": &types.AttributeValueMemberS{Value: spotID},
	}
}

func spotKey(spotID string) store.PK {
	return store.PK{
		"id": &types.AttributeValueMemberS{Value: spotID},
	}
}
