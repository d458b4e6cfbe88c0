package review

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/tastetrail/tastetrail/internal/num"
	"github.com/tastetrail/tastetrail/store"
)

// aggregateState is the working copy of a spot's counted aggregate fields,
// read under strong consistency at the top of each attempt.
type aggregateState struct {
	count          int64
	countExists    bool
	ratingSum      float64
	tasteSum       float64
	environmentSum float64
	serviceSum     float64
}

// applyReviewToSpot folds one review into its spot's aggregates. The deltas
// are the review's rating values as stored, so the sums and the review rows
// always agree at two decimal places.
func (r *Repository) applyReviewToSpot(ctx context.Context, rev *Review) error {
	return r.mutateSpotAggregates(ctx, rev.SpotID, func(cur aggregateState) (aggregateState, time.Time) {
		next := aggregateState{
			count:          cur.count + 1,
			ratingSum:      cur.ratingSum + num.Round2(rev.Rating),
			tasteSum:       cur.tasteSum + num.Round2(rev.TasteRating),
			environmentSum: cur.environmentSum + num.Round2(rev.EnvironmentRating),
			serviceSum:     cur.serviceSum + num.Round2(rev.ServiceRating),
		}
		return next, rev.CreatedAt
	})
}

// RecomputeAggregates rebuilds a spot's aggregate fields from its reviews.
// This is the repair path for spots whose synchronous update surfaced
// ErrAggregateExhausted: the rebuild is idempotent, so running it for a spot
// that never drifted is harmless. The source query runs against a GSI and is
// eventually consistent; a rebuild racing a fresh save converges on the next
// run.
func (r *Repository) RecomputeAggregates(ctx context.Context, spotID string) error {
	reviews, err := r.GetBySpot(ctx, spotID)
	if err != nil {
		return err
	}

	var rebuilt aggregateState
	var lastReviewAt time.Time
	for _, rev := range reviews {
		rebuilt.count++
		rebuilt.ratingSum += num.Round2(rev.Rating)
		rebuilt.tasteSum += num.Round2(rev.TasteRating)
		rebuilt.environmentSum += num.Round2(rev.EnvironmentRating)
		rebuilt.serviceSum += num.Round2(rev.ServiceRating)
		if rev.CreatedAt.After(lastReviewAt) {
			lastReviewAt = rev.CreatedAt
		}
	}

	return r.mutateSpotAggregates(ctx, spotID, func(aggregateState) (aggregateState, time.Time) {
		return rebuilt, lastReviewAt
	})
}

// mutateSpotAggregates runs the optimistic-concurrency loop: consistent
// read, compute, conditional write keyed on the reviewCount just read. A
// lost race retries from a fresh read; every other error propagates
// unchanged. Correctness under concurrent writers comes entirely from the
// store's conditional write; no in-process lock is held.
func (r *Repository) mutateSpotAggregates(ctx context.Context, spotID string, apply func(aggregateState) (aggregateState, time.Time)) error {
	for attempt := 1; attempt <= r.cfg.MaxUpdateAttempts; attempt++ {
		cur, err := r.readAggregateState(ctx, spotID)
		if err != nil {
			return err
		}

		next, lastReviewAt := apply(cur)
		err = r.writeAggregateState(ctx, spotID, cur, next, lastReviewAt)
		if err == nil {
			return nil
		}

		var condErr *types.ConditionalCheckFailedException
		if !errors.As(err, &condErr) {
			return err
		}
		r.logger.Warn("spot aggregate write lost a race, retrying",
			zap.String("spotId", spotID),
			zap.Int("attempt", attempt),
		)
	}
	return ErrAggregateExhausted
}

// readAggregateState reads the spot's current aggregates under strong
// consistency. A missing spot fails immediately; spot creation is owned by
// another system and absence is not retryable.
func (r *Repository) readAggregateState(ctx context.Context, spotID string) (aggregateState, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.cfg.SpotsTable),
		Key:            spotKey(spotID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return aggregateState{}, err
	}
	if len(out.Item) == 0 {
		return aggregateState{}, ErrSpotNotFound
	}

	var cur aggregateState
	cur.count, cur.countExists = intAttr(store.Item(out.Item), "reviewCount")
	cur.ratingSum, _ = floatAttr(store.Item(out.Item), "ratingSum")
	cur.tasteSum, _ = floatAttr(store.Item(out.Item), "tasteSum")
	cur.environmentSum, _ = floatAttr(store.Item(out.Item), "environmentSum")
	cur.serviceSum, _ = floatAttr(store.Item(out.Item), "serviceSum")
	return cur, nil
}

// writeAggregateState issues the conditional update. The precondition pins
// reviewCount to the value just read (or to still-absent), so any
// interleaved writer fails the check instead of being silently overwritten.
// Sums go to storage at full precision; only the derived averages are
// rounded.
func (r *Repository) writeAggregateState(ctx context.Context, spotID string, read, next aggregateState, lastReviewAt time.Time) error {
	sets := []string{
		"reviewCount = :reviewCount",
		"ratingSum = :ratingSum",
		"tasteSum = :tasteSum",
		"environmentSum = :environmentSum",
		"serviceSum = :serviceSum",
		"rating = :rating",
		"tasteAvg = :tasteAvg",
		"environmentAvg = :environmentAvg",
		"serviceAvg = :serviceAvg",
	}
	values := map[string]types.AttributeValue{
		":reviewCount":    &types.AttributeValueMemberN{Value: strconv.FormatInt(next.count, 10)},
		":ratingSum":      &types.AttributeValueMemberN{Value: num.FormatExact(next.ratingSum)},
		":tasteSum":       &types.AttributeValueMemberN{Value: num.FormatExact(next.tasteSum)},
		":environmentSum": &types.AttributeValueMemberN{Value: num.FormatExact(next.environmentSum)},
		":serviceSum":     &types.AttributeValueMemberN{Value: num.FormatExact(next.serviceSum)},
		":rating":         &types.AttributeValueMemberN{Value: num.Format2(average(next.ratingSum, next.count))},
		":tasteAvg":       &types.AttributeValueMemberN{Value: num.Format2(average(next.tasteSum, next.count))},
		":environmentAvg": &types.AttributeValueMemberN{Value: num.Format2(average(next.environmentSum, next.count))},
		":serviceAvg":     &types.AttributeValueMemberN{Value: num.Format2(average(next.serviceSum, next.count))},
	}
	if !lastReviewAt.IsZero() {
		sets = append(sets, "lastReviewAt = :lastReviewAt")
		values[":lastReviewAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(lastReviewAt.UnixMilli(), 10)}
	}

	condition := "attribute_not_exists(reviewCount)"
	if read.countExists {
		condition = "reviewCount = :readCount"
		values[":readCount"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(read.count, 10)}
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.cfg.SpotsTable),
		Key:                       spotKey(spotID),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	return err
}

func average(sum float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
