// Package stream provides a DynamoDB Streams handler that keeps spot
// aggregates converged with the reviews table.
//
// A review save updates its spot's aggregates synchronously, but the two
// writes are not one transaction: under heavy contention the aggregate step
// can exhaust its retries after the review row is already durable. This
// handler is the out-of-band reconciliation pass: it watches review inserts
// and rebuilds the touched spots' aggregates from scratch, which is
// idempotent and therefore safe to run for spots that never drifted.
package stream

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/tastetrail/tastetrail/review"
)

// Reconciler rebuilds a spot's aggregates from its reviews.
// *review.Repository implements it.
type Reconciler interface {
	RecomputeAggregates(ctx context.Context, spotID string) error
}

// Handler processes reviews-table stream events.
type Handler struct {
	reconciler Reconciler
	logger     *zap.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(rec Reconciler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		reconciler: rec,
		logger:     logger,
	}
}

// HandleReviewInserts reconciles the spot of every review inserted in the
// batch, once per distinct spot. Designed to be used as an AWS Lambda
// handler on the reviews table's stream.
func (h *Handler) HandleReviewInserts(ctx context.Context, event events.DynamoDBEvent) error {
	seen := make(map[string]struct{})
	for _, record := range event.Records {
		if record.EventName != "INSERT" {
			continue
		}
		spotID := getStringAttr(record.Change.NewImage, "spotId")
		if spotID == "" {
			h.logger.Warn("review insert without spotId, skipping",
				zap.String("eventID", record.EventID),
			)
			continue
		}
		if _, ok := seen[spotID]; ok {
			continue
		}
		seen[spotID] = struct{}{}

		if err := h.reconciler.RecomputeAggregates(ctx, spotID); err != nil {
			if errors.Is(err, review.ErrSpotNotFound) {
				// The spot was removed after the review landed; nothing
				// left to reconcile and retrying cannot help.
				h.logger.Warn("spot gone, skipping reconcile",
					zap.String("spotId", spotID),
				)
				continue
			}
			h.logger.Error("failed to reconcile spot aggregates",
				zap.String("spotId", spotID),
				zap.Error(err),
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok {
		return v.String()
	}
	return ""
}
