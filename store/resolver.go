package store

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Resolver fetches documents from a single table by their "id" attribute,
// batching requests and retrying the unprocessed subset until the store
// stops reporting one.
type Resolver struct {
	client    Client
	table     string
	batchSize int
	maxRounds int
	logger    *zap.Logger
}

// NewResolver creates a Resolver for the given table. BatchSize and
// MaxBatchRounds come from cfg; a nil logger falls back to zap.NewNop.
func NewResolver(client Client, table string, cfg Config, logger *zap.Logger) *Resolver {
	cfg.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:    client,
		table:     table,
		batchSize: cfg.BatchSize,
		maxRounds: cfg.MaxBatchRounds,
		logger:    logger,
	}
}

// Resolve fetches the documents for the given ids, keyed by their own "id"
// attribute. Input ids are trimmed and deduplicated; an empty set returns an
// empty map without touching the store. Ids the store does not hold are
// simply absent from the result; a missing document is the caller's
// join-absent case, never an error.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]Item, error) {
	keys := dedupeIDs(ids)
	result := make(map[string]Item, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	for start := 0; start < len(keys); start += r.batchSize {
		end := start + r.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := r.resolveBatch(ctx, keys[start:end], result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// resolveBatch issues batch-gets for one chunk of ids, reissuing unprocessed
// keys until the store drains them or the round cap trips.
func (r *Resolver) resolveBatch(ctx context.Context, ids []string, result map[string]Item) error {
	pending := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		pending = append(pending, map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		})
	}

	for round := 0; len(pending) > 0; round++ {
		if round >= r.maxRounds {
			r.logger.Warn("giving up on unprocessed batch keys",
				zap.String("table", r.table),
				zap.Int("remaining", len(pending)),
				zap.Int("rounds", round),
			)
			return nil
		}

		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.table: {Keys: pending},
			},
		})
		if err != nil {
			return err
		}

		for _, raw := range out.Responses[r.table] {
			if v, ok := raw["id"].(*types.AttributeValueMemberS); ok {
				result[v.Value] = Item(raw)
			}
		}

		pending = nil
		if ka, ok := out.UnprocessedKeys[r.table]; ok {
			pending = ka.Keys
		}
	}

	return nil
}

// dedupeIDs trims and deduplicates ids, preserving first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	return keys
}
