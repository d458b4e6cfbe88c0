// Package review persists spot reviews in DynamoDB and maintains per-spot
// rating aggregates under concurrent writers.
//
// # Write path
//
// [Repository.Save] persists the review item unconditionally, then folds its
// four rating dimensions into the parent spot's running count/sum/average
// fields. The aggregate update is a read-modify-write cycle guarded by a
// conditional write on the reviewCount attribute: concurrent writers to the
// same spot race, at most one commits per read generation, and losers retry
// with a fresh read up to a bounded attempt limit. The two writes are not one
// transaction: a review can be durably saved while its aggregate
// contribution is lost, surfaced as [ErrAggregateExhausted] and repaired
// out-of-band (see the stream package).
//
// # Read path
//
// Joined views ([Repository.GetRecentWithSpot],
// [Repository.GetFavoritesWithSpot]) fetch the primary rows, then resolve the
// related spot documents through a batched lookup. The join is best-effort: a
// spot that cannot be resolved yields a nil Spot on the view item, never an
// error.
//
// # Numeric rules
//
// Rating dimensions and derived averages are stored rounded to two decimal
// places, halves away from zero. Running sums are stored at full round-trip
// precision so rounding error never compounds. Timestamps are epoch
// milliseconds, UTC.
//
// # Errors
//
//   - [ErrSpotNotFound] - the aggregate target spot does not exist
//   - [ErrAggregateExhausted] - the conditional write lost every retry
package review
