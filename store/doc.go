// Package store provides the generic DynamoDB access layer for tastetrail.
//
// The package is deliberately thin: it defines the [Client] interface (the
// subset of the DynamoDB API the library consumes, satisfied by
// *dynamodb.Client), the [Config] carrying table and index names, and the
// [Resolver], which fetches documents by id in bounded batches while
// retrying partial failures.
//
// Domain logic lives in the review package; nothing here knows what a
// review or a spot is.
package store
