package review

import (
	"time"

	"github.com/tastetrail/tastetrail/store"
)

// Review is a user-submitted review of a spot. Reviews are immutable once
// created; there are no edit or delete operations.
type Review struct {
	// ID is the opaque unique review id. Save assigns one when empty.
	ID string

	// SpotID is the parent spot's id.
	SpotID string

	// UserID is the author's id.
	UserID string

	// Rating is the overall rating in [0,5], stored at two decimal places.
	Rating float64

	// TasteRating, EnvironmentRating and ServiceRating are the dimension
	// ratings in [0,5]. Older records only stored the overall rating; on
	// read, an absent dimension falls back to Rating.
	TasteRating       float64
	EnvironmentRating float64
	ServiceRating     float64

	// PricePerPerson is the spend per person, stored at two decimal places.
	PricePerPerson float64

	// Text is the free-form review body.
	Text string

	// PhotoURLs are optional photo locations, omitted from storage when empty.
	PhotoURLs []string

	// CreatedAt is assigned once at creation, millisecond precision, UTC.
	CreatedAt time.Time
}

// Spot is the parent document a review attaches to. Spots are owned by a
// separate system; this library only maintains the aggregate fields below
// and passes everything else through in Raw.
type Spot struct {
	ID   string
	Name string

	// ReviewCount is the number of review saves that committed an aggregate
	// update for this spot.
	ReviewCount int64

	// Running sums per rating dimension, full precision.
	RatingSum      float64
	TasteSum       float64
	EnvironmentSum float64
	ServiceSum     float64

	// Derived averages, rounded to two decimal places.
	Rating         float64
	TasteAvg       float64
	EnvironmentAvg float64
	ServiceAvg     float64

	// LastReviewAt is the creation time of the newest counted review.
	LastReviewAt time.Time

	// Raw is the full spot document as stored.
	Raw store.Item
}

// Favorite marks a spot as favorited by a user. The (UserID, SpotID) pair is
// the identity; re-adding resets AddedAt.
type Favorite struct {
	UserID  string
	SpotID  string
	AddedAt time.Time
}

// RecentReviewItem is a review joined with its spot document. Spot is nil
// when the document could not be resolved.
type RecentReviewItem struct {
	Review Review
	Spot   *Spot
}

// FavoriteSpotItem is a favorite joined with its spot document. Spot is nil
// when the document could not be resolved.
type FavoriteSpotItem struct {
	SpotID  string
	AddedAt time.Time
	Spot    *Spot
}
