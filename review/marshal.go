package review

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tastetrail/tastetrail/internal/num"
	"github.com/tastetrail/tastetrail/store"
)

// reviewItem serializes a review for storage. Rating dimensions and the
// price are rounded to two decimal places; the timestamp is epoch
// milliseconds; photoUrls is a string set omitted when empty.
func reviewItem(rev *Review) store.Item {
	item := store.Item{
		"id":                &types.AttributeValueMemberS{Value: rev.ID},
		"spotId":            &types.AttributeValueMemberS{Value: rev.SpotID},
		"userId":            &types.AttributeValueMemberS{Value: rev.UserID},
		"rating":            &types.AttributeValueMemberN{Value: num.Format2(rev.Rating)},
		"tasteRating":       &types.AttributeValueMemberN{Value: num.Format2(rev.TasteRating)},
		"environmentRating": &types.AttributeValueMemberN{Value: num.Format2(rev.EnvironmentRating)},
		"serviceRating":     &types.AttributeValueMemberN{Value: num.Format2(rev.ServiceRating)},
		"pricePerPerson":    &types.AttributeValueMemberN{Value: num.Format2(rev.PricePerPerson)},
		"text":              &types.AttributeValueMemberS{Value: rev.Text},
		"createdAt":         &types.AttributeValueMemberN{Value: strconv.FormatInt(rev.CreatedAt.UnixMilli(), 10)},
	}
	if len(rev.PhotoURLs) > 0 {
		item["photoUrls"] = &types.AttributeValueMemberSS{Value: rev.PhotoURLs}
	}
	return item
}

// reviewFromItem deserializes a stored review. Dimension ratings each
// independently fall back to the overall rating when absent; older records
// only stored the overall value, and a zero default would corrupt them.
func reviewFromItem(item store.Item) Review {
	rev := Review{
		ID:     stringAttr(item, "id"),
		SpotID: stringAttr(item, "spotId"),
		UserID: stringAttr(item, "userId"),
		Text:   stringAttr(item, "text"),
	}
	rev.Rating, _ = floatAttr(item, "rating")
	rev.TasteRating = floatAttrOr(item, "tasteRating", rev.Rating)
	rev.EnvironmentRating = floatAttrOr(item, "environmentRating", rev.Rating)
	rev.ServiceRating = floatAttrOr(item, "serviceRating", rev.Rating)
	rev.PricePerPerson, _ = floatAttr(item, "pricePerPerson")
	rev.CreatedAt = millisAttr(item, "createdAt")
	if urls, ok := item["photoUrls"]; ok {
		_ = attributevalue.Unmarshal(urls, &rev.PhotoURLs)
	}
	return rev
}

// spotFromItem deserializes a spot document, defaulting absent aggregate
// fields to zero and keeping the raw item for pass-through fields.
func spotFromItem(item store.Item) *Spot {
	s := &Spot{
		ID:   stringAttr(item, "id"),
		Name: stringAttr(item, "name"),
		Raw:  item,
	}
	s.ReviewCount, _ = intAttr(item, "reviewCount")
	s.RatingSum, _ = floatAttr(item, "ratingSum")
	s.TasteSum, _ = floatAttr(item, "tasteSum")
	s.EnvironmentSum, _ = floatAttr(item, "environmentSum")
	s.ServiceSum, _ = floatAttr(item, "serviceSum")
	s.Rating, _ = floatAttr(item, "rating")
	s.TasteAvg, _ = floatAttr(item, "tasteAvg")
	s.EnvironmentAvg, _ = floatAttr(item, "environmentAvg")
	s.ServiceAvg, _ = floatAttr(item, "serviceAvg")
	s.LastReviewAt = millisAttr(item, "lastReviewAt")
	return s
}

// favoriteFromItem deserializes a favorite row. Rows missing the spot key
// are malformed and reported unusable rather than surfaced half-filled.
func favoriteFromItem(item store.Item) (Favorite, bool) {
	spotID := stringAttr(item, "spotId")
	if spotID == "" {
		return Favorite{}, false
	}
	return Favorite{
		UserID:  stringAttr(item, "userId"),
		SpotID:  spotID,
		AddedAt: millisAttr(item, "createdAt"),
	}, true
}

func stringAttr(item store.Item, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func floatAttr(item store.Item, name string) (float64, bool) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	f, err := num.Parse(v.Value)
	if err != nil {
		return 0, false
	}
	return f, true
}

func floatAttrOr(item store.Item, name string, fallback float64) float64 {
	if f, ok := floatAttr(item, name); ok {
		return f
	}
	return fallback
}

func intAttr(item store.Item, name string) (int64, bool) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// millisAttr reads an epoch-millisecond timestamp, zero time when absent.
func millisAttr(item store.Item, name string) time.Time {
	ms, ok := intAttr(item, name)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
