package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ScanAll reads every item in a table, paginating until exhausted.
// O(table size); callers own deciding whether that is acceptable.
func ScanAll(ctx context.Context, client Client, table string) ([]Item, error) {
	var items []Item
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
		}
	}
	return items, nil
}
