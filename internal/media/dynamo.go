package media

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepository.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoRepository stores media records in a DynamoDB table keyed by "id",
// with a global secondary index on "folder" for filtered listing.
type DynamoRepository struct {
	client      DynamoAPI
	table       string
	folderIndex string
}

// NewDynamoRepository creates a DynamoRepository over table.
func NewDynamoRepository(client DynamoAPI, table, folderIndex string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table, folderIndex: folderIndex}
}

// Insert writes rec. The condition keeps an id collision from overwriting a row.
func (r *DynamoRepository) Insert(ctx context.Context, rec Record) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal media record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("put media record: %w", err)
	}
	return nil
}

// List queries the folder index, or scans the table when folder is empty.
// Table pages are followed to the end; order is whatever DynamoDB returns.
func (r *DynamoRepository) List(ctx context.Context, folder string) ([]Record, error) {
	var (
		records []Record
		start   map[string]types.AttributeValue
	)

	for {
		var (
			items []map[string]types.AttributeValue
			next  map[string]types.AttributeValue
		)

		if folder == "" {
			out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
				TableName:         aws.String(r.table),
				ExclusiveStartKey: start,
			})
			if err != nil {
				return nil, fmt.Errorf("scan media records: %w", err)
			}
			items, next = out.Items, out.LastEvaluatedKey
		} else {
			out, err := r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:              aws.String(r.table),
				IndexName:              aws.String(r.folderIndex),
				KeyConditionExpression: aws.String("folder = :folder"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":folder": &types.AttributeValueMemberS{Value: folder},
				},
				ExclusiveStartKey: start,
			})
			if err != nil {
				return nil, fmt.Errorf("query media records: %w", err)
			}
			items, next = out.Items, out.LastEvaluatedKey
		}

		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal media records: %w", err)
		}
		records = append(records, page...)

		if len(next) == 0 {
			return records, nil
		}
		start = next
	}
}
