package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items in memory and pages results one item at a time.
type fakeDynamo struct {
	items   []map[string]types.AttributeValue
	queries []*dynamodb.QueryInput
	scans   int
	putErr  error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	want := in.ExpressionAttributeValues[":folder"].(*types.AttributeValueMemberS).Value

	var matched []map[string]types.AttributeValue
	for _, it := range f.items {
		if it["folder"].(*types.AttributeValueMemberS).Value == want {
			matched = append(matched, it)
		}
	}
	items, next := page(matched, in.ExclusiveStartKey)
	return &dynamodb.QueryOutput{Items: items, LastEvaluatedKey: next}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans++
	items, next := page(f.items, in.ExclusiveStartKey)
	return &dynamodb.ScanOutput{Items: items, LastEvaluatedKey: next}, nil
}

func page(all []map[string]types.AttributeValue, start map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	i := 0
	if start != nil {
		last := start["id"].(*types.AttributeValueMemberS).Value
		for j, it := range all {
			if it["id"].(*types.AttributeValueMemberS).Value == last {
				i = j + 1
				break
			}
		}
	}
	if i >= len(all) {
		return nil, nil
	}
	var next map[string]types.AttributeValue
	if i+1 < len(all) {
		next = map[string]types.AttributeValue{"id": all[i]["id"]}
	}
	return all[i : i+1], next
}

func TestDynamoRepository_InsertAndList(t *testing.T) {
	ctx := context.Background()
	fake := &fakeDynamo{}
	repo := NewDynamoRepository(fake, "lodge-media", "folder-index")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []Record{
		{ID: "a", URL: "https://m/gallery/1.jpg", Folder: "gallery", UploadedAt: at},
		{ID: "b", URL: "https://m/rooms/2.jpg", Folder: "rooms", UploadedAt: at},
		{ID: "c", URL: "https://m/gallery/3.jpg", Folder: "gallery", UploadedAt: at},
	}
	for _, r := range recs {
		require.NoError(t, repo.Insert(ctx, r))
	}

	var stored Record
	require.NoError(t, attributevalue.UnmarshalMap(fake.items[0], &stored))
	assert.Equal(t, recs[0], stored)

	gallery, err := repo.List(ctx, "gallery")
	require.NoError(t, err)
	assert.Equal(t, []Record{recs[0], recs[2]}, gallery)
	require.NotEmpty(t, fake.queries)
	assert.Equal(t, "folder-index", aws.ToString(fake.queries[0].IndexName))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, recs, all)
	assert.Equal(t, 3, fake.scans, "one scan per page")
}

func TestDynamoRepository_PutError(t *testing.T) {
	fake := &fakeDynamo{putErr: errors.New("ResourceNotFoundException")}
	repo := NewDynamoRepository(fake, "missing", "folder-index")

	err := repo.Insert(context.Background(), Record{ID: "a", URL: "u", Folder: "f"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fake.putErr)
}

func TestDynamoRepository_WithService(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewDynamoRepository(&fakeDynamo{}, "lodge-media", "folder-index"), 0, 0)

	rec, err := svc.Register(ctx, "https://m/gallery/9.jpg", "gallery")
	require.NoError(t, err)

	recs, err := svc.List(ctx, "gallery")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.URL, recs[0].URL)
	assert.True(t, rec.UploadedAt.Equal(recs[0].UploadedAt))
}
