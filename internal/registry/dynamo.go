package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Dynamo is a Registry backed by a DynamoDB table with a string
// partition key named "id".
type Dynamo struct {
	client *dynamodb.Client
	table  string
}

// NewDynamo creates a DynamoDB-backed registry for the given table and
// region, using the default credential chain.
func NewDynamo(ctx context.Context, table, region string) (*Dynamo, error) {
	if table == "" || region == "" {
		return nil, errors.New("registry: table name and region are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("registry: load aws config: %w", err)
	}

	return &Dynamo{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  table,
	}, nil
}

// NewDynamoWithClient creates a registry over an existing client.
func NewDynamoWithClient(client *dynamodb.Client, table string) *Dynamo {
	return &Dynamo{client: client, table: table}
}

// Add puts the id unless it already exists. The conditional-check
// failure raised for duplicates is swallowed so Add stays idempotent.
func (d *Dynamo) Add(ctx context.Context, groupID string) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: groupID},
		},
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil
		}
		return fmt.Errorf("add group %q: %w", groupID, err)
	}
	return nil
}

// Remove deletes the id. DynamoDB deletes are idempotent; a missing
// item is not an error.
func (d *Dynamo) Remove(ctx context.Context, groupID string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: groupID},
		},
	})
	if err != nil {
		return fmt.Errorf("remove group %q: %w", groupID, err)
	}
	return nil
}

// ListAll scans the table and returns every id.
func (d *Dynamo) ListAll(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)

	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan groups: %w", err)
		}
		for _, item := range page.Items {
			if attr, ok := item["id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, attr.Value)
			}
		}
	}
	return ids, nil
}
