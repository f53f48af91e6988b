package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

var (
	// ErrItemNotFound is returned by GetItem when the key does not exist.
	ErrItemNotFound = errors.New("item not found")
	// ErrConditionFailed is returned when a condition expression rejects a write.
	ErrConditionFailed = errors.New("condition check failed")
)

// DynamoAPI is the subset of *dynamodb.Client the services use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type DynamoService struct {
	Client DynamoAPI
}

// InitializeDynamoDBClient initializes the DynamoDB client. endpoint is
// optional and points the client at DynamoDB Local.
func InitializeDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// PutItem marshals item and writes it unconditionally.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      marshaledItem,
	})
	if err != nil {
		log.Error().Err(err).Str("table", tableName).Msg("❌ Failed to insert item")
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// PutItemIfNotExists writes item only when no item with the same primary
// key exists. Returns ErrConditionFailed otherwise.
func (ds *DynamoService) PutItemIfNotExists(ctx context.Context, tableName, keyAttribute string, item interface{}) error {
	return ds.PutItemIf(ctx, tableName, item, "attribute_not_exists(#pk)", map[string]string{"#pk": keyAttribute})
}

// PutItemIf writes item when condition holds. Returns ErrConditionFailed otherwise.
func (ds *DynamoService) PutItemIf(ctx context.Context, tableName string, item interface{}, condition string, names map[string]string) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                &tableName,
		Item:                     marshaledItem,
		ConditionExpression:      aws.String(condition),
		ExpressionAttributeNames: names,
	})
	if isConditionalCheckFailed(err) {
		return ErrConditionFailed
	}
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// GetItem retrieves an item from DynamoDB
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &tableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}

	if output.Item == nil {
		return nil, ErrItemNotFound
	}

	return output.Item, nil
}

// GetInto fetches an item and unmarshals it into out.
func (ds *DynamoService) GetInto(ctx context.Context, tableName string, key map[string]types.AttributeValue, out interface{}) error {
	item, err := ds.GetItem(ctx, tableName, key)
	if err != nil {
		return err
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from table '%s': %w", tableName, err)
	}
	return nil
}

// UpdateRequest describes a single-item update. Condition is optional.
type UpdateRequest struct {
	Table      string
	Key        map[string]types.AttributeValue
	Update     string
	Condition  string
	Names      map[string]string
	Values     map[string]types.AttributeValue
	ReturnNone bool
}

// UpdateItem applies an update expression atomically and returns the new
// attributes. A failed condition is reported as ErrConditionFailed.
func (ds *DynamoService) UpdateItem(ctx context.Context, req UpdateRequest) (map[string]types.AttributeValue, error) {
	if len(req.Key) == 0 {
		return nil, errors.New("update failed: key cannot be empty")
	}
	if req.Update == "" {
		return nil, errors.New("update failed: updateExpression cannot be empty")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(req.Table),
		Key:              req.Key,
		UpdateExpression: aws.String(req.Update),
		ReturnValues:     types.ReturnValueAllNew,
	}
	if req.ReturnNone {
		input.ReturnValues = types.ReturnValueNone
	}
	if req.Condition != "" {
		input.ConditionExpression = aws.String(req.Condition)
	}
	if len(req.Names) > 0 {
		input.ExpressionAttributeNames = req.Names
	}
	if len(req.Values) > 0 {
		input.ExpressionAttributeValues = req.Values
	}

	output, err := ds.Client.UpdateItem(ctx, input)
	if isConditionalCheckFailed(err) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		log.Error().Err(err).Str("table", req.Table).Str("update", req.Update).Msg("❌ Failed to update item")
		return nil, fmt.Errorf("failed to update item in table '%s': %w", req.Table, err)
	}

	if output.Attributes == nil {
		return map[string]types.AttributeValue{}, nil
	}
	return output.Attributes, nil
}

// DeleteItem removes an item. With a condition, a mismatch returns ErrConditionFailed.
func (ds *DynamoService) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, condition string, names map[string]string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: &tableName,
		Key:       key,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
		input.ExpressionAttributeNames = names
	}

	_, err := ds.Client.DeleteItem(ctx, input)
	if isConditionalCheckFailed(err) {
		return ErrConditionFailed
	}
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// QueryAll runs input and follows LastEvaluatedKey until every page is read.
func (ds *DynamoService) QueryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query table '%s': %w", aws.ToString(input.TableName), err)
		}
		items = append(items, output.Items...)

		if len(output.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

// ScanAll reads a whole (small) table.
func (ds *DynamoService) ScanAll(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", aws.ToString(input.TableName), err)
		}
		items = append(items, output.Items...)

		if len(output.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

const (
	maxBatchGetSize   = 100
	maxBatchWriteSize = 25
	maxBatchAttempts  = 5
)

// BatchGetItems fetches keys in chunks of 100, re-requesting unprocessed keys.
func (ds *DynamoService) BatchGetItems(ctx context.Context, tableName string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	for i := 0; i < len(keys); i += maxBatchGetSize {
		end := i + maxBatchGetSize
		if end > len(keys) {
			end = len(keys)
		}

		request := map[string]types.KeysAndAttributes{
			tableName: {Keys: keys[i:end]},
		}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == maxBatchAttempts {
				return nil, fmt.Errorf("batch get on table '%s': unprocessed keys after %d attempts", tableName, maxBatchAttempts)
			}
			output, err := ds.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get items from table '%s': %w", tableName, err)
			}
			items = append(items, output.Responses[tableName]...)
			request = output.UnprocessedKeys
		}
	}

	return items, nil
}

// BatchWriteItems writes multiple items to DynamoDB in batches
func (ds *DynamoService) BatchWriteItems(ctx context.Context, tableName string, writeRequests []types.WriteRequest) error {
	for i := 0; i < len(writeRequests); i += maxBatchWriteSize {
		end := i + maxBatchWriteSize
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		request := map[string][]types.WriteRequest{
			tableName: writeRequests[i:end],
		}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == maxBatchAttempts {
				return fmt.Errorf("batch write on table '%s': unprocessed items after %d attempts", tableName, maxBatchAttempts)
			}
			output, err := ds.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: request})
			if err != nil {
				return fmt.Errorf("failed to batch write items to table '%s': %w", tableName, err)
			}
			request = output.UnprocessedItems
		}
	}

	return nil
}
