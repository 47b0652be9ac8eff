package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// Key attribute names.
const (
	attrSelectionID = "selectionId"
	attrEventID     = "eventId"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore implements SelectionStore using AWS DynamoDB.
type DynamoStore struct {
	client DynamoAPI
	tables Tables
}

// Compile-time interface check.
var _ SelectionStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore over the given tables.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoAPI, tables Tables) *DynamoStore {
	return &DynamoStore{
		client: client,
		tables: tables,
	}
}

// --- Internal helpers ---

// putItem marshals a record and writes it to table. A non-empty condition is
// attached as the ConditionExpression.
func (s *DynamoStore) putItem(ctx context.Context, table string, data interface{}, condition string) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("PutItem table=%s: %w", table, err)
	}
	return nil
}

func stringKey(attr, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attr: &types.AttributeValueMemberS{Value: value},
	}
}

// --- Selection operations ---

func (s *DynamoStore) PutSelection(ctx context.Context, selection *Selection) error {
	if selection.SelectedImages == nil {
		selection.SelectedImages = []string{}
	}

	cond := "attribute_not_exists(" + attrSelectionID + ")"
	if err := s.putItem(ctx, s.tables.Selection, selection, cond); err != nil {
		return fmt.Errorf("put selection %s: %w", selection.SelectionID, err)
	}

	log.Debug().
		Str("selectionId", selection.SelectionID).
		Str("eventId", selection.EventID).
		Str("table", s.tables.Selection).
		Msg("Selection persisted to DynamoDB")
	return nil
}

func (s *DynamoStore) GetSelection(ctx context.Context, selectionID string) (*Selection, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.Selection),
		Key:       stringKey(attrSelectionID, selectionID),
	})
	if err != nil {
		return nil, fmt.Errorf("get selection %s: %w", selectionID, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var selection Selection
	if err := attributevalue.UnmarshalMap(result.Item, &selection); err != nil {
		return nil, fmt.Errorf("unmarshal selection %s: %w", selectionID, err)
	}
	return &selection, nil
}

// --- Item operations ---

func (s *DynamoStore) PutSelectionItem(ctx context.Context, item *SelectionItem) error {
	if err := s.putItem(ctx, s.tables.SelectionItem, item, ""); err != nil {
		return fmt.Errorf("put selection item %s: %w", item.ImageName, err)
	}

	log.Debug().
		Str("imageName", item.ImageName).
		Str("selectionId", item.SelectionID).
		Bool("hasUrl", item.AccessURL != nil).
		Msg("Selection item persisted")
	return nil
}

// --- Event operations ---

func (s *DynamoStore) MarkSelectionAvailable(ctx context.Context, eventID string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tables.Events),
		Key:                 stringKey(attrEventID, eventID),
		UpdateExpression:    aws.String("SET #a = :a"),
		ConditionExpression: aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#a": "selectionAvailable",
			"#k": attrEventID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("update event %s: %w", eventID, ErrEventNotFound)
		}
		return fmt.Errorf("update event %s: %w", eventID, err)
	}

	log.Debug().Str("eventId", eventID).Str("table", s.tables.Events).Msg("Event marked selection-available")
	return nil
}
