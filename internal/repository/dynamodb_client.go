package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"khata-advisor/internal/domain"
)

const (
	skPrefixTurn = "TURN#"
	skMeta       = "META#"
	ttlDuration  = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client appends answered chat turns to a DynamoDB table. The table is an
// audit trail only; nothing reads it on the request path.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

// convPK returns the DynamoDB partition key for a conversation.
func convPK(conversationID string) string {
	return "CONV#" + conversationID
}

// turnSK returns the sort key for a turn recorded at ts.
func turnSK(ts time.Time) string {
	return skPrefixTurn + ts.UTC().Format(time.RFC3339Nano)
}

func ttlValue(from time.Time) int64 {
	return from.Add(ttlDuration).Unix()
}

// SaveTurn writes the turn item and bumps the conversation's turn counter in
// one transaction.
func (c *Client) SaveTurn(ctx context.Context, turn domain.Turn) error {
	if strings.TrimSpace(turn.ConversationID) == "" {
		return errors.New("repository: SaveTurn: conversation ID is required")
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = c.now()
	}

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                turnItem(turn),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Update: metaUpdate(c.tableName, turn),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SaveTurn: %w", err)
	}
	return nil
}

func turnItem(turn domain.Turn) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":               &types.AttributeValueMemberS{Value: convPK(turn.ConversationID)},
		"SK":               &types.AttributeValueMemberS{Value: turnSK(turn.CreatedAt)},
		"conversationId":   &types.AttributeValueMemberS{Value: turn.ConversationID},
		"correlationId":    &types.AttributeValueMemberS{Value: turn.CorrelationID},
		"userMessage":      &types.AttributeValueMemberS{Value: turn.UserMessage},
		"reply":            &types.AttributeValueMemberS{Value: turn.Reply},
		"model":            &types.AttributeValueMemberS{Value: turn.Model},
		"transactionCount": &types.AttributeValueMemberN{Value: strconv.Itoa(turn.TransactionCount)},
		"ttl":              &types.AttributeValueMemberN{Value: strconv.FormatInt(ttlValue(turn.CreatedAt), 10)},
	}
}

func metaUpdate(table string, turn domain.Turn) *types.Update {
	return &types.Update{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: convPK(turn.ConversationID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		UpdateExpression: aws.String("ADD turns :one SET lastActivity = :ts, #ttl = :ttl"),
		ExpressionAttributeNames: map[string]string{
			"#ttl": "ttl",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":ts":  &types.AttributeValueMemberS{Value: turn.CreatedAt.UTC().Format(time.RFC3339)},
			":ttl": &types.AttributeValueMemberN{Value: strconv.FormatInt(ttlValue(turn.CreatedAt), 10)},
		},
	}
}
