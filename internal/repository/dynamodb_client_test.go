package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"khata-advisor/internal/domain"
)

type fakeDynamo struct {
	txErr       error
	lastTxInput *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "chat-log")
	require.NoError(t, err)
	return c
}

func strVal(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return v.Value
}

func numVal(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberN)
	require.True(t, ok, "attribute %q is not a number", key)
	return v.Value
}

func sampleTurn() domain.Turn {
	return domain.Turn{
		ConversationID:   "conv-1",
		CorrelationID:    "corr-1",
		UserMessage:      "How much did I spend on food?",
		Reply:            "You spent ₹40 on Food.",
		Model:            "llama-3.1-8b-instant",
		TransactionCount: 2,
		CreatedAt:        time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestSaveTurn_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	require.NoError(t, c.SaveTurn(context.Background(), sampleTurn()))
	require.NotNil(t, db.lastTxInput)
	require.Len(t, db.lastTxInput.TransactItems, 2)

	put := db.lastTxInput.TransactItems[0].Put
	require.NotNil(t, put)
	require.Equal(t, "chat-log", *put.TableName)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *put.ConditionExpression)
	require.Equal(t, "CONV#conv-1", strVal(t, put.Item, "PK"))
	require.Equal(t, "TURN#2026-10-01T09:30:00Z", strVal(t, put.Item, "SK"))
	require.Equal(t, "corr-1", strVal(t, put.Item, "correlationId"))
	require.Equal(t, "You spent ₹40 on Food.", strVal(t, put.Item, "reply"))
	require.Equal(t, "2", numVal(t, put.Item, "transactionCount"))

	wantTTL := time.Date(2026, 10, 31, 9, 30, 0, 0, time.UTC).Unix()
	require.Equal(t, strconv.FormatInt(wantTTL, 10), numVal(t, put.Item, "ttl"))

	update := db.lastTxInput.TransactItems[1].Update
	require.NotNil(t, update)
	require.Equal(t, "CONV#conv-1", strVal(t, update.Key, "PK"))
	require.Equal(t, skMeta, strVal(t, update.Key, "SK"))
	require.Contains(t, *update.UpdateExpression, "ADD turns :one")
}

func TestSaveTurn_DefaultsCreatedAt(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	turn := sampleTurn()
	turn.CreatedAt = time.Time{}
	require.NoError(t, c.SaveTurn(context.Background(), turn))
	require.Equal(t, turnSK(fixed), strVal(t, db.lastTxInput.TransactItems[0].Put.Item, "SK"))
}

func TestSaveTurn_MissingConversationID(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	turn := sampleTurn()
	turn.ConversationID = " "
	err := c.SaveTurn(context.Background(), turn)
	require.ErrorContains(t, err, "required")
	require.Nil(t, db.lastTxInput)
}

func TestSaveTurn_DynamoError(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("transaction canceled")}
	c := mustNewClient(t, db)
	err := c.SaveTurn(context.Background(), sampleTurn())
	require.ErrorContains(t, err, "SaveTurn")
	require.ErrorContains(t, err, "transaction canceled")
}

func TestConvPK(t *testing.T) {
	require.Equal(t, "CONV#my-conv", convPK("my-conv"))
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "chat-log")
	require.ErrorContains(t, err, "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.ErrorContains(t, err, "must not be empty")
}
