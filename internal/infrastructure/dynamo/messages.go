package dynamo

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pizoo/pizoo-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

// summaryConcurrency bounds the per-match fan-out in ConversationSummaries.
const summaryConcurrency = 8

// MessageRepo provides typed DynamoDB operations for the messages table.
type MessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageRepo(client *dynamodb.Client, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

func (r *MessageRepo) Put(ctx context.Context, m *domain.Message) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByMatch returns all messages of a match ordered by created_at ascending.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID string) ([]domain.Message, error) {
	var messages []domain.Message
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("match_id-created_at-index"),
			KeyConditionExpression: aws.String("match_id = :m"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":m": &types.AttributeValueMemberS{Value: matchID},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Message
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		messages = append(messages, page...)
		if out.LastEvaluatedKey == nil {
			return messages, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ListUnreadFromOthers returns the unread messages in a match that were not
// sent by viewerID, i.e. the ones a read-on-view pass must flip. The filter
// runs after each read page, so every page must be walked or unread messages
// deep in a long conversation would be skipped.
func (r *MessageRepo) ListUnreadFromOthers(ctx context.Context, matchID, viewerID string) ([]domain.Message, error) {
	var messages []domain.Message
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("match_id-created_at-index"),
			KeyConditionExpression: aws.String("match_id = :m"),
			FilterExpression:       aws.String("#r = :unread AND sender_id <> :viewer"),
			ExpressionAttributeNames: map[string]string{
				"#r": "read",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":m":      &types.AttributeValueMemberS{Value: matchID},
				":unread": &types.AttributeValueMemberBOOL{Value: false},
				":viewer": &types.AttributeValueMemberS{Value: viewerID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Message
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		messages = append(messages, page...)
		if out.LastEvaluatedKey == nil {
			return messages, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// MarkRead flips a single message to read.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"read": true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("message_id", messageID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// Latest returns the newest message in a match, or nil when none exist.
func (r *MessageRepo) Latest(ctx context.Context, matchID string) (*domain.Message, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("match_id-created_at-index"),
		KeyConditionExpression: aws.String("match_id = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: matchID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var m domain.Message
	if err := attributevalue.UnmarshalMap(out.Items[0], &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CountUnreadForViewer counts messages in a match that viewerID has not read
// and did not send. Counts are per page, so they are summed across pages.
func (r *MessageRepo) CountUnreadForViewer(ctx context.Context, matchID, viewerID string) (int, error) {
	count := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("match_id-created_at-index"),
			KeyConditionExpression: aws.String("match_id = :m"),
			FilterExpression:       aws.String("#r = :unread AND sender_id <> :viewer"),
			ExpressionAttributeNames: map[string]string{
				"#r": "read",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":m":      &types.AttributeValueMemberS{Value: matchID},
				":unread": &types.AttributeValueMemberBOOL{Value: false},
				":viewer": &types.AttributeValueMemberS{Value: viewerID},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return count, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ConversationSummaries gathers last-message and unread-count for a batch of
// match ids in one call. DynamoDB cannot join across partitions, so the
// batching happens here: a bounded concurrent fan-out per match id instead of
// sequential dependent reads in the caller. Isolation is read-committed; the
// result is not a point-in-time snapshot of all conversations.
func (r *MessageRepo) ConversationSummaries(ctx context.Context, matchIDs []string, viewerID string) (map[string]domain.ConversationSummary, error) {
	summaries := make(map[string]domain.ConversationSummary, len(matchIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for _, matchID := range matchIDs {
		g.Go(func() error {
			last, err := r.Latest(gctx, matchID)
			if err != nil {
				return err
			}
			unread, err := r.CountUnreadForViewer(gctx, matchID, viewerID)
			if err != nil {
				return err
			}
			mu.Lock()
			summaries[matchID] = domain.ConversationSummary{LastMessage: last, UnreadCount: unread}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
