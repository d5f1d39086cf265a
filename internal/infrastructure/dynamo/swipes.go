package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pizoo/pizoo-api/internal/domain"
)

// SwipeRepo provides typed DynamoDB operations for the append-only swipes table.
type SwipeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSwipeRepo(client *dynamodb.Client, tableName string) *SwipeRepo {
	return &SwipeRepo{client: client, tableName: tableName}
}

func (r *SwipeRepo) Put(ctx context.Context, s *domain.Swipe) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal swipe: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// HasLike reports whether any like row exists from fromID toward toID.
// Duplicate rows are permitted in the table; only existence matters here.
// The filter runs after each read page, so a like behind a page of pass
// rows is only found by walking every page.
func (r *SwipeRepo) HasLike(ctx context.Context, fromID, toID string) (bool, error) {
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("from_user_id-to_user_id-index"),
			KeyConditionExpression: aws.String("from_user_id = :f AND to_user_id = :t"),
			FilterExpression:       aws.String("#act = :like"),
			ExpressionAttributeNames: map[string]string{
				"#act": "action",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f":    &types.AttributeValueMemberS{Value: fromID},
				":t":    &types.AttributeValueMemberS{Value: toID},
				":like": &types.AttributeValueMemberS{Value: domain.SwipeLike},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return false, err
		}
		if len(out.Items) > 0 {
			return true, nil
		}
		if out.LastEvaluatedKey == nil {
			return false, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// TargetIDs returns the set of user ids fromID has ever swiped on,
// regardless of action. Used to shrink the discovery pool.
func (r *SwipeRepo) TargetIDs(ctx context.Context, fromID string) (map[string]struct{}, error) {
	targets := make(map[string]struct{})
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("from_user_id-to_user_id-index"),
			KeyConditionExpression: aws.String("from_user_id = :f"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f": &types.AttributeValueMemberS{Value: fromID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var swipes []domain.Swipe
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &swipes); err != nil {
			return nil, err
		}
		for i := range swipes {
			targets[swipes[i].ToUserID] = struct{}{}
		}
		if out.LastEvaluatedKey == nil {
			return targets, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// LikesReceived returns all like swipes addressed to toID, newest first.
func (r *SwipeRepo) LikesReceived(ctx context.Context, toID string) ([]domain.Swipe, error) {
	var swipes []domain.Swipe
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("to_user_id-created_at-index"),
			KeyConditionExpression: aws.String("to_user_id = :t"),
			FilterExpression:       aws.String("#act = :like"),
			ExpressionAttributeNames: map[string]string{
				"#act": "action",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t":    &types.AttributeValueMemberS{Value: toID},
				":like": &types.AttributeValueMemberS{Value: domain.SwipeLike},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Swipe
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		swipes = append(swipes, page...)
		if out.LastEvaluatedKey == nil {
			return swipes, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
