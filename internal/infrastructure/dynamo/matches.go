package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pizoo/pizoo-api/internal/domain"
)

// MatchRepo provides typed DynamoDB operations for the matches table.
// The table is keyed by the canonical pair key, which makes match creation
// a single-writer decision per unordered user pair.
type MatchRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMatchRepo(client *dynamodb.Client, tableName string) *MatchRepo {
	return &MatchRepo{client: client, tableName: tableName}
}

// Create inserts the match iff no match exists for its pair key.
// When a concurrent (or earlier) writer already claimed the pair, the
// existing match is returned instead and created is false.
func (r *MatchRepo) Create(ctx context.Context, m *domain.Match) (created bool, existing *domain.Match, err error) {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return false, nil, fmt.Errorf("marshal match: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pair_key)"),
	})
	if err == nil {
		return true, m, nil
	}
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return false, nil, err
	}
	existing, err = r.GetByPair(ctx, m.PairKey)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *MatchRepo) GetByPair(ctx context.Context, pairKey string) (*domain.Match, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("pair_key", pairKey),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("match for pair %s: %w", pairKey, domain.ErrNotFound)
	}
	var m domain.Match
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID string) (*domain.Match, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("match_id-index"),
		KeyConditionExpression: aws.String("match_id = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: matchID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("match %s: %w", matchID, domain.ErrNotFound)
	}
	var m domain.Match
	if err := attributevalue.UnmarshalMap(out.Items[0], &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByUser returns every match where the user is either participant.
func (r *MatchRepo) ListByUser(ctx context.Context, userID string) ([]domain.Match, error) {
	var matches []domain.Match
	for _, index := range []struct{ name, attr string }{
		{"user1_id-index", "user1_id"},
		{"user2_id-index", "user2_id"},
	} {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index.name),
			KeyConditionExpression: aws.String(index.attr + " = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": &types.AttributeValueMemberS{Value: userID},
			},
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Match
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		matches = append(matches, page...)
	}
	return matches, nil
}
