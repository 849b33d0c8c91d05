package store

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
)

// DynamoStore keeps the live snapshot under a fixed key and one archive
// item per day, single-table style.
type DynamoStore struct {
	db *DynamoDBClient

	mu     sync.Mutex
	logger *logger.Logger
}

type snapshotItem struct {
	models.Snapshot

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

func NewDynamoStore(db *DynamoDBClient, log *logger.Logger) *DynamoStore {
	return &DynamoStore{
		db:     db,
		logger: log.With("component", "DynamoStore"),
	}
}

func (s *DynamoStore) Load(ctx context.Context) (*models.Snapshot, error) {
	result, err := s.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.SnapshotLivePK()},
			"SK": &types.AttributeValueMemberS{Value: models.SnapshotSK()},
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to get live snapshot")
	}

	if result.Item == nil {
		s.logger.Info("No live snapshot item, starting from an empty roster")
		return models.NewSnapshot(), nil
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to unmarshal snapshot")
	}

	return &item.Snapshot, nil
}

func (s *DynamoStore) Save(ctx context.Context, snapshot *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Archive first so a failed live write never costs the prior day.
	if err := s.putSnapshot(ctx, snapshot, models.SnapshotArchivePK(time.Now().Format("2006-01-02"))); err != nil {
		return err
	}

	if err := s.putSnapshot(ctx, snapshot, models.SnapshotLivePK()); err != nil {
		return err
	}

	s.logger.Debug("Snapshot saved", "users", len(snapshot.Users))
	return nil
}

func (s *DynamoStore) putSnapshot(ctx context.Context, snapshot *models.Snapshot, pk string) error {
	item, err := attributevalue.MarshalMap(snapshotItem{
		Snapshot: *snapshot,
		PK:       pk,
		SK:       models.SnapshotSK(),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to marshal snapshot")
	}

	_, err = s.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.db.Table()),
		Item:      item,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to put snapshot item")
	}

	return nil
}
