package repository

import (
	"context"
	"fmt"

	"github.com/RishiKendai/foldercheck/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const summariesCollection = "folder_summaries"

// ArtifactsRepository stores the per-folder summary rows produced by each check
type ArtifactsRepository struct {
	mongoRepo *MongoRepository
}

func NewArtifactsRepository(mongoRepo *MongoRepository) *ArtifactsRepository {
	return &ArtifactsRepository{
		mongoRepo: mongoRepo,
	}
}

// ReplaceFolderSummaries swaps the rows stored for checkID with summaries.
func (r *ArtifactsRepository) ReplaceFolderSummaries(ctx context.Context, checkID string, summaries []*models.FolderSummary) error {
	if _, err := r.mongoRepo.DeleteMany(ctx, summariesCollection, bson.M{"checkId": checkID}); err != nil {
		return fmt.Errorf("failed to clear folder summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(summaries))
	for _, s := range summaries {
		docs = append(docs, s)
	}
	if err := r.mongoRepo.InsertMany(ctx, summariesCollection, docs); err != nil {
		return fmt.Errorf("failed to insert folder summaries: %w", err)
	}

	return nil
}

func (r *ArtifactsRepository) GetFolderSummariesByCheckID(ctx context.Context, checkID string) ([]*models.FolderSummary, error) {
	return r.find(ctx, bson.M{"checkId": checkID})
}

// GetFolderSummariesBySHA1 finds folders, across all checks, whose concatenated source hashed to sha1.
func (r *ArtifactsRepository) GetFolderSummariesBySHA1(ctx context.Context, sha1 string) ([]*models.FolderSummary, error) {
	return r.find(ctx, bson.M{"sha1": sha1})
}

func (r *ArtifactsRepository) find(ctx context.Context, filter bson.M) ([]*models.FolderSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "folderName", Value: 1}})
	cursor, err := r.mongoRepo.FindMany(ctx, summariesCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find folder summaries: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []*models.FolderSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode folder summaries: %w", err)
	}

	return summaries, nil
}
