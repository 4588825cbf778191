package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RishiKendai/foldercheck/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "plagiarism_checks"

type ResultsRepository struct {
	mongoRepo *MongoRepository
}

func NewResultsRepository(mongoRepo *MongoRepository) *ResultsRepository {
	return &ResultsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ResultsRepository) InsertCheckReport(ctx context.Context, report *models.CheckReport) error {
	err := r.mongoRepo.InsertOne(ctx, reportsCollection, report)
	if err != nil {
		return fmt.Errorf("failed to insert check report: %w", err)
	}

	return nil
}

// GetLatestReport returns the most recent report for a project/promotion, or nil when none exists.
func (r *ResultsRepository) GetLatestReport(ctx context.Context, projectID, promotionID string) (*models.CheckReport, error) {
	filter := bson.M{"projectId": projectID, "promotionId": promotionID}
	opts := options.FindOne().SetSort(bson.D{{Key: "completedAt", Value: -1}})

	var report models.CheckReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

func (r *ResultsRepository) GetReportByCheckID(ctx context.Context, checkID string) (*models.CheckReport, error) {
	var report models.CheckReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, bson.M{"checkId": checkID}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}
