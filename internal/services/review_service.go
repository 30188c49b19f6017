package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
)

const (
	MsgReviewerRequired = "Reviewer information is required"
	MsgInvalidRating    = "Rating must be between 1 and 5"
)

// CreateReviewInput is the body of a new review. The listing comes from the route.
type CreateReviewInput struct {
	ReviewText    string                 `json:"reviewText"`
	Rating        float64                `json:"rating"`
	PropertyTitle string                 `json:"propertyTitle"`
	Agent         models.AgentSnapshot   `json:"agent"`
	Reviewer      *models.PersonSnapshot `json:"reviewer"`
}

// IReviewService is the append-only review store.
type IReviewService interface {
	Add(ctx context.Context, propertyID string, in CreateReviewInput) (*models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
	ListByProperty(ctx context.Context, propertyID string) ([]models.Review, error)
	ListByReviewer(ctx context.Context, email string) ([]models.Review, error)
	Delete(ctx context.Context, id string) error
}

type reviewService struct {
	db *mongo.Database
}

func NewReviewService(db *mongo.Database) IReviewService {
	return &reviewService{db: db}
}

func (s *reviewService) collection() *mongo.Collection {
	return s.db.Collection(db.ReviewsCollection)
}

func (s *reviewService) Add(ctx context.Context, propertyID string, in CreateReviewInput) (*models.Review, error) {
	if in.Reviewer == nil || strings.TrimSpace(in.Reviewer.UserID) == "" {
		return nil, NewValidationError(MsgReviewerRequired)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, NewValidationError(MsgInvalidRating)
	}

	now := time.Now().UTC()
	var review *models.Review
	operation := func() error {
		review = &models.Review{
			Base:          models.NewBase(),
			ReviewID:      uuid.NewString(),
			PropertyID:    propertyID,
			PropertyTitle: in.PropertyTitle,
			Agent:         in.Agent,
			Reviewer:      *in.Reviewer,
			ReviewText:    in.ReviewText,
			Rating:        in.Rating,
			CreatedAt:     now,
		}
		_, err := s.collection().InsertOne(ctx, review)
		return err
	}
	if err := db.Try(ctx, operation); err != nil {
		return nil, fmt.Errorf("failed to insert review on %s: %w", propertyID, err)
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context) ([]models.Review, error) {
	return findAll[models.Review](ctx, s.collection(), bson.M{})
}

func (s *reviewService) ListByProperty(ctx context.Context, propertyID string) ([]models.Review, error) {
	return findAll[models.Review](ctx, s.collection(), bson.M{"propertyId": propertyID})
}

func (s *reviewService) ListByReviewer(ctx context.Context, email string) ([]models.Review, error) {
	return findAll[models.Review](ctx, s.collection(), bson.M{"reviewer.email": email})
}

// Delete accepts either the document _id or the generated reviewId.
func (s *reviewService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	filter := bson.M{"reviewId": id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filter = bson.M{"$or": bson.A{bson.M{"_id": oid}, bson.M{"reviewId": id}}}
	}

	res, err := s.collection().DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return NewNotFoundError(MsgReviewNotFound)
	}
	return nil
}
