package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/storage"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// CreatePropertyInput is the agent-supplied content of a new listing.
type CreatePropertyInput struct {
	Title       string                `json:"title"`
	Location    string                `json:"location"`
	Description string                `json:"description"`
	Image       string                `json:"image"`
	PriceRange  *models.PriceRange    `json:"priceRange"`
	Agent       *models.AgentSnapshot `json:"agent"`
}

// PropertyUpdate lists the editable listing fields. Nil fields are left unchanged.
type PropertyUpdate struct {
	Title      *string            `json:"title"`
	Location   *string            `json:"location"`
	Image      *string            `json:"image"`
	PriceRange *models.PriceRange `json:"priceRange"`
}

// IPropertyService defines the listing store and its verification lifecycle.
type IPropertyService interface {
	Create(ctx context.Context, in CreatePropertyInput) (*models.Property, error)
	List(ctx context.Context) ([]models.Property, error)
	ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error)
	ListByStatus(ctx context.Context, status string) ([]models.Property, error)
	GetByPropertyID(ctx context.Context, propertyID string) (*models.Property, error)
	Update(ctx context.Context, id string, upd PropertyUpdate) (*models.Property, error)
	Verify(ctx context.Context, id string) (*models.Property, error)
	Reject(ctx context.Context, id string) (*models.Property, error)
	Delete(ctx context.Context, id string) error
	DeleteByPropertyID(ctx context.Context, propertyID string) error
}

// propertyService implements IPropertyService.
type propertyService struct {
	db        *mongo.Database
	cache     cache.IListingCache
	publisher events.IPublisher
	queue     ITaskQueue
	images    storage.IS3Storage
}

// NewPropertyService creates a new PropertyService. cache, publisher, queue and images may be nil.
func NewPropertyService(db *mongo.Database, listingCache cache.IListingCache, publisher events.IPublisher, queue ITaskQueue, images storage.IS3Storage) IPropertyService {
	if queue == nil {
		queue = NewNoopQueue()
	}
	return &propertyService{db: db, cache: listingCache, publisher: publisher, queue: queue, images: images}
}

func (s *propertyService) collection() *mongo.Collection {
	return s.db.Collection(db.PropertiesCollection)
}

func validateCreateProperty(in CreatePropertyInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Location) == "" ||
		strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Image) == "" ||
		in.PriceRange == nil || in.Agent == nil ||
		strings.TrimSpace(in.Agent.Name) == "" || strings.TrimSpace(in.Agent.Email) == "" {
		return NewValidationError(MsgFieldsRequired)
	}
	return validatePriceRange(*in.PriceRange)
}

func validatePriceRange(p models.PriceRange) error {
	if p.Min < 0 || p.Max < 0 || p.Min > p.Max {
		return NewValidationError("Invalid price range")
	}
	return nil
}

// Create inserts a pending listing under a freshly generated propertyId.
func (s *propertyService) Create(ctx context.Context, in CreatePropertyInput) (*models.Property, error) {
	if err := validateCreateProperty(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var property *models.Property
	operation := func() error {
		property = &models.Property{
			Base:        models.NewBase(),
			PropertyID:  uuid.NewString(),
			Title:       strings.TrimSpace(in.Title),
			Location:    strings.TrimSpace(in.Location),
			Description: strings.TrimSpace(in.Description),
			Image:       strings.TrimSpace(in.Image),
			PriceRange:  *in.PriceRange,
			Agent:       *in.Agent,
			Status:      models.PropertyStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err := s.collection().InsertOne(ctx, property)
		return err
	}
	if err := db.Try(ctx, operation); err != nil {
		return nil, fmt.Errorf("failed to insert property for agent %s: %w", in.Agent.Email, err)
	}

	if s.images != nil {
		if key, ok := s.images.KeyFromURL(property.Image); ok {
			if err := s.queue.EnqueueImageProcess(ctx, key, property.PropertyID); err != nil {
				utils.Logger().Warn("failed to enqueue image processing", zap.String("propertyId", property.PropertyID), zap.Error(err))
			}
		}
	}

	evt := events.NewEvent(events.TypePropertyCreated, property.PropertyID)
	evt.Status = string(property.Status)
	publish(ctx, s.publisher, evt)
	return property, nil
}

func (s *propertyService) List(ctx context.Context) ([]models.Property, error) {
	return findAll[models.Property](ctx, s.collection(), bson.M{})
}

func (s *propertyService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error) {
	return findAll[models.Property](ctx, s.collection(), bson.M{"agent.email": agentEmail})
}

func (s *propertyService) ListByStatus(ctx context.Context, status string) ([]models.Property, error) {
	return findAll[models.Property](ctx, s.collection(), bson.M{"status": status})
}

// GetByPropertyID looks a listing up by its external id, through the cache when configured.
func (s *propertyService) GetByPropertyID(ctx context.Context, propertyID string) (*models.Property, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, propertyID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			utils.Logger().Warn("listing cache read failed", zap.String("propertyId", propertyID), zap.Error(err))
		}
	}

	var property models.Property
	err := s.collection().FindOne(ctx, bson.M{"propertyId": propertyID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError(MsgPropertyNotFound)
		}
		return nil, fmt.Errorf("error finding property %s: %w", propertyID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &property); err != nil {
			utils.Logger().Warn("listing cache write failed", zap.String("propertyId", propertyID), zap.Error(err))
		}
	}
	return &property, nil
}

// Update edits title, location, image and price range. Status is never touched here.
func (s *propertyService) Update(ctx context.Context, id string, upd PropertyUpdate) (*models.Property, error) {
	oid, err := parseObjectID(id, MsgPropertyNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = strings.TrimSpace(*upd.Title)
	}
	if upd.Location != nil {
		set["location"] = strings.TrimSpace(*upd.Location)
	}
	if upd.Image != nil {
		set["image"] = strings.TrimSpace(*upd.Image)
	}
	if upd.PriceRange != nil {
		if err := validatePriceRange(*upd.PriceRange); err != nil {
			return nil, err
		}
		set["priceRange"] = *upd.PriceRange
	}

	var updated models.Property
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.collection().FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError(MsgPropertyNotFound)
		}
		return nil, fmt.Errorf("failed to update property %s: %w", id, err)
	}

	s.invalidate(ctx, updated.PropertyID)
	return &updated, nil
}

func (s *propertyService) Verify(ctx context.Context, id string) (*models.Property, error) {
	return s.transition(ctx, id, models.PropertyStatusVerified, events.TypePropertyVerified)
}

func (s *propertyService) Reject(ctx context.Context, id string) (*models.Property, error) {
	return s.transition(ctx, id, models.PropertyStatusRejected, events.TypePropertyRejected)
}

// transition moves a pending listing to target. Re-applying the current
// target succeeds; every other starting state is a conflict.
func (s *propertyService) transition(ctx context.Context, id string, target models.PropertyStatus, eventType string) (*models.Property, error) {
	oid, err := parseObjectID(id, MsgPropertyNotFound)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":    oid,
		"status": bson.M{"$in": []models.PropertyStatus{models.PropertyStatusPending, target}},
	}
	update := bson.M{"$set": bson.M{"status": target, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Property
	err = s.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to set property %s to %s: %w", id, target, err)
		}
		count, countErr := s.collection().CountDocuments(ctx, bson.M{"_id": oid})
		if countErr != nil {
			return nil, fmt.Errorf("failed to check property %s: %w", id, countErr)
		}
		if count == 0 {
			return nil, NewNotFoundError(MsgPropertyNotFound)
		}
		return nil, NewConflictError("Property status can no longer be changed")
	}

	s.invalidate(ctx, updated.PropertyID)
	evt := events.NewEvent(eventType, updated.PropertyID)
	evt.Status = string(updated.Status)
	publish(ctx, s.publisher, evt)
	return &updated, nil
}

func (s *propertyService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, MsgPropertyNotFound)
	if err != nil {
		return err
	}
	return s.deleteOne(ctx, bson.M{"_id": oid})
}

func (s *propertyService) DeleteByPropertyID(ctx context.Context, propertyID string) error {
	return s.deleteOne(ctx, bson.M{"propertyId": propertyID})
}

// deleteOne removes a listing and the wishlist entries that point at it.
func (s *propertyService) deleteOne(ctx context.Context, filter bson.M) error {
	var deleted models.Property
	err := s.collection().FindOneAndDelete(ctx, filter).Decode(&deleted)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewNotFoundError(MsgPropertyNotFound)
		}
		return fmt.Errorf("failed to delete property: %w", err)
	}

	if _, err := s.db.Collection(db.WishlistsCollection).DeleteMany(ctx, bson.M{"propertyId": deleted.PropertyID}); err != nil {
		utils.Logger().Warn("failed to remove wishlist entries of deleted property", zap.String("propertyId", deleted.PropertyID), zap.Error(err))
	}
	s.invalidate(ctx, deleted.PropertyID)
	publish(ctx, s.publisher, events.NewEvent(events.TypePropertyDeleted, deleted.PropertyID))
	return nil
}

func (s *propertyService) invalidate(ctx context.Context, propertyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, propertyID); err != nil {
		utils.Logger().Warn("listing cache invalidation failed", zap.String("propertyId", propertyID), zap.Error(err))
	}
}
