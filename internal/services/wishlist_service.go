package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
)

const (
	MsgWishlistDetailsRequired = "User and property details are required"
	MsgWishlistDuplicate       = "This property is already in your wishlist."
)

// WishlistProperty is the listing snapshot the client saves.
type WishlistProperty struct {
	PropertyID string               `json:"propertyId"`
	Title      string               `json:"title"`
	Location   string               `json:"location"`
	Image      string               `json:"image"`
	Status     string               `json:"status"`
	PriceRange models.PriceRange    `json:"priceRange"`
	Agent      models.AgentSnapshot `json:"agent"`
}

// IWishlistService stores the listings a bidder has saved.
type IWishlistService interface {
	Add(ctx context.Context, user *models.PersonSnapshot, property *WishlistProperty) (*models.WishlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error)
	Remove(ctx context.Context, userID, propertyID string) error
	RemoveByProperty(ctx context.Context, propertyID string) error
}

type wishlistService struct {
	db *mongo.Database
}

func NewWishlistService(db *mongo.Database) IWishlistService {
	return &wishlistService{db: db}
}

func (s *wishlistService) collection() *mongo.Collection {
	return s.db.Collection(db.WishlistsCollection)
}

// Add saves property for user. A pair that is already saved is a conflict; the
// unique index on (user.userId, propertyId) covers concurrent inserts.
func (s *wishlistService) Add(ctx context.Context, user *models.PersonSnapshot, property *WishlistProperty) (*models.WishlistItem, error) {
	if user == nil || property == nil || strings.TrimSpace(user.UserID) == "" || strings.TrimSpace(property.PropertyID) == "" {
		return nil, NewValidationError(MsgWishlistDetailsRequired)
	}

	filter := bson.M{"user.userId": user.UserID, "propertyId": property.PropertyID}
	count, err := s.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist of %s: %w", user.UserID, err)
	}
	if count > 0 {
		return nil, NewConflictError(MsgWishlistDuplicate)
	}

	now := time.Now().UTC()
	item := &models.WishlistItem{
		Base:       models.NewBase(),
		User:       *user,
		PropertyID: property.PropertyID,
		Title:      property.Title,
		Location:   property.Location,
		Image:      property.Image,
		Status:     property.Status,
		PriceRange: property.PriceRange,
		Agent:      property.Agent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.collection().InsertOne(ctx, item); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, NewConflictError(MsgWishlistDuplicate)
		}
		return nil, fmt.Errorf("failed to add %s to wishlist of %s: %w", property.PropertyID, user.UserID, err)
	}
	return item, nil
}

func (s *wishlistService) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return findAll[models.WishlistItem](ctx, s.collection(), bson.M{"user.userId": userID})
}

func (s *wishlistService) Remove(ctx context.Context, userID, propertyID string) error {
	_, err := s.collection().DeleteOne(ctx, bson.M{"user.userId": userID, "propertyId": propertyID})
	if err != nil {
		return fmt.Errorf("failed to remove %s from wishlist of %s: %w", propertyID, userID, err)
	}
	return nil
}

// RemoveByProperty drops the listing from every wishlist.
func (s *wishlistService) RemoveByProperty(ctx context.Context, propertyID string) error {
	_, err := s.collection().DeleteMany(ctx, bson.M{"propertyId": propertyID})
	if err != nil {
		return fmt.Errorf("failed to remove %s from wishlists: %w", propertyID, err)
	}
	return nil
}
