package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

func setupTestDBProperty(t *testing.T, dbName string) *mongo.Database {
	database := utils.SetupTestDB(t, dbName, db.PropertiesCollection, db.OffersCollection, db.WishlistsCollection)
	require.NoError(t, db.EnsureIndexes(context.Background(), database))
	return database
}

func newTestListingCache(t *testing.T) (*miniredis.Miniredis, cache.IListingCache) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, cache.NewListingCache(rdb, time.Minute)
}

func testPropertyInput(agentEmail string, min, max float64) CreatePropertyInput {
	return CreatePropertyInput{
		Title:       "Lake house",
		Location:    "Gulshan, Dhaka",
		Description: "Three bedrooms facing the lake",
		Image:       "https://img.example.com/lake.jpg",
		PriceRange:  &models.PriceRange{Min: min, Max: max},
		Agent:       &models.AgentSnapshot{Name: "Agent Smith", Email: agentEmail, Image: "https://img.example.com/agent.jpg"},
	}
}

func TestPropertyService_CRUD(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_crud")
	mr, listingCache := newTestListingCache(t)
	publisher := &recordingPublisher{}
	svc := NewPropertyService(database, listingCache, publisher, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, testPropertyInput("agent@example.com", 100000, 150000))
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusPending, created.Status)
	assert.NotEmpty(t, created.PropertyID)

	found, err := svc.GetByPropertyID(ctx, created.PropertyID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, mr.Exists("property:"+created.PropertyID), "lookup should populate the cache")

	title := "Lake house (renovated)"
	updated, err := svc.Update(ctx, created.ID.Hex(), PropertyUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, models.PropertyStatusPending, updated.Status)
	assert.False(t, mr.Exists("property:"+created.PropertyID), "update should invalidate the cache")

	byAgent, err := svc.ListByAgent(ctx, "agent@example.com")
	require.NoError(t, err)
	assert.Len(t, byAgent, 1)

	none, err := svc.ListByAgent(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, svc.Delete(ctx, created.ID.Hex()))
	_, err = svc.GetByPropertyID(ctx, created.PropertyID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, []string{events.TypePropertyCreated, events.TypePropertyDeleted}, publisher.types())
}

func TestPropertyService_GetByPropertyID_NotFound(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_notfound")
	svc := NewPropertyService(database, nil, nil, nil, nil)

	_, err := svc.GetByPropertyID(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, MsgPropertyNotFound, err.Error())
}

func TestPropertyService_VerifyReject(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_status")
	svc := NewPropertyService(database, nil, nil, nil, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, testPropertyInput("agent@example.com", 1, 2))
	require.NoError(t, err)

	verified, err := svc.Verify(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusVerified, verified.Status)

	// Re-applying the same status is accepted.
	_, err = svc.Verify(ctx, p.ID.Hex())
	assert.NoError(t, err)

	// No path from verified to rejected (or back to pending).
	_, err = svc.Reject(ctx, p.ID.Hex())
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = svc.Verify(ctx, "665f1f77bcf86cd799439011")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Reject(ctx, "not-an-id")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPropertyService_DeleteCascadesWishlist(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_cascade")
	svc := NewPropertyService(database, nil, nil, nil, nil)
	wishlist := NewWishlistService(database)
	ctx := context.Background()

	p, err := svc.Create(ctx, testPropertyInput("agent@example.com", 1, 2))
	require.NoError(t, err)
	_, err = wishlist.Add(ctx, &models.PersonSnapshot{UserID: "u1", Email: "u1@example.com"}, &WishlistProperty{PropertyID: p.PropertyID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByPropertyID(ctx, p.PropertyID))

	count, err := database.Collection(db.WishlistsCollection).CountDocuments(ctx, bson.M{"propertyId": p.PropertyID})
	require.NoError(t, err)
	assert.Zero(t, count)

	err = svc.DeleteByPropertyID(ctx, p.PropertyID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
