package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hasanRafi2002/asgn-12-server/internal/api"
	"github.com/hasanRafi2002/asgn-12-server/internal/auth"
	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/config"
	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

const (
	testJwtSecret  = "integration-secret"
	testAgentEmail = "agent@example.com"
)

// newIntegrationServer wires the full API router against a real MongoDB and an in-memory Redis.
func newIntegrationServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := utils.SetupTestDB(t, "asgn12_integration_test",
		db.PropertiesCollection, db.OffersCollection, db.ReviewsCollection, db.WishlistsCollection)
	utils.RequireReplicaSet(t, database)
	require.NoError(t, db.EnsureIndexes(context.Background(), database))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JwtSecret:               testJwtSecret,
		JwtTTL:                  time.Hour,
		AllowedOrigins:          []string{"http://localhost:5173"},
		RateLimitSoftBucketSize: 1000,
		RateLimitSoftRefillRate: 1000,
		RateLimitHardBucketSize: 1000,
		RateLimitHardRefillRate: 1000,
	}
	publisher := events.NewNoopPublisher()
	properties := services.NewPropertyService(database, cache.NewListingCache(rdb, cfg.GetCacheTTL), publisher, nil, nil)
	offers := services.NewOfferService(database, properties, services.OfferServiceDeps{
		Locker:    cache.NewLocker(rdb),
		LockTTL:   5 * time.Second,
		Publisher: publisher,
	})

	router, limiter := api.SetupRouter(api.Dependencies{
		Config:      cfg,
		Properties:  properties,
		Offers:      offers,
		Reviews:     services.NewReviewService(database),
		Wishlists:   services.NewWishlistService(database),
		Denylist:    cache.NewTokenDenylist(rdb),
		Idempotency: cache.NewIdempotencyStore(rdb),
	})
	t.Cleanup(limiter.Stop)
	return router
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func TestIntegration_OfferLifecycle(t *testing.T) {
	r := newIntegrationServer(t)

	agentToken, err := auth.GenerateJWT(auth.Identity{ID: "agent-uid", Name: "Agent", Email: testAgentEmail}, testJwtSecret, time.Hour)
	require.NoError(t, err)
	strangerToken, err := auth.GenerateJWT(auth.Identity{ID: "other-uid", Name: "Other", Email: "other@example.com"}, testJwtSecret, time.Hour)
	require.NoError(t, err)

	// Agent lists a property, admin verifies it.
	w := doJSON(t, r, http.MethodPost, "/api/properties", services.CreatePropertyInput{
		Title:      "Lake House",
		Location:   "Dhaka",
		Image:      "https://cdn.example.com/lake.png",
		PriceRange: &models.PriceRange{Min: 100000, Max: 200000},
		Agent:      &models.AgentSnapshot{Name: "Agent", Email: testAgentEmail},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Property models.Property `json:"property"`
	}
	decode(t, w, &created)
	property := created.Property
	assert.Equal(t, models.PropertyStatusPending, property.Status)

	w = doJSON(t, r, http.MethodPut, "/api/properties/verify/"+property.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/properties/status/verified", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), property.PropertyID)

	// Two buyers bid; one bid falls outside the price range.
	makeOffer := func(userID string, amount float64) *httptest.ResponseRecorder {
		return doJSON(t, r, http.MethodPost, "/api/offers", services.CreateOfferInput{
			User:        &models.PersonSnapshot{UserID: userID, Name: "Buyer " + userID, Email: userID + "@example.com"},
			Property:    &services.OfferListing{PropertyID: property.PropertyID},
			OfferAmount: amount,
			BuyingDate:  "2030-01-15",
		}, "")
	}
	w = makeOffer("u3", 50)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var offerIDs []string
	for _, userID := range []string{"u1", "u2"} {
		w = makeOffer(userID, 150000)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var res struct {
			Offer models.Offer `json:"offer"`
		}
		decode(t, w, &res)
		offerIDs = append(offerIDs, res.Offer.ID.Hex())
	}

	// Only the listing agent may decide.
	w = doJSON(t, r, http.MethodPut, "/api/agent/offers/"+offerIDs[0]+"/accept", nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/agent/offers/"+offerIDs[0]+"/accept", nil, agentToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assertStatuses := func(want ...models.OfferStatus) {
		t.Helper()
		w := doJSON(t, r, http.MethodGet, "/api/agent/offers/"+testAgentEmail, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var agentOffers []models.Offer
		decode(t, w, &agentOffers)
		statuses := map[string]models.OfferStatus{}
		for _, o := range agentOffers {
			statuses[o.ID.Hex()] = o.Status
		}
		for i, id := range offerIDs {
			assert.Equal(t, want[i], statuses[id], id)
		}
	}
	assertStatuses(models.OfferStatusAccepted, models.OfferStatusRejected)

	// Accepting the other offer moves the acceptance; exactly one stays accepted.
	w = doJSON(t, r, http.MethodPut, "/api/agent/offers/"+offerIDs[1]+"/accept", nil, agentToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertStatuses(models.OfferStatusRejected, models.OfferStatusAccepted)

	// A rejected offer cannot be paid.
	w = doJSON(t, r, http.MethodPut, "/api/offers/"+offerIDs[0]+"/payment",
		map[string]string{"paymentTransactionId": "pi_integration", "status": "bought"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Buyer pays; the offer becomes bought and shows up as sold.
	w = doJSON(t, r, http.MethodPut, "/api/offers/"+offerIDs[1]+"/payment",
		map[string]string{"paymentTransactionId": "pi_integration", "status": "bought"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertStatuses(models.OfferStatusRejected, models.OfferStatusBought)

	// Once sold, no offer on the listing can be accepted again.
	w = doJSON(t, r, http.MethodPut, "/api/agent/offers/"+offerIDs[0]+"/accept", nil, agentToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/agent/sold/"+testAgentEmail, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var sold []models.Offer
	decode(t, w, &sold)
	require.Len(t, sold, 1)
	assert.Equal(t, "pi_integration", sold[0].PaymentTransactionID)
}

func TestIntegration_ReviewsAndWishlist(t *testing.T) {
	r := newIntegrationServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/properties", services.CreatePropertyInput{
		Title:      "City Flat",
		Location:   "Chittagong",
		Image:      "https://cdn.example.com/flat.png",
		PriceRange: &models.PriceRange{Min: 1000, Max: 2000},
		Agent:      &models.AgentSnapshot{Name: "Agent", Email: testAgentEmail},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Property models.Property `json:"property"`
	}
	decode(t, w, &created)
	property := created.Property
	buyer := &models.PersonSnapshot{UserID: "u1", Name: "Buyer", Email: "buyer@example.com"}

	w = doJSON(t, r, http.MethodPost, "/api/wishlist", map[string]interface{}{
		"user": buyer,
		"property": services.WishlistProperty{
			PropertyID: property.PropertyID,
			Title:      property.Title,
			PriceRange: property.PriceRange,
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/wishlist", map[string]interface{}{
		"user":     buyer,
		"property": services.WishlistProperty{PropertyID: property.PropertyID, Title: property.Title},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/properties/"+property.PropertyID+"/reviews",
		services.CreateReviewInput{Reviewer: buyer, ReviewText: "Great location", Rating: 5, PropertyTitle: property.Title}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/properties/"+property.PropertyID+"/reviews", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Great location")

	// Deleting the listing removes it from every wishlist.
	w = doJSON(t, r, http.MethodDelete, "/api/properties/"+property.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/wishlist/u1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []bson.M
	decode(t, w, &items)
	assert.Empty(t, items)
}
