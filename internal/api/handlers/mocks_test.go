package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hasanRafi2002/asgn-12-server/internal/identity"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/payment"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

// --- Mocks ---

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) StoreUserData(ctx context.Context, in services.StoreUserInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) MarkFraud(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPropertyService
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) property(args mock.Arguments) (*models.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) properties(args mock.Arguments) ([]models.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) Create(ctx context.Context, in services.CreatePropertyInput) (*models.Property, error) {
	return m.property(m.Called(ctx, in))
}

func (m *MockPropertyService) List(ctx context.Context) ([]models.Property, error) {
	return m.properties(m.Called(ctx))
}

func (m *MockPropertyService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error) {
	return m.properties(m.Called(ctx, agentEmail))
}

func (m *MockPropertyService) ListByStatus(ctx context.Context, status string) ([]models.Property, error) {
	return m.properties(m.Called(ctx, status))
}

func (m *MockPropertyService) GetByPropertyID(ctx context.Context, propertyID string) (*models.Property, error) {
	return m.property(m.Called(ctx, propertyID))
}

func (m *MockPropertyService) Update(ctx context.Context, id string, upd services.PropertyUpdate) (*models.Property, error) {
	return m.property(m.Called(ctx, id, upd))
}

func (m *MockPropertyService) Verify(ctx context.Context, id string) (*models.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *MockPropertyService) Reject(ctx context.Context, id string) (*models.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *MockPropertyService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPropertyService) DeleteByPropertyID(ctx context.Context, propertyID string) error {
	return m.Called(ctx, propertyID).Error(0)
}

// MockOfferService
type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) offers(args mock.Arguments) ([]models.Offer, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *MockOfferService) CreateOffer(ctx context.Context, in services.CreateOfferInput) (*models.Offer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *MockOfferService) AcceptOffer(ctx context.Context, offerID, actorEmail string) error {
	return m.Called(ctx, offerID, actorEmail).Error(0)
}

func (m *MockOfferService) RejectOffer(ctx context.Context, offerID, actorEmail string) error {
	return m.Called(ctx, offerID, actorEmail).Error(0)
}

func (m *MockOfferService) RecordOfferPayment(ctx context.Context, offerID, transactionID, status string) error {
	return m.Called(ctx, offerID, transactionID, status).Error(0)
}

func (m *MockOfferService) ConfirmPayment(ctx context.Context, offerID, transactionID string) error {
	return m.Called(ctx, offerID, transactionID).Error(0)
}

func (m *MockOfferService) ListByBuyer(ctx context.Context, userID string) ([]models.Offer, error) {
	return m.offers(m.Called(ctx, userID))
}

func (m *MockOfferService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Offer, error) {
	return m.offers(m.Called(ctx, agentEmail))
}

func (m *MockOfferService) ListSoldByAgent(ctx context.Context, agentEmail string) ([]models.Offer, error) {
	return m.offers(m.Called(ctx, agentEmail))
}

func (m *MockOfferService) ListByProperty(ctx context.Context, propertyID string) ([]models.Offer, error) {
	return m.offers(m.Called(ctx, propertyID))
}

// MockReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) reviews(args mock.Arguments) ([]models.Review, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewService) Add(ctx context.Context, propertyID string, in services.CreateReviewInput) (*models.Review, error) {
	args := m.Called(ctx, propertyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context) ([]models.Review, error) {
	return m.reviews(m.Called(ctx))
}

func (m *MockReviewService) ListByProperty(ctx context.Context, propertyID string) ([]models.Review, error) {
	return m.reviews(m.Called(ctx, propertyID))
}

func (m *MockReviewService) ListByReviewer(ctx context.Context, email string) ([]models.Review, error) {
	return m.reviews(m.Called(ctx, email))
}

func (m *MockReviewService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockWishlistService
type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) Add(ctx context.Context, user *models.PersonSnapshot, property *services.WishlistProperty) (*models.WishlistItem, error) {
	args := m.Called(ctx, user, property)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WishlistItem), args.Error(1)
}

func (m *MockWishlistService) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockWishlistService) Remove(ctx context.Context, userID, propertyID string) error {
	return m.Called(ctx, userID, propertyID).Error(0)
}

func (m *MockWishlistService) RemoveByProperty(ctx context.Context, propertyID string) error {
	return m.Called(ctx, propertyID).Error(0)
}

// MockIdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) user(args mock.Arguments) (*identity.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, email, password, displayName string) (*identity.User, error) {
	return m.user(m.Called(ctx, email, password, displayName))
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, uid string) (*identity.User, error) {
	return m.user(m.Called(ctx, uid))
}

func (m *MockIdentityProvider) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockIdentityProvider) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	args := m.Called(ctx, email, password)
	return args.Bool(0), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signatureHeader string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

// MockIdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, scope, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, scope, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, scope, key string) error {
	return m.Called(ctx, scope, key).Error(0)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GeneratePresignedPutURL(ctx context.Context, owner, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, owner, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStorage) GetObject(ctx context.Context, key string, maxBytes int64) ([]byte, string, error) {
	args := m.Called(ctx, key, maxBytes)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockStorage) PublicURL(key string) string {
	return m.Called(key).String(0)
}

func (m *MockStorage) KeyFromURL(rawURL string) (string, bool) {
	args := m.Called(rawURL)
	return args.String(0), args.Bool(1)
}

// MockEmailTemplateService
type MockEmailTemplateService struct {
	mock.Mock
}

func (m *MockEmailTemplateService) GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error) {
	args := m.Called(ctx, templateID, locale)
	if t := args.Get(0); t != nil {
		return t.(*models.EmailTemplate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	return m.Called(ctx, template).Error(0)
}

func (m *MockEmailTemplateService) DeleteTemplate(ctx context.Context, templateID, locale string) error {
	return m.Called(ctx, templateID, locale).Error(0)
}
