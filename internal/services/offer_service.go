package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/payment"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

const (
	MsgOfferNotAccepted     = "Offer is not accepted"
	MsgPaymentNotConfirmed  = "Payment has not been confirmed"
	MsgPropertySold         = "Property has already been sold"
	MsgOfferBeingProcessed  = "Another offer on this property is being processed"
	MsgNotAgentForProperty  = "You are not the agent for this property"
	MsgTransactionRequired  = "Payment transaction id is required"
	MsgInvalidPaymentStatus = "Invalid payment status"
)

// OfferListing identifies the listing an offer is made on. Only PropertyID is
// trusted; the remaining listing fields are read back from the store.
type OfferListing struct {
	PropertyID string `json:"propertyId"`
}

// CreateOfferInput is the bidder-supplied part of a new offer.
type CreateOfferInput struct {
	User        *models.PersonSnapshot `json:"user"`
	Property    *OfferListing          `json:"property"`
	OfferAmount float64                `json:"offerAmount"`
	BuyingDate  string                 `json:"buyingDate"`
}

// IOfferService defines the offer store and the offer resolution workflow.
type IOfferService interface {
	CreateOffer(ctx context.Context, in CreateOfferInput) (*models.Offer, error)
	// AcceptOffer accepts offerID and rejects every other offer on the same listing
	// in one transaction. actorEmail, when set, must be the listing agent.
	AcceptOffer(ctx context.Context, offerID, actorEmail string) error
	RejectOffer(ctx context.Context, offerID, actorEmail string) error
	RecordOfferPayment(ctx context.Context, offerID, transactionID, status string) error
	ConfirmPayment(ctx context.Context, offerID, transactionID string) error
	ListByBuyer(ctx context.Context, userID string) ([]models.Offer, error)
	ListByAgent(ctx context.Context, agentEmail string) ([]models.Offer, error)
	ListSoldByAgent(ctx context.Context, agentEmail string) ([]models.Offer, error)
	ListByProperty(ctx context.Context, propertyID string) ([]models.Offer, error)
}

// offerService implements IOfferService.
type offerService struct {
	db         *mongo.Database
	locker     cache.ILocker
	lockTTL    time.Duration
	gateway    payment.IGateway
	publisher  events.IPublisher
	queue      ITaskQueue
	properties IPropertyService
}

// OfferServiceDeps groups the optional collaborators of the offer service.
// A nil Locker skips the advisory lock; a nil Gateway skips payment verification.
type OfferServiceDeps struct {
	Locker    cache.ILocker
	LockTTL   time.Duration
	Gateway   payment.IGateway
	Publisher events.IPublisher
	Queue     ITaskQueue
}

// NewOfferService creates a new OfferService.
func NewOfferService(db *mongo.Database, properties IPropertyService, deps OfferServiceDeps) IOfferService {
	if deps.Queue == nil {
		deps.Queue = NewNoopQueue()
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 10 * time.Second
	}
	return &offerService{
		db:         db,
		locker:     deps.Locker,
		lockTTL:    deps.LockTTL,
		gateway:    deps.Gateway,
		publisher:  deps.Publisher,
		queue:      deps.Queue,
		properties: properties,
	}
}

func (s *offerService) collection() *mongo.Collection {
	return s.db.Collection(db.OffersCollection)
}

// parseBuyingDate accepts full timestamps and plain calendar dates.
func parseBuyingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewValidationError("Invalid buying date")
}

// CreateOffer validates the amount against the stored price range and inserts a pending offer.
func (s *offerService) CreateOffer(ctx context.Context, in CreateOfferInput) (*models.Offer, error) {
	ctx, span := utils.StartSpan(ctx, "OfferService.CreateOffer")
	defer span.End()

	if in.User == nil || strings.TrimSpace(in.User.UserID) == "" || in.Property == nil ||
		strings.TrimSpace(in.Property.PropertyID) == "" || in.OfferAmount <= 0 || strings.TrimSpace(in.BuyingDate) == "" {
		return nil, NewValidationError(MsgFieldsRequired)
	}
	buyingDate, err := parseBuyingDate(in.BuyingDate)
	if err != nil {
		return nil, err
	}

	property, err := s.properties.GetByPropertyID(ctx, strings.TrimSpace(in.Property.PropertyID))
	if err != nil {
		return nil, err
	}
	if !property.PriceRange.Contains(in.OfferAmount) {
		return nil, NewValidationError(fmt.Sprintf("Offer amount must be between %s and %s",
			formatAmount(property.PriceRange.Min), formatAmount(property.PriceRange.Max)))
	}

	now := time.Now().UTC()
	offer := &models.Offer{
		Base:        models.NewBase(),
		User:        *in.User,
		PropertyID:  property.PropertyID,
		Title:       property.Title,
		Location:    property.Location,
		Image:       property.Image,
		Agent:       property.Agent,
		OfferAmount: in.OfferAmount,
		BuyingDate:  buyingDate,
		Status:      models.OfferStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.collection().InsertOne(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to insert offer on %s: %w", property.PropertyID, err)
	}
	utils.OffersCreatedTotal.Inc()

	evt := events.NewEvent(events.TypeOfferCreated, offer.PropertyID)
	evt.OfferID = offer.ID.Hex()
	evt.Status = string(offer.Status)
	evt.Attributes = map[string]string{"offerAmount": formatAmount(offer.OfferAmount)}
	publish(ctx, s.publisher, evt)
	s.notify(ctx, offer.Agent.Email, TemplateOfferReceived, offer)
	return offer, nil
}

// AcceptOffer is the only write that touches more than one offer. The Redis lock
// fast-fails a concurrent accept on the same listing; the transaction is what
// keeps exactly one offer accepted.
func (s *offerService) AcceptOffer(ctx context.Context, offerID, actorEmail string) error {
	ctx, span := utils.StartSpan(ctx, "OfferService.AcceptOffer")
	defer span.End()
	start := time.Now()

	oid, err := parseObjectID(offerID, MsgOfferNotFound)
	if err != nil {
		return err
	}
	offer, err := s.findByID(ctx, oid)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("propertyId", offer.PropertyID))

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "accept:"+offer.PropertyID, s.lockTTL)
		if err != nil {
			return err
		}
		if !ok {
			return NewConflictError(MsgOfferBeingProcessed)
		}
		defer release()
	}

	var accepted models.Offer
	var competitors []models.Offer
	err = db.WithTransaction(ctx, s.db.Client(), func(sessCtx mongo.SessionContext) error {
		// The callback may run more than once on transient errors.
		competitors = nil
		if err := s.collection().FindOne(sessCtx, bson.M{"_id": oid}).Decode(&accepted); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return NewNotFoundError(MsgOfferNotFound)
			}
			return fmt.Errorf("failed to read offer %s: %w", offerID, err)
		}
		if err := checkAgent(accepted, actorEmail); err != nil {
			return err
		}

		sold, err := s.collection().CountDocuments(sessCtx, bson.M{
			"propertyId": accepted.PropertyID,
			"status":     models.OfferStatusBought,
		})
		if err != nil {
			return fmt.Errorf("failed to check sold offers on %s: %w", accepted.PropertyID, err)
		}
		if sold > 0 {
			return NewConflictError(MsgPropertySold)
		}

		now := time.Now().UTC()
		if _, err := s.collection().UpdateOne(sessCtx, bson.M{"_id": oid},
			bson.M{"$set": bson.M{"status": models.OfferStatusAccepted, "updatedAt": now}}); err != nil {
			return fmt.Errorf("failed to accept offer %s: %w", offerID, err)
		}

		others := bson.M{"propertyId": accepted.PropertyID, "_id": bson.M{"$ne": oid}}
		competitors, err = findAll[models.Offer](sessCtx, s.collection(), others)
		if err != nil {
			return err
		}
		if _, err := s.collection().UpdateMany(sessCtx, others,
			bson.M{"$set": bson.M{"status": models.OfferStatusRejected, "updatedAt": now}}); err != nil {
			return fmt.Errorf("failed to reject competing offers on %s: %w", accepted.PropertyID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.OffersResolvedTotal.WithLabelValues("accepted").Inc()
	utils.OfferAcceptLatency.Observe(time.Since(start).Seconds())
	utils.Logger().Info("offer accepted",
		zap.String("offerId", offerID),
		zap.String("propertyId", accepted.PropertyID),
		zap.Int("rejected", len(competitors)))

	accepted.Status = models.OfferStatusAccepted
	evts := []events.Event{offerEvent(events.TypeOfferAccepted, accepted)}
	for _, c := range competitors {
		c.Status = models.OfferStatusRejected
		evts = append(evts, offerEvent(events.TypeOfferRejected, c))
	}
	publish(ctx, s.publisher, evts...)

	s.notify(ctx, accepted.User.Email, TemplateOfferAccepted, &accepted)
	for i := range competitors {
		// Already-rejected bidders were notified when that happened.
		if competitors[i].Status == models.OfferStatusRejected {
			continue
		}
		s.notify(ctx, competitors[i].User.Email, TemplateOfferRejected, &competitors[i])
	}
	return nil
}

// RejectOffer rejects a single offer with no effect on other offers.
func (s *offerService) RejectOffer(ctx context.Context, offerID, actorEmail string) error {
	ctx, span := utils.StartSpan(ctx, "OfferService.RejectOffer")
	defer span.End()

	oid, err := parseObjectID(offerID, MsgOfferNotFound)
	if err != nil {
		return err
	}
	offer, err := s.findByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := checkAgent(*offer, actorEmail); err != nil {
		return err
	}

	_, err = s.collection().UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": models.OfferStatusRejected, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to reject offer %s: %w", offerID, err)
	}
	utils.OffersResolvedTotal.WithLabelValues("rejected").Inc()

	offer.Status = models.OfferStatusRejected
	publish(ctx, s.publisher, offerEvent(events.TypeOfferRejected, *offer))
	s.notify(ctx, offer.User.Email, TemplateOfferRejected, offer)
	return nil
}

// RecordOfferPayment marks an accepted offer as bought once the payment is confirmed
// by the gateway. Repeating the call with the same transaction id is a no-op.
func (s *offerService) RecordOfferPayment(ctx context.Context, offerID, transactionID, status string) error {
	ctx, span := utils.StartSpan(ctx, "OfferService.RecordOfferPayment")
	defer span.End()

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return NewValidationError(MsgTransactionRequired)
	}
	if status != "" && status != string(models.OfferStatusBought) {
		return NewValidationError(MsgInvalidPaymentStatus)
	}
	oid, err := parseObjectID(offerID, MsgOfferNotFound)
	if err != nil {
		return err
	}
	offer, err := s.findByID(ctx, oid)
	if err != nil {
		return err
	}

	if s.gateway != nil {
		intent, err := s.gateway.GetIntent(ctx, transactionID)
		if err != nil {
			utils.Logger().Warn("payment intent lookup failed", zap.String("offerId", offerID), zap.Error(err))
			return NewValidationError(MsgPaymentNotConfirmed)
		}
		linked := intent.Metadata[payment.MetadataOfferID]
		if !intent.Succeeded() || (linked != "" && linked != offer.ID.Hex()) {
			return NewValidationError(MsgPaymentNotConfirmed)
		}
	}
	return s.markBought(ctx, offer, transactionID)
}

// ConfirmPayment applies a payment confirmed through a verified webhook.
func (s *offerService) ConfirmPayment(ctx context.Context, offerID, transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return NewValidationError(MsgTransactionRequired)
	}
	oid, err := parseObjectID(offerID, MsgOfferNotFound)
	if err != nil {
		return err
	}
	offer, err := s.findByID(ctx, oid)
	if err != nil {
		return err
	}
	return s.markBought(ctx, offer, strings.TrimSpace(transactionID))
}

func (s *offerService) markBought(ctx context.Context, offer *models.Offer, transactionID string) error {
	if offer.Status == models.OfferStatusBought && offer.PaymentTransactionID == transactionID {
		return nil
	}
	if offer.Status != models.OfferStatusAccepted {
		return NewConflictError(MsgOfferNotAccepted)
	}

	res, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": offer.ID, "status": models.OfferStatusAccepted},
		bson.M{"$set": bson.M{
			"status":               models.OfferStatusBought,
			"paymentTransactionId": transactionID,
			"updatedAt":            time.Now().UTC(),
		}})
	if err != nil {
		return fmt.Errorf("failed to record payment for offer %s: %w", offer.ID.Hex(), err)
	}
	if res.ModifiedCount == 0 {
		return NewConflictError(MsgOfferNotAccepted)
	}

	offer.Status = models.OfferStatusBought
	offer.PaymentTransactionID = transactionID
	evt := offerEvent(events.TypeOfferBought, *offer)
	evt.Attributes = map[string]string{"paymentTransactionId": transactionID}
	publish(ctx, s.publisher, evt)
	s.notify(ctx, offer.Agent.Email, TemplateOfferBought, offer)
	return nil
}

func (s *offerService) ListByBuyer(ctx context.Context, userID string) ([]models.Offer, error) {
	return findAll[models.Offer](ctx, s.collection(), bson.M{"user.userId": userID})
}

func (s *offerService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Offer, error) {
	return findAll[models.Offer](ctx, s.collection(), bson.M{"agent.email": agentEmail})
}

func (s *offerService) ListSoldByAgent(ctx context.Context, agentEmail string) ([]models.Offer, error) {
	return findAll[models.Offer](ctx, s.collection(), bson.M{"agent.email": agentEmail, "status": models.OfferStatusBought})
}

func (s *offerService) ListByProperty(ctx context.Context, propertyID string) ([]models.Offer, error) {
	return findAll[models.Offer](ctx, s.collection(), bson.M{"propertyId": propertyID})
}

func (s *offerService) findByID(ctx context.Context, oid primitive.ObjectID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&offer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError(MsgOfferNotFound)
		}
		return nil, fmt.Errorf("failed to find offer %s: %w", oid.Hex(), err)
	}
	return &offer, nil
}

// notify queues an email about offer. Queue failures never fail the caller.
func (s *offerService) notify(ctx context.Context, to, templateID string, offer *models.Offer) {
	if strings.TrimSpace(to) == "" {
		return
	}
	data := map[string]interface{}{
		"OfferID":     offer.ID.Hex(),
		"PropertyID":  offer.PropertyID,
		"Title":       offer.Title,
		"Location":    offer.Location,
		"OfferAmount": formatAmount(offer.OfferAmount),
		"BuyerName":   offer.User.Name,
		"AgentName":   offer.Agent.Name,
		"Status":      string(offer.Status),
	}
	if err := s.queue.EnqueueEmail(ctx, to, templateID, data); err != nil {
		utils.Logger().Warn("failed to enqueue offer email",
			zap.String("templateId", templateID),
			zap.String("offerId", offer.ID.Hex()),
			zap.Error(err))
	}
}

func checkAgent(offer models.Offer, actorEmail string) error {
	if actorEmail != "" && !strings.EqualFold(strings.TrimSpace(actorEmail), offer.Agent.Email) {
		return NewForbiddenError(MsgNotAgentForProperty)
	}
	return nil
}

func offerEvent(eventType string, offer models.Offer) events.Event {
	evt := events.NewEvent(eventType, offer.PropertyID)
	evt.OfferID = offer.ID.Hex()
	evt.Status = string(offer.Status)
	return evt
}
