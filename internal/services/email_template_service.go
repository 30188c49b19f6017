package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
)

// Default email templates used as fallback when not found in database
var defaultEmailTemplates = map[string]models.EmailTemplate{
	TemplateOfferReceived: {
		TemplateID: TemplateOfferReceived,
		Locale:     "en-US",
		Subject:    "New offer on {{.Title}}",
		Body:       "{{.BuyerName}} offered {{.OfferAmount}} for {{.Title}} ({{.Location}}).",
	},
	TemplateOfferAccepted: {
		TemplateID: TemplateOfferAccepted,
		Locale:     "en-US",
		Subject:    "Your offer on {{.Title}} was accepted",
		Body:       "Hi {{.BuyerName}}, {{.AgentName}} accepted your offer of {{.OfferAmount}} for {{.Title}}. You can now complete the payment.",
	},
	TemplateOfferRejected: {
		TemplateID: TemplateOfferRejected,
		Locale:     "en-US",
		Subject:    "Your offer on {{.Title}} was not accepted",
		Body:       "Hi {{.BuyerName}}, your offer of {{.OfferAmount}} for {{.Title}} was rejected.",
	},
	TemplateOfferBought: {
		TemplateID: TemplateOfferBought,
		Locale:     "en-US",
		Subject:    "{{.Title}} has been paid for",
		Body:       "{{.BuyerName}} completed the payment of {{.OfferAmount}} for {{.Title}}.",
	},
}

// IEmailTemplateService defines the interface for email template operations.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
	SaveTemplate(ctx context.Context, template *models.EmailTemplate) error
	DeleteTemplate(ctx context.Context, templateID, locale string) error
}

// ErrTemplateNotFound is returned when neither the database nor the defaults know a template.
var ErrTemplateNotFound = errors.New("email template not found")

// EmailTemplateService handles operations related to email templates
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new instance of EmailTemplateService
func NewEmailTemplateService(db *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{
		db: db,
	}
}

func (s *EmailTemplateService) collection() *mongo.Collection {
	return s.db.Collection(db.EmailTemplatesCollection)
}

// GetTemplate retrieves an email template by ID and locale
func (s *EmailTemplateService) GetTemplate(ctx context.Context, templateID string, locale string) (*models.EmailTemplate, error) {
	filter := bson.M{
		"templateId": templateID,
		"locale":     locale,
	}

	var template models.EmailTemplate
	err := s.collection().FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// If template not found in DB, try to get from defaults
			if defaultTemplate, ok := defaultEmailTemplates[templateID]; ok {
				return &defaultTemplate, nil
			}
			return nil, fmt.Errorf("%w: %s (locale: %s)", ErrTemplateNotFound, templateID, locale)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}

	return &template, nil
}

// SaveTemplate saves an email template to the database
func (s *EmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	filter := bson.M{
		"templateId": template.TemplateID,
		"locale":     template.Locale,
	}

	update := bson.M{"$set": bson.M{"subject": template.Subject, "body": template.Body}}
	opts := options.Update().SetUpsert(true)

	_, err := s.collection().UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("error saving template: %w", err)
	}

	return nil
}

// DeleteTemplate deletes an email template from the database
func (s *EmailTemplateService) DeleteTemplate(ctx context.Context, templateID string, locale string) error {
	filter := bson.M{
		"templateId": templateID,
		"locale":     locale,
	}

	_, err := s.collection().DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}

	return nil
}
