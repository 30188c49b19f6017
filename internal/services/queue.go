package services

import (
	"context"
)

// Email template ids sent by the offer workflow.
const (
	TemplateOfferReceived = "offer_received"
	TemplateOfferAccepted = "offer_accepted"
	TemplateOfferRejected = "offer_rejected"
	TemplateOfferBought   = "offer_bought"
)

// ITaskQueue hands work to the background workers.
type ITaskQueue interface {
	EnqueueEmail(ctx context.Context, to, templateID string, data map[string]interface{}) error
	EnqueueImageProcess(ctx context.Context, s3Key, propertyID string) error
}

type noopQueue struct{}

// NewNoopQueue returns a queue that drops every task.
func NewNoopQueue() ITaskQueue { return noopQueue{} }

func (noopQueue) EnqueueEmail(context.Context, string, string, map[string]interface{}) error {
	return nil
}

func (noopQueue) EnqueueImageProcess(context.Context, string, string) error { return nil }
