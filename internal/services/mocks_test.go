package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/identity"
	"github.com/hasanRafi2002/asgn-12-server/internal/payment"
)

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type queuedEmail struct {
	To         string
	TemplateID string
}

// recordingQueue keeps every enqueued task in memory.
type recordingQueue struct {
	mu     sync.Mutex
	emails []queuedEmail
	images []string
}

func (q *recordingQueue) EnqueueEmail(_ context.Context, to, templateID string, _ map[string]interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emails = append(q.emails, queuedEmail{To: to, TemplateID: templateID})
	return nil
}

func (q *recordingQueue) EnqueueImageProcess(_ context.Context, s3Key, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.images = append(q.images, s3Key)
	return nil
}

// mockGateway is a testify mock of payment.IGateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *mockGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signatureHeader string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

// mockProvider is a testify mock of identity.IProvider.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateUser(ctx context.Context, email, password, displayName string) (*identity.User, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockProvider) GetUser(ctx context.Context, uid string) (*identity.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockProvider) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockProvider) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockProvider) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	args := m.Called(ctx, email, password)
	return args.Bool(0), args.Error(1)
}
