package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// findAll decodes every document matching filter. It never returns a nil slice
// so empty results encode as [] rather than null.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return results, nil
}

// formatAmount renders a number the way clients print it: no trailing zeros, no exponent.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// publishTimeout bounds how long a committed request waits on the event publisher.
var publishTimeout = 2 * time.Second

// publish sends events after a committed write. Delivery failures are logged, not returned.
// The request's cancellation does not apply; publishTimeout does.
func publish(ctx context.Context, publisher events.IPublisher, evts ...events.Event) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, evts...); err != nil {
		utils.Logger().Warn("failed to publish domain events",
			zap.String("type", evts[0].EventType),
			zap.String("propertyId", evts[0].PropertyID),
			zap.Error(err))
	}
}
