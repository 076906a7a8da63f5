package workflow

import (
	"context"

	"github.com/estatehub/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscribers is the service-side subscription contract. AddSubscriber
// and RemoveSubscriber are conditional updates that report
// store.ErrAlreadySubscribed / store.ErrNotSubscribed when the caller
// lost the race or repeated the call.
type Subscribers interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	AddSubscriber(ctx context.Context, serviceID, userID primitive.ObjectID) error
	RemoveSubscriber(ctx context.Context, serviceID, userID primitive.ObjectID) error
}

// Subscriptions keeps Service.subscribers and User.subscribedServices in
// step. The service-side conditional update decides the outcome; the user
// array is the mirror.
type Subscriptions struct {
	services Subscribers
	users    UserSets
}

func NewSubscriptions(services Subscribers, users UserSets) *Subscriptions {
	return &Subscriptions{services: services, users: users}
}

func (s *Subscriptions) Subscribe(ctx context.Context, serviceID, userID primitive.ObjectID) error {
	if err := s.services.AddSubscriber(ctx, serviceID, userID); err != nil {
		return err
	}
	return s.users.AddToSet(ctx, userID, models.KindService.PurchasedField(), serviceID)
}

func (s *Subscriptions) Unsubscribe(ctx context.Context, serviceID, userID primitive.ObjectID) error {
	if err := s.services.RemoveSubscriber(ctx, serviceID, userID); err != nil {
		return err
	}
	return s.users.PullFromSet(ctx, userID, models.KindService.PurchasedField(), serviceID)
}
