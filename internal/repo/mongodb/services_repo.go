package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diagnosis/doctors-portal/internal/domain"
)

type ServicesRepo interface {
	// ListNames projects name only, for the public service listing.
	ListNames(ctx context.Context) ([]domain.Service, error)
	// ListAll returns every service with its full slot list.
	ListAll(ctx context.Context) ([]domain.Service, error)
}

type ServicesRepoImpl struct{ col *mongo.Collection }

func NewServicesRepo(c *Collections) *ServicesRepoImpl { return &ServicesRepoImpl{col: c.Services} }

func (r *ServicesRepoImpl) ListNames(ctx context.Context) ([]domain.Service, error) {
	return r.list(ctx, options.Find().SetProjection(bson.M{"name": 1}))
}

func (r *ServicesRepoImpl) ListAll(ctx context.Context) ([]domain.Service, error) {
	return r.list(ctx)
}

func (r *ServicesRepoImpl) list(ctx context.Context, opts ...*options.FindOptions) ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	services := make([]domain.Service, 0)
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}
