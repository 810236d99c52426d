package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diagnosis/doctors-portal/internal/domain"
)

type DoctorsRepo interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	Insert(ctx context.Context, d *domain.Doctor) (*domain.Doctor, error)
	DeleteByEmail(ctx context.Context, email string) (*domain.DeleteResult, error)
}

type DoctorsRepoImpl struct{ col *mongo.Collection }

func NewDoctorsRepo(c *Collections) *DoctorsRepoImpl { return &DoctorsRepoImpl{col: c.Doctors} }

func (r *DoctorsRepoImpl) List(ctx context.Context) ([]domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	doctors := make([]domain.Doctor, 0)
	if err := cur.All(ctx, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *DoctorsRepoImpl) Insert(ctx context.Context, d *domain.Doctor) (*domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, d)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return d, nil
}

func (r *DoctorsRepoImpl) DeleteByEmail(ctx context.Context, email string) (*domain.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	return &domain.DeleteResult{Deleted: res.DeletedCount}, nil
}
