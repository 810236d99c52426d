package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diagnosis/doctors-portal/internal/domain"
)

type UsersRepo interface {
	// Upsert writes the client-supplied user document under the email key.
	Upsert(ctx context.Context, email string, doc map[string]interface{}) (*domain.UpdateResult, error)
	// FindByEmail returns (nil, nil) when no user record exists.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	PromoteAdmin(ctx context.Context, email string) (*domain.UpdateResult, error)
}

type UsersRepoImpl struct{ col *mongo.Collection }

func NewUsersRepo(c *Collections) *UsersRepoImpl { return &UsersRepoImpl{col: c.Users} }

func (r *UsersRepoImpl) Upsert(ctx context.Context, email string, doc map[string]interface{}) (*domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// The email is keyed by path, never by body.
	delete(doc, "_id")
	doc["email"] = email

	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u domain.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := make([]domain.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UsersRepoImpl) PromoteAdmin(ctx context.Context, email string) (*domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"role": domain.RoleAdmin}},
	)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func updateResult(res *mongo.UpdateResult) *domain.UpdateResult {
	return &domain.UpdateResult{
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
		Upserted: res.UpsertedCount,
	}
}
