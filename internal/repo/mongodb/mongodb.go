package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/diagnosis/doctors-portal/pkg/config"
)

const opTimeout = 3 * time.Second

// Collections bundles the portal's five collections behind one long-lived client.
type Collections struct {
	Services *mongo.Collection
	Bookings *mongo.Collection
	Users    *mongo.Collection
	Doctors  *mongo.Collection
	Payments *mongo.Collection
}

func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

func NewCollections(client *mongo.Client, database string) *Collections {
	db := client.Database(database)
	return &Collections{
		Services: db.Collection("services"),
		Bookings: db.Collection("booking"),
		Users:    db.Collection("user"),
		Doctors:  db.Collection("doctors"),
		Payments: db.Collection("payments"),
	}
}

// EnsureIndexes creates the uniqueness constraints the API relies on. The
// compound booking index closes the read-then-insert duplicate race at the
// store; the handler still answers duplicates with the existing document.
func EnsureIndexes(ctx context.Context, c *Collections) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = c.Doctors.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = c.Bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "treatment", Value: 1},
			{Key: "date", Value: 1},
			{Key: "patient", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}
