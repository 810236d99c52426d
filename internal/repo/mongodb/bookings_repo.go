package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diagnosis/doctors-portal/internal/domain"
)

// ErrDuplicateBooking is returned by Insert when the unique
// (treatment, date, patient) index rejects the write.
var ErrDuplicateBooking = errors.New("duplicate booking")

type BookingsRepo interface {
	// FindDuplicate returns an existing booking for the same
	// (treatment, date, patient) triple, or (nil, nil).
	FindDuplicate(ctx context.Context, treatment, date, patient string) (*domain.Booking, error)
	// Insert fails with ErrDuplicateBooking on a unique-index collision.
	// The find-then-insert sequence in the handler is not atomic; without
	// the index two concurrent identical submissions can both land.
	Insert(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	ListByPatient(ctx context.Context, patient string) ([]domain.Booking, error)
	ListByDate(ctx context.Context, date string) ([]domain.Booking, error)
	// Confirm sets paid and the transaction id. A zero Matched count on
	// the result means the id matched nothing.
	Confirm(ctx context.Context, id primitive.ObjectID, transactionID string) (*domain.UpdateResult, error)
}

type BookingsRepoImpl struct{ col *mongo.Collection }

func NewBookingsRepo(c *Collections) *BookingsRepoImpl { return &BookingsRepoImpl{col: c.Bookings} }

func (r *BookingsRepoImpl) FindDuplicate(ctx context.Context, treatment, date, patient string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var b domain.Booking
	err := r.col.FindOne(ctx, bson.M{
		"treatment": treatment,
		"date":      date,
		"patient":   patient,
	}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingsRepoImpl) Insert(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	b.CreatedAt = time.Now()
	res, err := r.col.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateBooking
	}
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return b, nil
}

func (r *BookingsRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var b domain.Booking
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingsRepoImpl) ListByPatient(ctx context.Context, patient string) ([]domain.Booking, error) {
	return r.list(ctx, bson.M{"patient": patient})
}

func (r *BookingsRepoImpl) ListByDate(ctx context.Context, date string) ([]domain.Booking, error) {
	return r.list(ctx, bson.M{"date": date})
}

func (r *BookingsRepoImpl) list(ctx context.Context, filter bson.M) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bookings := make([]domain.Booking, 0)
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingsRepoImpl) Confirm(ctx context.Context, id primitive.ObjectID, transactionID string) (*domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paid": true, "transactionId": transactionID}},
	)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}
