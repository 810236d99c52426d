package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diagnosis/doctors-portal/internal/domain"
)

type PaymentsRepo interface {
	// Insert appends the confirmation payload verbatim. Write-once; there
	// is no read path in the API.
	Insert(ctx context.Context, p domain.PaymentRecord) error
}

type PaymentsRepoImpl struct{ col *mongo.Collection }

func NewPaymentsRepo(c *Collections) *PaymentsRepoImpl { return &PaymentsRepoImpl{col: c.Payments} }

func (r *PaymentsRepoImpl) Insert(ctx context.Context, p domain.PaymentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	return err
}
