package availability

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/doctors-portal/internal/domain"
)

type ServicesLister interface {
	ListAll(ctx context.Context) ([]domain.Service, error)
}

type BookingsByDate interface {
	ListByDate(ctx context.Context, date string) ([]domain.Booking, error)
}

type Service struct {
	services ServicesLister
	bookings BookingsByDate
}

func New(services ServicesLister, bookings BookingsByDate) *Service {
	return &Service{services: services, bookings: bookings}
}

// ForDate returns every service with its slot list narrowed to the slots not
// yet booked on the given date. This is a read-only projection; the stored
// slot lists stay untouched. O(services x bookings) in memory.
// TODO: move the subtraction into an aggregation pipeline once slot volume
// justifies it.
func (s *Service) ForDate(ctx context.Context, date string) ([]domain.Service, error) {
	var (
		services []domain.Service
		bookings []domain.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		services, err = s.services.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = s.bookings.ListByDate(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range services {
		booked := make(map[string]struct{})
		for _, b := range bookings {
			if b.Treatment == services[i].Name {
				booked[b.Slot] = struct{}{}
			}
		}
		services[i].Slots = subtractSlots(services[i].Slots, booked)
	}
	return services, nil
}

// subtractSlots preserves the original slot order.
func subtractSlots(slots []string, booked map[string]struct{}) []string {
	available := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, taken := booked[slot]; !taken {
			available = append(available, slot)
		}
	}
	return available
}
