package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/schedule"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// DefaultSweepInterval is how often the sweeper wakes up.
const DefaultSweepInterval = 5 * time.Minute

type sweeperStore interface {
	MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListRemindersDue(ctx context.Context, date string) ([]*Booking, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// Sweeper periodically completes past bookings and sends next-day
// reminders. It runs inside the API process.
type Sweeper struct {
	store    sweeperStore
	notifier Notifier
	logger   *logging.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSweeper creates the background sweeper.
func NewSweeper(store sweeperStore, notifier Notifier, logger *logging.Logger, now func() time.Time) *Sweeper {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Sweeper{
		store:    store,
		notifier: notifier,
		logger:   logger,
		interval: DefaultSweepInterval,
		now:      now,
	}
}

// WithInterval overrides the sweep interval.
func (s *Sweeper) WithInterval(d time.Duration) *Sweeper {
	if d > 0 {
		s.interval = d
	}
	return s
}

// Run sweeps until the context is cancelled. One sweep happens
// immediately on start.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: completion first, then reminders for tomorrow's
// bookings.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	completed, err := s.store.MarkCompletedBefore(ctx, now)
	if err != nil {
		s.logger.Error("completion sweep failed", "error", err)
	} else if completed > 0 {
		s.logger.Info("bookings completed", "count", completed)
	}

	tomorrow := now.AddDate(0, 0, 1).Format(schedule.DateLayout)
	due, err := s.store.ListRemindersDue(ctx, tomorrow)
	if err != nil {
		s.logger.Error("reminder sweep failed", "error", err, "date", tomorrow)
		return
	}
	for _, b := range due {
		s.notifier.BookingReminder(ctx, b)
		if err := s.store.MarkReminderSent(ctx, b.ID); err != nil {
			s.logger.Error("mark reminder sent failed", "error", err, "booking_id", b.ID)
		}
	}
	if len(due) > 0 {
		s.logger.Info("reminders sent", "count", len(due), "date", tomorrow)
	}
}
