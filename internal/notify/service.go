package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/bookings"
	"github.com/fisiocan/booking-platform/internal/profiles"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// sendTimeout bounds each outbound email. Sends run detached from the
// request so a slow provider never delays a booking response.
const sendTimeout = 10 * time.Second

// ProfileDirectory resolves a client id to the profile the email goes to.
type ProfileDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error)
}

// Service emails booking lifecycle notifications to the client and the
// clinic admin. It implements bookings.Notifier; every send is
// best-effort and failures only get logged.
type Service struct {
	email      EmailSender
	profiles   ProfileDirectory
	adminEmail string
	logger     *logging.Logger

	// async is disabled in tests so sends can be asserted synchronously.
	async bool
}

// Ensure interface compliance
var _ bookings.Notifier = (*Service)(nil)

// NewService creates the booking notification service.
func NewService(email EmailSender, profileDir ProfileDirectory, adminEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	return &Service{
		email:      email,
		profiles:   profileDir,
		adminEmail: adminEmail,
		logger:     logger,
		async:      true,
	}
}

// BookingCreated notifies both parties about a new auto-accepted booking.
func (s *Service) BookingCreated(ctx context.Context, b *bookings.Booking) {
	s.dispatch(ctx, b,
		"Tu reserva en FisioCan",
		fmt.Sprintf("Hemos registrado tu reserva para el %s a las %s. ¡Te esperamos!", b.Date, b.StartTime),
		"Nueva reserva",
		fmt.Sprintf("Nueva reserva el %s a las %s (%s).", b.Date, b.StartTime, b.ServiceType),
	)
}

// BookingPendingConfirmation tells the client the booking needs admin
// review and asks the admin to confirm it.
func (s *Service) BookingPendingConfirmation(ctx context.Context, b *bookings.Booking) {
	s.dispatch(ctx, b,
		"Tu reserva está pendiente de confirmación",
		fmt.Sprintf("Tu reserva para el %s a las %s está pendiente de confirmación. Te avisaremos en cuanto la confirmemos.", b.Date, b.StartTime),
		"Reserva pendiente de confirmación",
		fmt.Sprintf("Reserva para mañana %s a las %s pendiente de tu confirmación.", b.Date, b.StartTime),
	)
}

// BookingConfirmed notifies the client the admin confirmed the booking.
func (s *Service) BookingConfirmed(ctx context.Context, b *bookings.Booking) {
	s.dispatch(ctx, b,
		"Reserva confirmada",
		fmt.Sprintf("Tu reserva para el %s a las %s ha sido confirmada. ¡Te esperamos!", b.Date, b.StartTime),
		"", "",
	)
}

// BookingCancelled notifies both parties, mentioning the late surcharge
// when one applies.
func (s *Service) BookingCancelled(ctx context.Context, b *bookings.Booking) {
	clientBody := fmt.Sprintf("Tu reserva del %s a las %s ha sido cancelada.", b.Date, b.StartTime)
	if b.SurchargeCents > 0 {
		clientBody += fmt.Sprintf(" Por cancelar con menos de 24 horas de antelación se aplica un cargo de %.2f €.", float64(b.SurchargeCents)/100)
	}
	s.dispatch(ctx, b,
		"Reserva cancelada",
		clientBody,
		"Reserva cancelada",
		fmt.Sprintf("La reserva del %s a las %s ha sido cancelada.", b.Date, b.StartTime),
	)
}

// BookingReminder reminds the client about tomorrow's appointment.
func (s *Service) BookingReminder(ctx context.Context, b *bookings.Booking) {
	s.dispatch(ctx, b,
		"Recordatorio de tu cita en FisioCan",
		fmt.Sprintf("Te recordamos tu cita de mañana %s a las %s.", b.Date, b.StartTime),
		"", "",
	)
}

func (s *Service) dispatch(ctx context.Context, b *bookings.Booking, clientSubject, clientBody, adminSubject, adminBody string) {
	run := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		s.sendToClient(ctx, b, clientSubject, clientBody)
		if adminSubject != "" && s.adminEmail != "" {
			s.send(ctx, EmailMessage{
				To:      s.adminEmail,
				ToName:  "FisioCan",
				Subject: adminSubject,
				Body:    adminBody,
			})
		}
	}
	if s.async {
		go run(context.WithoutCancel(ctx))
		return
	}
	run(ctx)
}

func (s *Service) sendToClient(ctx context.Context, b *bookings.Booking, subject, body string) {
	if s.profiles == nil {
		return
	}
	profile, err := s.profiles.GetByID(ctx, b.ClientID)
	if err != nil {
		s.logger.Error("profile lookup for notification failed", "error", err, "client_id", b.ClientID)
		return
	}
	s.send(ctx, EmailMessage{
		To:      profile.Email,
		ToName:  profile.FullName,
		Subject: subject,
		Body:    body,
	})
}

func (s *Service) send(ctx context.Context, msg EmailMessage) {
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notification send failed", "error", err, "to", msg.To, "subject", msg.Subject)
	}
}
