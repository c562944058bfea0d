// Package notificaciones emails patients about their appointments. Sends
// are best-effort; a mail failure never fails the operation that triggered
// it.
package notificaciones

import (
	"context"
	"fmt"

	"github.com/pielsano/podoclinic/internal/citas"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Service implements citas.Notifier on top of an EmailSender.
type Service struct {
	email   EmailSender
	logger  *logging.Logger
	timeFmt string
}

func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger, timeFmt: "02/01/2006 15:04"}
}

// CitaAgendada sends a confirmation email to the patient, when an email is
// on file.
func (s *Service) CitaAgendada(ctx context.Context, c citas.Cita) {
	if s.email == nil || c.Paciente == nil || c.Paciente.Email == "" {
		return
	}

	podologo := "su podólogo"
	if c.Podologo != nil {
		podologo = fmt.Sprintf("%s %s", c.Podologo.Nombres, c.Podologo.Apellidos)
	}
	body := fmt.Sprintf(
		"Hola %s,\n\nSu cita con %s ha quedado agendada para el %s.\n\nSi necesita reagendar, llámenos.",
		c.Paciente.Nombres, podologo, c.FechaHora.Format(s.timeFmt))

	msg := EmailMessage{
		To:      c.Paciente.Email,
		ToName:  fmt.Sprintf("%s %s", c.Paciente.Nombres, c.Paciente.Apellidos),
		Subject: "Confirmación de cita",
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send confirmation email", "cita_id", c.ID, "error", err)
	}
}

// CitaCancelada notifies the patient their appointment was cancelled.
func (s *Service) CitaCancelada(ctx context.Context, c citas.Cita) {
	if s.email == nil || c.Paciente == nil || c.Paciente.Email == "" {
		return
	}

	body := fmt.Sprintf(
		"Hola %s,\n\nSu cita del %s ha sido cancelada. Contáctenos para reagendar.",
		c.Paciente.Nombres, c.FechaHora.Format(s.timeFmt))

	msg := EmailMessage{
		To:      c.Paciente.Email,
		ToName:  fmt.Sprintf("%s %s", c.Paciente.Nombres, c.Paciente.Apellidos),
		Subject: "Cita cancelada",
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send cancellation email", "cita_id", c.ID, "error", err)
	}
}
