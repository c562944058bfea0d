package notificaciones

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pielsano/podoclinic/internal/citas"
	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/internal/podologos"
)

type capturingSender struct {
	sent []EmailMessage
	err  error
}

func (c *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func sampleCita() citas.Cita {
	return citas.Cita{
		ID:        1,
		FechaHora: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Paciente: &pacientes.Paciente{
			Nombres: "Ana", Apellidos: "Torres", Email: "ana@example.com",
		},
		Podologo: &podologos.Podologo{Nombres: "Luis", Apellidos: "Mendoza"},
	}
}

func TestCitaAgendadaSendsConfirmation(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, nil)

	svc.CitaAgendada(context.Background(), sampleCita())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Confirmación de cita", msg.Subject)
	assert.Contains(t, msg.Body, "Luis Mendoza")
	assert.Contains(t, msg.Body, "02/03/2026 09:00")
}

func TestCitaCanceladaSendsNotice(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, nil)

	svc.CitaCancelada(context.Background(), sampleCita())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Cita cancelada", sender.sent[0].Subject)
}

func TestNoEmailOnFileSkipsSend(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, nil)

	c := sampleCita()
	c.Paciente.Email = ""
	svc.CitaAgendada(context.Background(), c)

	c.Paciente = nil
	svc.CitaAgendada(context.Background(), c)

	assert.Empty(t, sender.sent)
}

func TestSendFailureIsSwallowed(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	svc := NewService(sender, nil)

	// Must not panic or propagate; the scheduling flow already succeeded.
	svc.CitaAgendada(context.Background(), sampleCita())
	svc.CitaCancelada(context.Background(), sampleCita())
}

func TestStubSenderAlwaysSucceeds(t *testing.T) {
	stub := NewStubEmailSender(nil)
	assert.NoError(t, stub.Send(context.Background(), EmailMessage{To: "x@example.com"}))
}
