package citas

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/internal/podologos"
	"github.com/pielsano/podoclinic/internal/servicios"
	"github.com/pielsano/podoclinic/pkg/logging"
)

var citasTracer = otel.Tracer("podoclinic.internal.citas")

// ReferenceDirectory resolves the denormalized display copies embedded in
// each cita. All three reference repositories satisfy their slice of it.
type ReferenceDirectory interface {
	Paciente(ctx context.Context, id int64) (*pacientes.Paciente, error)
	Podologo(ctx context.Context, id int64) (*podologos.Podologo, error)
	Servicio(ctx context.Context, id int64) (*servicios.Servicio, error)
}

// Notifier receives appointment lifecycle events. Optional; a nil notifier
// disables email entirely.
type Notifier interface {
	CitaAgendada(ctx context.Context, c Cita)
	CitaCancelada(ctx context.Context, c Cita)
}

// OperationObserver counts appointment mutations for the metrics endpoint.
type OperationObserver interface {
	ObserveCitaOperation(operation string)
}

// Service owns appointment business rules: validation, duration and status
// defaulting, reference hydration and audit. Persistence is delegated to
// the Repository.
type Service struct {
	repo     Repository
	refs     ReferenceDirectory
	audit    auditoria.Recorder
	notifier Notifier
	observer OperationObserver
	logger   *logging.Logger

	// DefaultDuracionMinutos is used when neither the request nor the
	// chosen servicio supplies a duration.
	DefaultDuracionMinutos int
}

// NewService constructs a citas service. refs may be nil, in which case
// citas are returned without hydrated reference copies.
func NewService(repo Repository, refs ReferenceDirectory, audit auditoria.Recorder, logger *logging.Logger) *Service {
	if repo == nil {
		panic("citas: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:                   repo,
		refs:                   refs,
		audit:                  audit,
		logger:                 logger,
		DefaultDuracionMinutos: 30,
	}
}

// WithNotifier attaches an email notifier. Returns s for chaining.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithObserver attaches a mutation counter. Returns s for chaining.
func (s *Service) WithObserver(o OperationObserver) *Service {
	s.observer = o
	return s
}

func (s *Service) observe(operation string) {
	if s.observer != nil {
		s.observer.ObserveCitaOperation(operation)
	}
}

// List returns hydrated citas matching the filters, ordered by start time.
func (s *Service) List(ctx context.Context, f Filters) ([]Cita, error) {
	ctx, span := citasTracer.Start(ctx, "citas.list")
	defer span.End()

	out, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.hydrateAll(ctx, out)
	return out, nil
}

// Calendar returns every cita starting inside the inclusive [from, to]
// window. Cancelled citas are included; the caller decides how to render
// them.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) ([]Cita, error) {
	ctx, span := citasTracer.Start(ctx, "citas.calendar")
	defer span.End()

	out, err := s.repo.CalendarRange(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.hydrateAll(ctx, out)
	return out, nil
}

// Agenda returns the weekly Sunday-to-Saturday grid containing ref.
func (s *Service) Agenda(ctx context.Context, ref time.Time) ([]AgendaDay, error) {
	all, err := s.Calendar(ctx, WeekStart(ref), WeekEnd(ref))
	if err != nil {
		return nil, err
	}
	return BucketWeek(all, ref), nil
}

// Get returns one hydrated cita or ErrCitaNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Cita, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cita{}, err
	}
	s.hydrate(ctx, &c)
	return c, nil
}

// Create schedules an appointment. Status defaults to pendiente and the
// duration falls back to the servicio's, then to the clinic default.
func (s *Service) Create(ctx context.Context, in CreateInput) (Cita, error) {
	ctx, span := citasTracer.Start(ctx, "citas.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("podoclinic.paciente_id", in.PacienteID),
		attribute.Int64("podoclinic.podologo_id", in.PodologoID),
	)

	if err := in.Validate(); err != nil {
		return Cita{}, err
	}
	if in.Estado == "" {
		in.Estado = EstadoPendiente
	}

	c := Cita{
		PacienteID:      in.PacienteID,
		PodologoID:      in.PodologoID,
		ServicioID:      in.ServicioID,
		FechaHora:       in.FechaHora,
		DuracionMinutos: in.DuracionMinutos,
		Estado:          in.Estado,
		Motivo:          in.Motivo,
		Sala:            in.Sala,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       time.Now(),
	}
	s.hydrate(ctx, &c)
	if c.DuracionMinutos <= 0 {
		if c.Servicio != nil && c.Servicio.DuracionMinutos > 0 {
			c.DuracionMinutos = c.Servicio.DuracionMinutos
		} else {
			c.DuracionMinutos = s.defaultDuracion()
		}
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		span.RecordError(err)
		return Cita{}, err
	}
	s.hydrate(ctx, &created)

	s.observe("create")
	s.record(ctx, in.CreatedBy, auditoria.ActionCreate, created.ID)
	s.logger.Info("cita agendada",
		"cita_id", created.ID,
		"paciente_id", created.PacienteID,
		"podologo_id", created.PodologoID,
		"fecha_hora", created.FechaHora,
	)
	if s.notifier != nil {
		s.notifier.CitaAgendada(ctx, created)
	}
	return created, nil
}

// Update applies a partial edit; absent fields keep their current value.
func (s *Service) Update(ctx context.Context, actorID, id int64, in UpdateInput) (Cita, error) {
	ctx, span := citasTracer.Start(ctx, "citas.update")
	defer span.End()

	c, err := s.repo.Update(ctx, id, in)
	if err != nil {
		span.RecordError(err)
		return Cita{}, err
	}
	s.hydrate(ctx, &c)
	s.observe("update")
	s.record(ctx, actorID, auditoria.ActionUpdate, id)
	return c, nil
}

// Reschedule moves only the start time; status, notes and references are
// untouched.
func (s *Service) Reschedule(ctx context.Context, actorID, id int64, fechaHora time.Time) (Cita, error) {
	ctx, span := citasTracer.Start(ctx, "citas.reschedule")
	defer span.End()

	c, err := s.repo.Reschedule(ctx, id, fechaHora)
	if err != nil {
		span.RecordError(err)
		return Cita{}, err
	}
	s.hydrate(ctx, &c)
	s.observe("reschedule")
	s.record(ctx, actorID, auditoria.ActionUpdate, id)
	s.logger.Info("cita reagendada", "cita_id", id, "fecha_hora", fechaHora)
	return c, nil
}

// Cancel marks the cita cancelado. The record stays retrievable and keeps
// appearing wherever cancelado matches the caller's filters.
func (s *Service) Cancel(ctx context.Context, actorID, id int64) (Cita, error) {
	ctx, span := citasTracer.Start(ctx, "citas.cancel")
	defer span.End()

	c, err := s.repo.Cancel(ctx, id)
	if err != nil {
		span.RecordError(err)
		return Cita{}, err
	}
	s.hydrate(ctx, &c)
	s.observe("cancel")
	s.record(ctx, actorID, auditoria.ActionDelete, id)
	s.logger.Info("cita cancelada", "cita_id", id)
	if s.notifier != nil {
		s.notifier.CitaCancelada(ctx, c)
	}
	return c, nil
}

func (s *Service) defaultDuracion() int {
	if s.DefaultDuracionMinutos > 0 {
		return s.DefaultDuracionMinutos
	}
	return 30
}

// hydrate refreshes the denormalized copies. Lookup failures are logged
// and leave the pointer nil; a broken reference never fails the read.
func (s *Service) hydrate(ctx context.Context, c *Cita) {
	if s.refs == nil {
		return
	}
	if p, err := s.refs.Paciente(ctx, c.PacienteID); err == nil {
		c.Paciente = p
	} else {
		s.logger.Warn("cita paciente lookup failed", "cita_id", c.ID, "paciente_id", c.PacienteID, "error", err)
	}
	if p, err := s.refs.Podologo(ctx, c.PodologoID); err == nil {
		c.Podologo = p
	} else {
		s.logger.Warn("cita podologo lookup failed", "cita_id", c.ID, "podologo_id", c.PodologoID, "error", err)
	}
	if c.ServicioID != nil {
		if sv, err := s.refs.Servicio(ctx, *c.ServicioID); err == nil {
			c.Servicio = sv
		} else {
			s.logger.Warn("cita servicio lookup failed", "cita_id", c.ID, "servicio_id", *c.ServicioID, "error", err)
		}
	}
}

func (s *Service) hydrateAll(ctx context.Context, citas []Cita) {
	for i := range citas {
		s.hydrate(ctx, &citas[i])
	}
}

func (s *Service) record(ctx context.Context, actorID int64, action auditoria.Action, citaID int64) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, auditoria.Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   auditoria.EntityCita,
		EntityID: citaID,
	})
}

// Directory bundles the three reference repositories into a
// ReferenceDirectory.
type Directory struct {
	Pacientes interface {
		Get(ctx context.Context, id int64) (*pacientes.Paciente, error)
	}
	Podologos interface {
		Get(ctx context.Context, id int64) (*podologos.Podologo, error)
	}
	Servicios interface {
		Get(ctx context.Context, id int64) (*servicios.Servicio, error)
	}
}

func (d Directory) Paciente(ctx context.Context, id int64) (*pacientes.Paciente, error) {
	return d.Pacientes.Get(ctx, id)
}

func (d Directory) Podologo(ctx context.Context, id int64) (*podologos.Podologo, error) {
	return d.Podologos.Get(ctx, id)
}

func (d Directory) Servicio(ctx context.Context, id int64) (*servicios.Servicio, error) {
	return d.Servicios.Get(ctx, id)
}
