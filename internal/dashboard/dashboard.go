// Package dashboard aggregates the front-desk summary shown after login:
// today's appointments, recent patients and active treatment plans.
package dashboard

import (
	"context"
	"time"

	"github.com/pielsano/podoclinic/internal/citas"
	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/internal/tratamientos"
	"github.com/pielsano/podoclinic/pkg/logging"
)

type citaSource interface {
	List(ctx context.Context, f citas.Filters) ([]citas.Cita, error)
}

type pacienteSource interface {
	List(ctx context.Context, soloActivos bool) ([]pacientes.Paciente, error)
}

type tratamientoSource interface {
	CountByEstado(ctx context.Context, estado tratamientos.Estado) (int, error)
}

// Stats is the summary payload for the landing view.
type Stats struct {
	CitasHoy            int          `json:"citas_hoy"`
	CitasPendientesHoy  int          `json:"citas_pendientes_hoy"`
	PacientesActivos    int          `json:"pacientes_activos"`
	PacientesNuevosMes  int          `json:"pacientes_nuevos_mes"`
	TratamientosActivos int          `json:"tratamientos_activos"`
	ProximasCitas       []citas.Cita `json:"proximas_citas"`
}

// Service computes dashboard stats from the feature repositories.
type Service struct {
	citas        citaSource
	pacientes    pacienteSource
	tratamientos tratamientoSource
	logger       *logging.Logger

	// UpcomingLimit caps the proximas_citas list.
	UpcomingLimit int
}

func NewService(cs citaSource, ps pacienteSource, ts tratamientoSource, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{citas: cs, pacientes: ps, tratamientos: ts, logger: logger, UpcomingLimit: 5}
}

// Stats computes the summary as of now, in now's location.
func (s *Service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	var out Stats

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	if s.citas != nil {
		hoy, err := s.citas.List(ctx, citas.Filters{FechaInicio: &dayStart, FechaFin: &dayEnd})
		if err != nil {
			return Stats{}, err
		}
		out.CitasHoy = len(hoy)
		for _, c := range hoy {
			if c.Estado == citas.EstadoPendiente {
				out.CitasPendientesHoy++
			}
		}

		horizon := dayStart.AddDate(0, 0, 7)
		upcoming, err := s.citas.List(ctx, citas.Filters{FechaInicio: &now, FechaFin: &horizon})
		if err != nil {
			return Stats{}, err
		}
		for _, c := range upcoming {
			if c.Estado == citas.EstadoCancelado {
				continue
			}
			out.ProximasCitas = append(out.ProximasCitas, c)
			if len(out.ProximasCitas) == s.UpcomingLimit {
				break
			}
		}
	}

	if s.pacientes != nil {
		activos, err := s.pacientes.List(ctx, true)
		if err != nil {
			return Stats{}, err
		}
		out.PacientesActivos = len(activos)
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		for _, p := range activos {
			if !p.CreatedAt.Before(monthStart) {
				out.PacientesNuevosMes++
			}
		}
	}

	if s.tratamientos != nil {
		n, err := s.tratamientos.CountByEstado(ctx, tratamientos.EstadoActivo)
		if err != nil {
			return Stats{}, err
		}
		out.TratamientosActivos = n
	}

	return out, nil
}
