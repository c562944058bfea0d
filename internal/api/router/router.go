// Package router wires every feature handler into the chi mux, with the
// capability gates that mirror what the frontend hides per role.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/auth"
	"github.com/pielsano/podoclinic/internal/citas"
	"github.com/pielsano/podoclinic/internal/dashboard"
	httpmiddleware "github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/internal/observability/metrics"
	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/internal/podologos"
	"github.com/pielsano/podoclinic/internal/prospectos"
	"github.com/pielsano/podoclinic/internal/rbac"
	"github.com/pielsano/podoclinic/internal/servicios"
	"github.com/pielsano/podoclinic/internal/tratamientos"
	"github.com/pielsano/podoclinic/internal/usuarios"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	AuthHandler         *auth.Handler
	CitasHandler        *citas.Handler
	PacientesHandler    *pacientes.Handler
	PodologosHandler    *podologos.Handler
	ServiciosHandler    *servicios.Handler
	UsuariosHandler     *usuarios.Handler
	TratamientosHandler *tratamientos.Handler
	ProspectosHandler   *prospectos.Handler
	DashboardHandler    *dashboard.Handler
	AuditHandler        *auditoria.Handler

	JWTSecret          string
	LoginRatePerMin    float64
	LoginBurst         int
	CORSAllowedOrigins []string
	Metrics            *metrics.ClinicMetrics
	MetricsHandler     http.Handler
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	requireCap := func(c rbac.Capability) func(http.Handler) http.Handler {
		return httpmiddleware.RequireCapability(c, cfg.Metrics)
	}

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if cfg.Metrics != nil {
		r.Use(httpmiddleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			rate := cfg.LoginRatePerMin
			if rate <= 0 {
				rate = 5
			}
			burst := cfg.LoginBurst
			if burst <= 0 {
				burst = 5
			}
			public.With(httpmiddleware.RateLimit(rate/60.0, burst)).
				Post("/auth/login", cfg.AuthHandler.Login)
		}
	})

	// Everything below requires a valid session token.
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Authenticate(cfg.JWTSecret))

		if cfg.AuthHandler != nil {
			private.Get("/auth/me", cfg.AuthHandler.Me)
			private.Post("/auth/logout", cfg.AuthHandler.Logout)
		}

		if cfg.DashboardHandler != nil {
			private.With(requireCap(rbac.CapViewDashboard)).
				Get("/dashboard/stats", cfg.DashboardHandler.Stats)
		}

		if cfg.CitasHandler != nil {
			private.Route("/citas", func(r chi.Router) {
				r.Group(func(view chi.Router) {
					view.Use(requireCap(rbac.CapViewAppointments))
					view.Get("/", cfg.CitasHandler.List)
					view.Get("/calendar", cfg.CitasHandler.Calendar)
					view.Get("/agenda", cfg.CitasHandler.Agenda)
					view.Get("/{id}", cfg.CitasHandler.Get)
				})
				r.Group(func(edit chi.Router) {
					edit.Use(requireCap(rbac.CapEditAppointments))
					edit.Post("/", cfg.CitasHandler.Create)
					edit.Patch("/{id}", cfg.CitasHandler.Update)
					edit.Delete("/{id}", cfg.CitasHandler.Cancel)
					edit.Post("/{id}/reschedule", cfg.CitasHandler.Reschedule)
				})
			})
		}

		if cfg.PacientesHandler != nil {
			private.Route("/pacientes", func(r chi.Router) {
				r.With(requireCap(rbac.CapViewPatients)).
					Get("/", cfg.PacientesHandler.List)
				r.With(requireCap(rbac.CapViewPatients)).
					Get("/{id}", cfg.PacientesHandler.Get)
				r.With(requireCap(rbac.CapEditPatients)).
					Post("/", cfg.PacientesHandler.Create)
				r.With(requireCap(rbac.CapEditPatients)).
					Patch("/{id}", cfg.PacientesHandler.Update)
			})
		}

		if cfg.PodologosHandler != nil {
			private.Route("/podologos", func(r chi.Router) {
				r.With(requireCap(rbac.CapViewAppointments)).
					Get("/", cfg.PodologosHandler.List)
				r.With(requireCap(rbac.CapViewAppointments)).
					Get("/{id}", cfg.PodologosHandler.Get)
				r.With(requireCap(rbac.CapManageSettings)).
					Post("/", cfg.PodologosHandler.Create)
				r.With(requireCap(rbac.CapManageSettings)).
					Patch("/{id}", cfg.PodologosHandler.Update)
			})
		}

		if cfg.ServiciosHandler != nil {
			private.Route("/servicios", func(r chi.Router) {
				r.With(requireCap(rbac.CapViewAppointments)).
					Get("/", cfg.ServiciosHandler.List)
				r.With(requireCap(rbac.CapViewAppointments)).
					Get("/{id}", cfg.ServiciosHandler.Get)
				r.With(requireCap(rbac.CapManageSettings)).
					Post("/", cfg.ServiciosHandler.Create)
				r.With(requireCap(rbac.CapManageSettings)).
					Patch("/{id}", cfg.ServiciosHandler.Update)
			})
		}

		if cfg.TratamientosHandler != nil {
			private.Route("/tratamientos", func(r chi.Router) {
				r.Group(func(view chi.Router) {
					view.Use(requireCap(rbac.CapViewTreatments))
					view.Get("/", cfg.TratamientosHandler.List)
					view.Get("/{id}", cfg.TratamientosHandler.Get)
				})
				r.Group(func(edit chi.Router) {
					edit.Use(requireCap(rbac.CapEditTreatments))
					edit.Post("/", cfg.TratamientosHandler.Create)
					edit.Patch("/{id}", cfg.TratamientosHandler.Update)
					edit.Post("/{id}/evoluciones", cfg.TratamientosHandler.AddEvolucion)
				})
			})
		}

		if cfg.ProspectosHandler != nil {
			private.Route("/prospectos", func(r chi.Router) {
				r.Use(requireCap(rbac.CapViewProspects))
				r.Get("/", cfg.ProspectosHandler.List)
				r.Get("/{id}", cfg.ProspectosHandler.Get)
				r.Post("/", cfg.ProspectosHandler.Create)
				r.Patch("/{id}", cfg.ProspectosHandler.Update)
				r.Post("/{id}/convert", cfg.ProspectosHandler.Convert)
			})
		}

		if cfg.UsuariosHandler != nil {
			private.Route("/usuarios", func(r chi.Router) {
				r.Use(requireCap(rbac.CapManageUsers))
				r.Get("/", cfg.UsuariosHandler.List)
				r.Get("/{id}", cfg.UsuariosHandler.Get)
				r.Post("/", cfg.UsuariosHandler.Create)
				r.Patch("/{id}", cfg.UsuariosHandler.Update)
				r.Delete("/{id}", cfg.UsuariosHandler.Delete)
			})
		}

		if cfg.AuditHandler != nil {
			private.With(requireCap(rbac.CapViewReports)).
				Get("/auditoria", cfg.AuditHandler.List)
		}
	})

	return r
}
