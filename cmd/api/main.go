package main

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pielsano/podoclinic/internal/api/router"
	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/auth"
	"github.com/pielsano/podoclinic/internal/citas"
	appconfig "github.com/pielsano/podoclinic/internal/config"
	"github.com/pielsano/podoclinic/internal/dashboard"
	"github.com/pielsano/podoclinic/internal/notificaciones"
	"github.com/pielsano/podoclinic/internal/observability/metrics"
	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/internal/podologos"
	"github.com/pielsano/podoclinic/internal/prospectos"
	"github.com/pielsano/podoclinic/internal/rbac"
	"github.com/pielsano/podoclinic/internal/servicios"
	"github.com/pielsano/podoclinic/internal/snapshots"
	"github.com/pielsano/podoclinic/internal/tratamientos"
	"github.com/pielsano/podoclinic/internal/usuarios"
	"github.com/pielsano/podoclinic/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting podoclinic API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		time.Local = loc
	} else {
		logger.Warn("invalid CLINIC_TIMEZONE, keeping system local time", "timezone", cfg.Timezone, "error", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if !cfg.AllowInsecureEnv {
			logger.Error("JWT_SECRET is required; set ALLOW_INSECURE_ENV=true to generate one per boot")
			os.Exit(1)
		}
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, generated an ephemeral secret; sessions will not survive restarts")
	}

	ctx := context.Background()

	pool, err := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient := connectRedis(ctx, cfg, logger)

	metricsHandler, clinicMetrics := setupClinicMetrics()

	// Repositories: postgres when DATABASE_URL is set, otherwise in-memory
	// with redis snapshots for restart persistence.
	var (
		pacienteRepo    pacientes.Repository
		podologoRepo    podologos.Repository
		servicioRepo    servicios.Repository
		citaRepo        citas.Repository
		usuarioRepo     usuarios.Repository
		tratamientoRepo tratamientos.Repository
		prospectoRepo   prospectos.Repository
		auditStore      auditoria.Store
	)

	if pool != nil {
		pacienteRepo = pacientes.NewPostgresRepository(pool)
		podologoRepo = podologos.NewPostgresRepository(pool)
		servicioRepo = servicios.NewPostgresRepository(pool)
		citaRepo = citas.NewPostgresRepository(pool)
		usuarioRepo = usuarios.NewPostgresRepository(pool)
		tratamientoRepo = tratamientos.NewPostgresRepository(pool)
		prospectoRepo = prospectos.NewPostgresRepository(pool)

		auditDB, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open audit db handle", "error", err)
			os.Exit(1)
		}
		defer func() { _ = auditDB.Close() }()
		auditStore = auditoria.NewService(auditDB, logger.Error)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		memPacientes := pacientes.NewInMemoryRepository()
		memPodologos := podologos.NewInMemoryRepository()
		memServicios := servicios.NewInMemoryRepository()
		memCitas := citas.NewInMemoryRepository()
		memUsuarios := usuarios.NewInMemoryRepository()
		pacienteRepo = memPacientes
		podologoRepo = memPodologos
		servicioRepo = memServicios
		citaRepo = memCitas
		usuarioRepo = memUsuarios
		tratamientoRepo = tratamientos.NewInMemoryRepository()
		prospectoRepo = prospectos.NewInMemoryRepository()
		memAudit := auditoria.NewInMemoryRecorder()
		auditStore = memAudit

		if redisClient != nil {
			store := snapshots.NewStore(redisClient, logger)
			restoreSnapshots(ctx, store, memPacientes, memPodologos, memServicios, memCitas, memUsuarios, memAudit, logger)
			go snapshotLoop(ctx, store, pacienteRepo, podologoRepo, servicioRepo, citaRepo, usuarioRepo, memAudit, logger)
		}
	}

	// Services.
	usuarioSvc := usuarios.NewService(usuarioRepo, auditStore, logger, cfg.BcryptCost)
	bootstrapAdmin(ctx, cfg, usuarioSvc, usuarioRepo, logger)

	authSvc := auth.NewService(usuarioSvc, auditStore, logger, secret, cfg.TokenTTL).
		WithObserver(clinicMetrics)

	citaSvc := citas.NewService(citaRepo, citas.Directory{
		Pacientes: pacienteRepo,
		Podologos: podologoRepo,
		Servicios: servicioRepo,
	}, auditStore, logger).WithObserver(clinicMetrics)
	if cfg.DefaultCitaDurationMin > 0 {
		citaSvc.DefaultDuracionMinutos = cfg.DefaultCitaDurationMin
	}
	if cfg.SendGridAPIKey != "" {
		sender := notificaciones.NewSendGridSender(notificaciones.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		citaSvc.WithNotifier(notificaciones.NewService(sender, logger))
	}

	dashboardSvc := dashboard.NewService(citaRepo, pacienteRepo, tratamientoRepo, logger)

	// Router.
	r := router.New(&router.Config{
		Logger:              logger,
		AuthHandler:         auth.NewHandler(authSvc, usuarioSvc, logger),
		CitasHandler:        citas.NewHandler(citaSvc, logger),
		PacientesHandler:    pacientes.NewHandler(pacienteRepo, logger),
		PodologosHandler:    podologos.NewHandler(podologoRepo, logger),
		ServiciosHandler:    servicios.NewHandler(servicioRepo, logger),
		UsuariosHandler:     usuarios.NewHandler(usuarioSvc, logger),
		TratamientosHandler: tratamientos.NewHandler(tratamientoRepo, auditStore, logger),
		ProspectosHandler:   prospectos.NewHandler(prospectoRepo, pacienteRepo, auditStore, logger),
		DashboardHandler:    dashboard.NewHandler(dashboardSvc, logger),
		AuditHandler:        auditoria.NewHandler(auditStore, logger),
		JWTSecret:           secret,
		LoginRatePerMin:     float64(cfg.LoginRatePerMin),
		LoginBurst:          cfg.LoginRateBurst,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		Metrics:             clinicMetrics,
		MetricsHandler:      metricsHandler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info("server stopped")
}

// connectPostgresPool returns nil without error when no DATABASE_URL is
// configured; the caller falls back to in-memory repositories.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return pool, nil
}

func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, snapshots disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return client
}

// setupClinicMetrics builds an isolated registry so tests never trip over
// duplicate registration, plus the standard Go runtime collectors.
func setupClinicMetrics() (http.Handler, *metrics.ClinicMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewClinicMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// bootstrapAdmin creates the first admin account when the user table is
// empty and BOOTSTRAP_ADMIN_PASSWORD is set. Without it a fresh in-memory
// deployment would have no way to log in.
func bootstrapAdmin(ctx context.Context, cfg *appconfig.Config, svc *usuarios.Service, repo usuarios.Repository, logger *logging.Logger) {
	if cfg.BootstrapAdminPassword == "" {
		return
	}
	existing, err := repo.List(ctx)
	if err != nil || len(existing) > 0 {
		return
	}
	u, err := svc.Create(ctx, 0, usuarios.CreateInput{
		Username: cfg.BootstrapAdminUser,
		Nombre:   "Administrador",
		Rol:      rbac.RoleAdmin,
		Password: cfg.BootstrapAdminPassword,
	})
	if err != nil {
		logger.Error("failed to bootstrap admin account", "error", err)
		return
	}
	logger.Info("bootstrapped admin account", "usuario_id", u.ID, "username", u.Username)
}

func restoreSnapshots(
	ctx context.Context,
	store *snapshots.Store,
	memPacientes *pacientes.InMemoryRepository,
	memPodologos *podologos.InMemoryRepository,
	memServicios *servicios.InMemoryRepository,
	memCitas *citas.InMemoryRepository,
	memUsuarios *usuarios.InMemoryRepository,
	memAudit *auditoria.InMemoryRecorder,
	logger *logging.Logger,
) {
	var ps []pacientes.Paciente
	if ok, err := store.Load(ctx, snapshots.ColPacientes, &ps); err != nil {
		logger.Error("restore pacientes snapshot failed", "error", err)
	} else if ok {
		for _, p := range ps {
			memPacientes.Seed(p)
		}
	}

	var ds []podologos.Podologo
	if ok, err := store.Load(ctx, snapshots.ColPodologos, &ds); err != nil {
		logger.Error("restore podologos snapshot failed", "error", err)
	} else if ok {
		for _, d := range ds {
			memPodologos.Seed(d)
		}
	}

	var svs []servicios.Servicio
	if ok, err := store.Load(ctx, snapshots.ColServicios, &svs); err != nil {
		logger.Error("restore servicios snapshot failed", "error", err)
	} else if ok {
		for _, sv := range svs {
			memServicios.Seed(sv)
		}
	}

	var cs []citas.Cita
	if ok, err := store.Load(ctx, snapshots.ColCitas, &cs); err != nil {
		logger.Error("restore citas snapshot failed", "error", err)
	} else if ok {
		memCitas.Seed(cs)
	}

	var us []usuarioSnapshot
	if ok, err := store.Load(ctx, snapshots.ColUsuarios, &us); err != nil {
		logger.Error("restore usuarios snapshot failed", "error", err)
	} else if ok {
		for _, u := range us {
			u.Usuario.PasswordHash = u.PasswordHash
			memUsuarios.Seed(u.Usuario)
		}
	}

	var es []auditoria.Entry
	if ok, err := store.Load(ctx, snapshots.ColAuditLog, &es); err != nil {
		logger.Error("restore audit log snapshot failed", "error", err)
	} else if ok {
		memAudit.Seed(es)
	}

	logger.Info("restored snapshots",
		"pacientes", len(ps),
		"podologos", len(ds),
		"servicios", len(svs),
		"citas", len(cs),
		"usuarios", len(us),
		"audit_entries", len(es),
	)
}

// snapshotLoop dumps every collection to redis on an interval. Losing the
// last interval's writes on a crash is the accepted tradeoff of running
// without a database.
func snapshotLoop(
	ctx context.Context,
	store *snapshots.Store,
	pacienteRepo pacientes.Repository,
	podologoRepo podologos.Repository,
	servicioRepo servicios.Repository,
	citaRepo citas.Repository,
	usuarioRepo usuarios.Repository,
	memAudit *auditoria.InMemoryRecorder,
	logger *logging.Logger,
) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if v, err := pacienteRepo.List(ctx, false); err == nil {
			store.SaveAsync(snapshots.ColPacientes, v)
		} else {
			logger.Error("snapshot pacientes list failed", "error", err)
		}
		if v, err := podologoRepo.List(ctx, false); err == nil {
			store.SaveAsync(snapshots.ColPodologos, v)
		} else {
			logger.Error("snapshot podologos list failed", "error", err)
		}
		if v, err := servicioRepo.List(ctx, false); err == nil {
			store.SaveAsync(snapshots.ColServicios, v)
		} else {
			logger.Error("snapshot servicios list failed", "error", err)
		}
		if v, err := citaRepo.List(ctx, citas.Filters{}); err == nil {
			store.SaveAsync(snapshots.ColCitas, v)
		} else {
			logger.Error("snapshot citas list failed", "error", err)
		}
		if v, err := usuarioRepo.List(ctx); err == nil {
			snap := make([]usuarioSnapshot, len(v))
			for i, u := range v {
				snap[i] = usuarioSnapshot{Usuario: u, PasswordHash: u.PasswordHash}
			}
			store.SaveAsync(snapshots.ColUsuarios, snap)
		} else {
			logger.Error("snapshot usuarios list failed", "error", err)
		}
		if v, err := memAudit.Query(ctx, auditoria.Filter{}); err == nil {
			store.SaveAsync(snapshots.ColAuditLog, v)
		} else {
			logger.Error("snapshot audit log dump failed", "error", err)
		}
	}
}

// usuarioSnapshot re-exposes the password hash that Usuario's JSON hides.
// Snapshots are internal storage, never an API payload.
type usuarioSnapshot struct {
	usuarios.Usuario
	PasswordHash string `json:"password_hash"`
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
