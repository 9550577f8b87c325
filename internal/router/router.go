package router

import (
	"net/http"
	"time"

	_ "pet-care-reminders/docs"
	"pet-care-reminders/internal/adapters/notify/lognotify"
	mem "pet-care-reminders/internal/adapters/storage/memory"
	"pet-care-reminders/internal/domain/reminders"
	"pet-care-reminders/internal/middleware"
	"pet-care-reminders/internal/platform/logger"
	"pet-care-reminders/internal/ports/auth"
	"pet-care-reminders/internal/realtime"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcionales: sin Store usa in-memory; sin Dispatcher sólo loguea.
	Store      reminders.Store
	Dispatcher reminders.Dispatcher

	Logger        logger.Logger
	Location      *time.Location
	UpcomingLimit int
	Resync        bool

	// Now es el reloj de /reminders/upcoming (tests).
	Now func() time.Time
}

// Router es el handler HTTP; Sessions y Hub quedan expuestos para main y los tests.
type Router struct {
	http.Handler
	Sessions *reminders.Sessions
	Hub      *realtime.Hub
}

func NewRouter(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	store := opts.Store
	if store == nil {
		store = mem.NewRemindersStore()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = lognotify.New(log)
	}

	repoOpts := []reminders.Option{reminders.WithLogger(log)}
	if opts.Location != nil {
		repoOpts = append(repoOpts, reminders.WithLocation(opts.Location))
	}
	if opts.Resync {
		repoOpts = append(repoOpts, reminders.WithResync())
	}

	// Una sesión (Repository + Editor) por owner autenticado.
	sessions := reminders.NewSessions(func(owner string) *reminders.Repository {
		return reminders.NewRepository(owner, store, dispatcher, repoOpts...)
	})
	hub := realtime.NewHub(log.With(map[string]any{"component": "realtime"}))
	sessions.OnOpen(hub.Attach)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	reminders.RegisterRoutes(r, sessions, reminders.HandlerOptions{
		Now:           opts.Now,
		UpcomingLimit: opts.UpcomingLimit,
		Stream:        realtime.Handler(hub),
	})

	return &Router{Handler: r, Sessions: sessions, Hub: hub}
}
