package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sakshamaitools/clash-point-forge/handlers"
	"github.com/sakshamaitools/clash-point-forge/middleware"
	"github.com/sakshamaitools/clash-point-forge/models"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sakshamaitools/clash-point-forge/docs"
)

type Handlers struct {
	Tournament  *handlers.TournamentHandler
	Participant *handlers.ParticipantHandler
	Bracket     *handlers.BracketHandler
	Match       *handlers.MatchHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RateLimiter    *middleware.IPRateLimiter
	Gatherer       prometheus.Gatherer
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket без таймаута и лимитера: соединение долгоживущее
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizer := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)
	referee := middleware.Authorize(models.RoleOrganizer, models.RoleOfficiant, models.RoleAdmin)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		if opts.RateLimiter != nil {
			r.Use(middleware.RateLimit(opts.RateLimiter))
		}

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.With(authenticate).Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)
				r.Get("/participants", h.Participant.List)
				r.Get("/bracket", h.Bracket.GetHandler)
				r.Get("/matches", h.Match.ListHandler)
				r.Get("/standings", h.Bracket.StandingsHandler)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.Post("/participants", h.Participant.Register)

					r.Group(func(r chi.Router) {
						r.Use(organizer)
						r.Patch("/status", h.Tournament.UpdateStatusHandler)
						r.Post("/bracket", h.Bracket.GenerateHandler)
						r.Post("/advance", h.Match.AdvanceHandler)
					})
				})
			})
		})

		r.Route("/participants/{participantID}", func(r chi.Router) {
			r.Use(authenticate, organizer)
			r.Patch("/payment", h.Participant.UpdatePaymentStatus)
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/dispute", h.Match.DisputeHandler)
			r.With(referee).Post("/winner", h.Match.DeclareWinnerHandler)
			r.With(referee).Post("/start", h.Match.StartHandler)
		})
	})
}
