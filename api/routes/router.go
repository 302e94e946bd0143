package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/quizfinderz-backend/api/controllers"
	"github.com/angelmondragon/quizfinderz-backend/api/middleware"
	"github.com/angelmondragon/quizfinderz-backend/internal/quizzes"
	"github.com/angelmondragon/quizfinderz-backend/pkg/config"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	rateStore middleware.RateLimiterStore,
	gatherer prometheus.Gatherer,
	quizService quizzes.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	generatePolicy := middleware.NewRateLimitPolicy(
		"generate",
		cfg.RateLimit.GenerateWindow,
		cfg.RateLimit.GenerateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.Dependency{Name: "db", Pinger: dbP},
			controllers.Dependency{Name: "redis", Pinger: redisP},
		))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/quizzes", func(r chi.Router) {
		r.Use(middleware.MerchantContext(logg))
		r.Get("/", controllers.QuizList(quizService, logg))
		r.Post("/", controllers.QuizCreate(quizService, logg))
		r.Route("/{quizId}", func(r chi.Router) {
			r.Get("/", controllers.QuizGet(quizService, logg))
			r.With(middleware.MerchantRateLimit(generatePolicy, rateStore, logg)).
				Post("/generate", controllers.QuizGenerate(quizService, logg))
		})
	})

	return r
}
