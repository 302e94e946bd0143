package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/api/responses"
	"github.com/angelmondragon/quizfinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/quizfinderz-backend/pkg/errors"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is a named dependency checked by the readiness probe.
type Pinger interface {
	Ping(context.Context) error
}

// Dependency pairs a probe name with its pinger. A nil Pinger is reported as disabled.
type Dependency struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuizFinderz-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuizFinderz-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		for _, dep := range deps {
			if dep.Pinger == nil {
				checks[dep.Name] = "disabled"
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				checks[dep.Name] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name+" unavailable").WithDetails(checks))
				return
			}
			checks[dep.Name] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
