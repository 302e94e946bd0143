package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/quizfinderz-backend/api/middleware"
	"github.com/angelmondragon/quizfinderz-backend/api/responses"
	"github.com/angelmondragon/quizfinderz-backend/api/validators"
	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/internal/quizzes"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quizfinderz-backend/pkg/errors"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
	"github.com/angelmondragon/quizfinderz-backend/pkg/pagination"
)

type createQuizRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Style string `json:"style,omitempty"`
}

type generateQuestionsRequest struct {
	Style    *string           `json:"style,omitempty"`
	Products []catalog.Product `json:"products" validate:"required,min=1,dive"`
}

// QuizCreate creates an empty quiz for the calling merchant.
func QuizCreate(svc quizzes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		var payload createQuizRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quiz, err := svc.Create(r.Context(), merchantID, quizzes.CreateQuizInput{
			Name:  validators.SanitizeString(payload.Name, 120),
			Style: enums.CoerceQuizStyle(payload.Style),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, quiz)
	}
}

// QuizGet returns a quiz with its current questions.
func QuizGet(svc quizzes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		quizID, ok := quizIDParam(w, r, logg)
		if !ok {
			return
		}

		quiz, err := svc.Get(r.Context(), merchantID, quizID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quiz)
	}
}

// QuizList pages through the merchant's quizzes, newest first.
func QuizList(svc quizzes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = limit
		}

		page, err := svc.List(r.Context(), merchantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// QuizGenerate replaces the quiz questions with a batch generated from the posted catalog.
func QuizGenerate(svc quizzes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		quizID, ok := quizIDParam(w, r, logg)
		if !ok {
			return
		}

		var payload generateQuestionsRequest
		if err := validators.DecodeJSONBodyLenient(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := quizzes.GenerateInput{Products: payload.Products}
		if payload.Style != nil {
			style := enums.CoerceQuizStyle(*payload.Style)
			input.Style = &style
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithQuizID(ctx, quizID.String())
		}

		out, err := svc.Generate(ctx, merchantID, quizID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}

func requireMerchant(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
		return uuid.Nil, false
	}
	return merchantID, true
}

func quizIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "quizId"))
	quizID, err := uuid.Parse(raw)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quiz id"))
		return uuid.Nil, false
	}
	return quizID, true
}
