package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/quizfinderz-backend/api/middleware"
	"github.com/angelmondragon/quizfinderz-backend/internal/quizzes"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quizfinderz-backend/pkg/errors"
	"github.com/angelmondragon/quizfinderz-backend/pkg/pagination"
)

type stubQuizService struct {
	quiz     *quizzes.QuizDTO
	output   *quizzes.GenerateOutput
	err      error
	created  quizzes.CreateQuizInput
	generate quizzes.GenerateInput
	page     *pagination.Page[quizzes.QuizDTO]
	params   pagination.Params
	merchant uuid.UUID
	quizID   uuid.UUID
}

func (s *stubQuizService) List(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*pagination.Page[quizzes.QuizDTO], error) {
	s.merchant = merchantID
	s.params = params
	return s.page, s.err
}

func (s *stubQuizService) Create(ctx context.Context, merchantID uuid.UUID, input quizzes.CreateQuizInput) (*quizzes.QuizDTO, error) {
	s.merchant = merchantID
	s.created = input
	return s.quiz, s.err
}

func (s *stubQuizService) Get(ctx context.Context, merchantID, quizID uuid.UUID) (*quizzes.QuizDTO, error) {
	s.merchant = merchantID
	s.quizID = quizID
	return s.quiz, s.err
}

func (s *stubQuizService) Generate(ctx context.Context, merchantID, quizID uuid.UUID, input quizzes.GenerateInput) (*quizzes.GenerateOutput, error) {
	s.merchant = merchantID
	s.quizID = quizID
	s.generate = input
	return s.output, s.err
}

func TestQuizCreateCoercesStyle(t *testing.T) {
	merchantID := uuid.New()
	svc := &stubQuizService{quiz: &quizzes.QuizDTO{ID: uuid.New(), MerchantID: merchantID, Name: "Gift finder"}}
	handler := QuizCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes", strings.NewReader(`{"name":"  Gift finder ","style":"whimsical"}`))
	req = req.WithContext(middleware.WithMerchantID(req.Context(), merchantID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.Style != enums.QuizStyleProfessional {
		t.Fatalf("expected unknown style coerced to professional, got %q", svc.created.Style)
	}
	if svc.created.Name != "Gift finder" || svc.merchant != merchantID {
		t.Fatalf("unexpected create input %+v merchant %s", svc.created, svc.merchant)
	}
}

func TestQuizCreateRejectsMissingName(t *testing.T) {
	handler := QuizCreate(&stubQuizService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes", strings.NewReader(`{"style":"fun"}`))
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestQuizGetMissingMerchant(t *testing.T) {
	handler := QuizGet(&stubQuizService{}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/x", nil), uuid.NewString()))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestQuizGetInvalidID(t *testing.T) {
	handler := QuizGet(&stubQuizService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/not-a-uuid", nil)
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(req, "not-a-uuid"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestQuizGetNotFound(t *testing.T) {
	handler := QuizGet(&stubQuizService{err: pkgerrors.New(pkgerrors.CodeNotFound, "quiz not found")}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/x", nil)
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(req, uuid.NewString()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestQuizListPassesPagination(t *testing.T) {
	svc := &stubQuizService{page: &pagination.Page[quizzes.QuizDTO]{Items: []quizzes.QuizDTO{{Name: "A"}}, NextCursor: "next"}}
	handler := QuizList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes?limit=10&cursor=abc", nil)
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.params.Limit != 10 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}
	if !strings.Contains(rec.Body.String(), `"next_cursor":"next"`) {
		t.Fatalf("expected next cursor in body, got %s", rec.Body.String())
	}
}

func TestQuizListRejectsBadLimit(t *testing.T) {
	handler := QuizList(&stubQuizService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes?limit=ten", nil)
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestQuizGenerateAcceptsProviderPayload(t *testing.T) {
	merchantID := uuid.New()
	quizID := uuid.New()
	svc := &stubQuizService{output: &quizzes.GenerateOutput{
		Quiz:   &quizzes.QuizDTO{ID: quizID, MerchantID: merchantID},
		Source: enums.QuestionSourceFallback,
	}}
	handler := QuizGenerate(svc, nil)

	body := `{
		"style": "FUN",
		"products": [
			{"id": "1", "title": "Board", "handle": "board", "product_type": "Snowboards", "tags": ["winter"], "variants": [{"price": "600.00", "sku": "B-1"}]},
			{"id": "2", "title": "Mitts", "product_type": "Mittens", "tags": [], "variants": [{"price": 20}]}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/x/generate", strings.NewReader(body))
	req = req.WithContext(middleware.WithMerchantID(req.Context(), merchantID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(req, quizID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.quizID != quizID || len(svc.generate.Products) != 2 {
		t.Fatalf("unexpected generate call quiz=%s products=%d", svc.quizID, len(svc.generate.Products))
	}
	if svc.generate.Style == nil || *svc.generate.Style != enums.QuizStyleFun {
		t.Fatalf("expected fun style override, got %v", svc.generate.Style)
	}
	if price, ok := svc.generate.Products[1].Variants[0].Price.Decimal(); !ok || price.String() != "20" {
		t.Fatalf("expected numeric price decoded, got %v %v", price, ok)
	}

	var envelope struct {
		Data quizzes.GenerateOutput `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Source != enums.QuestionSourceFallback {
		t.Fatalf("expected fallback source, got %q", envelope.Data.Source)
	}
}

func TestQuizGenerateKeepsStoredStyleWhenOmitted(t *testing.T) {
	svc := &stubQuizService{output: &quizzes.GenerateOutput{}}
	handler := QuizGenerate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/x/generate", strings.NewReader(`{"products":[{"id":"1","title":"Board"}]}`))
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(req, uuid.NewString()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.generate.Style != nil {
		t.Fatalf("expected nil style override")
	}
}

func TestQuizGenerateRejectsEmptyCatalog(t *testing.T) {
	handler := QuizGenerate(&stubQuizService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/x/generate", strings.NewReader(`{"products":[]}`))
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(req, uuid.NewString()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestQuizGenerateConflict(t *testing.T) {
	handler := QuizGenerate(&stubQuizService{err: pkgerrors.New(pkgerrors.CodeConflict, "generation already running")}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/x/generate", strings.NewReader(`{"products":[{"id":"1","title":"Board"}]}`))
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withQuizParam(req, uuid.NewString()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func withQuizParam(req *http.Request, quizID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("quizId", quizID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}
