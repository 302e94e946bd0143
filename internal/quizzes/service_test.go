package quizzes

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/internal/questions"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quizfinderz-backend/pkg/errors"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
	"github.com/angelmondragon/quizfinderz-backend/pkg/memstore"
	"github.com/angelmondragon/quizfinderz-backend/pkg/pagination"
	"github.com/angelmondragon/quizfinderz-backend/pkg/redis"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: "1", Title: "Board", ProductType: "Snowboards", Tags: []string{"winter", "Minimalist"}, Variants: []catalog.Variant{{Price: "600"}}},
		{ID: "2", Title: "Board XL", ProductType: "Snowboards", Tags: []string{"Vintage"}, Variants: []catalog.Variant{{Price: "650"}}},
		{ID: "3", Title: "Mitts", ProductType: "Mittens", Tags: []string{"wool"}, Variants: []catalog.Variant{{Price: "20"}}},
		{ID: "4", Title: "Mitts Pro", ProductType: "Mittens", Variants: []catalog.Variant{{Price: "30"}}},
	}
}

func newTestService(t *testing.T, locker Locker, gen questionGenerator) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(openTestDB(t))
	if gen == nil {
		gen = questions.NewEngine(questions.EngineOptions{Logger: testLogger()})
	}
	if locker == nil {
		locker = memstore.New(memstore.Options{LockTTL: time.Minute})
	}
	svc, err := NewService(ServiceParams{Repo: repo, Generator: gen, Locker: locker, Logger: testLogger(), MaxProducts: 10})
	require.NoError(t, err)
	return svc, repo
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

type heldLocker struct{}

func (heldLocker) AcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	return false, nil
}
func (heldLocker) ReleaseLock(context.Context, string, string) error { return nil }
func (heldLocker) GenerationLockKey(id string) string { return id }

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	inner   questionGenerator
}

func (b *blockingGenerator) Generate(ctx context.Context, products []catalog.Product, style enums.QuizStyle) (*questions.Result, error) {
	close(b.started)
	<-b.release
	return b.inner.Generate(ctx, products, style)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	merchantID := uuid.New()

	created, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: "  Winter finder ", Style: enums.QuizStyle("loud")})
	require.NoError(t, err)
	assert.Equal(t, "Winter finder", created.Name)
	assert.Equal(t, enums.QuizStyleProfessional, created.Style)

	got, err := svc.Get(ctx, merchantID, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Questions)

	_, err = svc.Create(ctx, merchantID, CreateQuizInput{Name: "Winter finder", Style: enums.QuizStyleFun})
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = svc.Create(ctx, merchantID, CreateQuizInput{Name: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceListPaginates(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	merchantID := uuid.New()

	clock := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	var created []uuid.UUID
	for _, name := range []string{"One", "Two", "Three"} {
		quiz, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: name, Style: enums.QuizStyleFun})
		require.NoError(t, err)
		created = append(created, quiz.ID)
	}

	page, err := svc.List(ctx, merchantID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, created[2], page.Items[0].ID)

	last, err := svc.List(ctx, merchantID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, created[0], last.Items[0].ID)
	assert.Empty(t, last.NextCursor)

	_, err = svc.List(ctx, merchantID, pagination.Params{Cursor: "not-a-cursor"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceGeneratePersistsFallbackQuestions(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	merchantID := uuid.New()
	quiz, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: "Snow", Style: enums.QuizStyleFun})
	require.NoError(t, err)

	out, err := svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: testCatalog()})
	require.NoError(t, err)
	assert.Equal(t, enums.QuestionSourceFallback, out.Source)
	require.Len(t, out.Quiz.Questions, 5)
	require.NotNil(t, out.Quiz.LastSource)
	assert.Equal(t, enums.QuestionSourceFallback, *out.Quiz.LastSource)

	for i := 1; i < len(out.Quiz.Questions); i++ {
		assert.Greater(t, out.Quiz.Questions[i].Order, out.Quiz.Questions[i-1].Order)
	}
	budget := out.Quiz.Questions[1]
	require.Len(t, budget.Options, 4)
	assert.Equal(t, []string{"Mittens"}, budget.Options[0].MatchingTypes)
	assert.Nil(t, budget.Options[3].BudgetMax)
	category := out.Quiz.Questions[2]
	require.NotNil(t, category.Options[0].PriceRange)
	assert.Equal(t, "600", category.Options[0].PriceRange.Min.String())

	again, err := svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: testCatalog()[2:]})
	require.NoError(t, err)
	assert.Len(t, again.Quiz.Questions, 3, "destructive replace keeps only the newest run")
}

func TestServiceGenerateValidation(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	merchantID := uuid.New()
	quiz, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: "Snow", Style: enums.QuizStyleFun})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.True(t, errors.Is(err, catalog.ErrEmptyCatalog))

	tooMany := make([]catalog.Product, 11)
	_, err = svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: tooMany})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Generate(ctx, merchantID, uuid.New(), GenerateInput{Products: testCatalog()})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceGenerateConflictsWhileLocked(t *testing.T) {
	svc, _ := newTestService(t, heldLocker{}, nil)
	ctx := context.Background()
	merchantID := uuid.New()
	quiz, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: "Snow", Style: enums.QuizStyleFun})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: testCatalog()})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceGenerateSingleFlightWithRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rdb.Close() })

	gen := &blockingGenerator{
		started: make(chan struct{}),
		release: make(chan struct{}),
		inner:   questions.NewEngine(questions.EngineOptions{Logger: testLogger()}),
	}
	svc, _ := newTestService(t, rdb, gen)
	ctx := context.Background()
	merchantID := uuid.New()
	quiz, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: "Snow", Style: enums.QuizStyleDetailed})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: testCatalog()})
	}()
	<-gen.started

	_, err = svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: testCatalog()})
	requireCode(t, err, pkgerrors.CodeConflict)

	close(gen.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.False(t, mr.Exists(rdb.GenerationLockKey(quiz.ID.String())), "lock must be released after the run")
}

func TestServiceGenerateStyleOverride(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	merchantID := uuid.New()
	quiz, err := svc.Create(ctx, merchantID, CreateQuizInput{Name: "Snow", Style: enums.QuizStyleProfessional})
	require.NoError(t, err)

	base, err := svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Products: testCatalog()})
	require.NoError(t, err)
	fun := enums.QuizStyleFun
	styled, err := svc.Generate(ctx, merchantID, quiz.ID, GenerateInput{Style: &fun, Products: testCatalog()})
	require.NoError(t, err)
	assert.NotEqual(t, base.Quiz.Questions[0].Text, styled.Quiz.Questions[0].Text)
	assert.Equal(t, enums.QuizStyleProfessional, styled.Quiz.Style, "a per-run style does not change the stored quiz style")
}
