package quizzes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/internal/questions"
	"github.com/angelmondragon/quizfinderz-backend/pkg/db"
	"github.com/angelmondragon/quizfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quizfinderz-backend/pkg/errors"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
	"github.com/angelmondragon/quizfinderz-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultLockTTL     = 2 * time.Minute
	defaultMaxProducts = 100
	maxNameLength      = 120
)

type quizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	FindByID(ctx context.Context, merchantID, quizID uuid.UUID) (*models.Quiz, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Quiz, error)
	ReplaceQuestions(ctx context.Context, quizID uuid.UUID, rows []models.QuizQuestion, source enums.QuestionSource, at time.Time) error
}

type questionGenerator interface {
	Generate(ctx context.Context, products []catalog.Product, style enums.QuizStyle) (*questions.Result, error)
}

// Locker is the single-flight surface shared by the redis client and memstore.
type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
	GenerationLockKey(quizID string) string
}

// Service exposes quiz operations.
type Service interface {
	Create(ctx context.Context, merchantID uuid.UUID, input CreateQuizInput) (*QuizDTO, error)
	Get(ctx context.Context, merchantID, quizID uuid.UUID) (*QuizDTO, error)
	List(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*pagination.Page[QuizDTO], error)
	Generate(ctx context.Context, merchantID, quizID uuid.UUID, input GenerateInput) (*GenerateOutput, error)
}

// ServiceParams wires the service collaborators.
type ServiceParams struct {
	Repo        quizRepository
	Generator   questionGenerator
	Locker      Locker
	Logger      *logger.Logger
	LockTTL     time.Duration
	MaxProducts int
}

type service struct {
	repo        quizRepository
	generator   questionGenerator
	locker      Locker
	logg        *logger.Logger
	lockTTL     time.Duration
	maxProducts int
	now         func() time.Time
}

// NewService builds a quiz service with the provided collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("quiz repository required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("question generator required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("generation locker required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	lockTTL := params.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	maxProducts := params.MaxProducts
	if maxProducts <= 0 {
		maxProducts = defaultMaxProducts
	}
	return &service{
		repo:        params.Repo,
		generator:   params.Generator,
		locker:      params.Locker,
		logg:        params.Logger,
		lockTTL:     lockTTL,
		maxProducts: maxProducts,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, merchantID uuid.UUID, input CreateQuizInput) (*QuizDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	style := input.Style
	if !style.IsValid() {
		style = enums.QuizStyleProfessional
	}

	now := s.now().UTC()
	quiz := &models.Quiz{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Name:       name,
		Style:      style,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, quiz); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a quiz with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quiz")
	}
	return FromModel(quiz), nil
}

func (s *service) Get(ctx context.Context, merchantID, quizID uuid.UUID) (*QuizDTO, error) {
	quiz, err := s.load(ctx, merchantID, quizID)
	if err != nil {
		return nil, err
	}
	return FromModel(quiz), nil
}

func (s *service) List(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*pagination.Page[QuizDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByMerchant(ctx, merchantID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quizzes")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(q models.Quiz) pagination.Cursor {
		return pagination.Cursor{CreatedAt: q.CreatedAt, ID: q.ID}
	})
	page := &pagination.Page[QuizDTO]{Items: make([]QuizDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Generate(ctx context.Context, merchantID, quizID uuid.UUID, input GenerateInput) (*GenerateOutput, error) {
	ctx = s.logg.WithQuizID(ctx, quizID.String())

	if len(input.Products) > s.maxProducts {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d products per generation", s.maxProducts))
	}
	if len(input.Products) == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, catalog.ErrEmptyCatalog, "catalog is empty")
	}

	quiz, err := s.load(ctx, merchantID, quizID)
	if err != nil {
		return nil, err
	}
	style := quiz.Style
	if input.Style != nil {
		style = *input.Style
	}

	key := s.locker.GenerationLockKey(quizID.String())
	token := uuid.NewString()
	acquired, err := s.locker.AcquireLock(ctx, key, token, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire generation lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "generation already in progress for this quiz")
	}
	defer func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			s.logg.Error(ctx, "quizzes.release_lock_failed", err)
		}
	}()

	result, err := s.generator.Generate(ctx, input.Products, style)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "catalog is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate questions")
	}

	rows, err := ToModels(quizID, result.Questions)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode questions")
	}
	if err := s.repo.ReplaceQuestions(ctx, quizID, rows, result.Source, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quiz not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store questions")
	}

	stored, err := s.load(ctx, merchantID, quizID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"source":    result.Source.String(),
		"questions": len(rows),
	}), "quizzes.questions_replaced")

	return &GenerateOutput{
		Quiz:       FromModel(stored),
		Source:     result.Source,
		Backfilled: result.Backfilled,
		Sanitize:   result.Sanitize,
	}, nil
}

func (s *service) load(ctx context.Context, merchantID, quizID uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.repo.FindByID(ctx, merchantID, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quiz not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quiz")
	}
	return quiz, nil
}
