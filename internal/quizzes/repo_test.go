package quizzes

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/pkg/db"
	"github.com/angelmondragon/quizfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/angelmondragon/quizfinderz-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func mustCreateQuiz(t *testing.T, repo *Repository, merchantID uuid.UUID, name string) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{MerchantID: merchantID, Name: name, Style: enums.QuizStyleFun}
	require.NoError(t, repo.Create(context.Background(), quiz))
	return quiz
}

func questionRow(text string, order int, options ...models.QuizOption) models.QuizQuestion {
	id := uuid.New()
	for i := range options {
		options[i].ID = uuid.New()
		options[i].Position = i
	}
	return models.QuizQuestion{ID: id, Text: text, Type: enums.QuestionTypeMultipleChoice, SortOrder: order, Options: options}
}

func TestRepositoryCreateRejectsDuplicateName(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	merchantID := uuid.New()
	mustCreateQuiz(t, repo, merchantID, "Gift finder")

	err := repo.Create(context.Background(), &models.Quiz{MerchantID: merchantID, Name: "Gift finder", Style: enums.QuizStyleFun})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))

	other := &models.Quiz{MerchantID: uuid.New(), Name: "Gift finder", Style: enums.QuizStyleFun}
	assert.NoError(t, repo.Create(context.Background(), other), "names are unique per merchant only")
}

func TestRepositoryReplaceQuestions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	merchantID := uuid.New()
	quiz := mustCreateQuiz(t, repo, merchantID, "Snow")

	first := []models.QuizQuestion{questionRow("Old", 0, models.QuizOption{Text: "gone"})}
	require.NoError(t, repo.ReplaceQuestions(ctx, quiz.ID, first, enums.QuestionSourceFallback, time.Now()))

	fifty := decimal.NewFromInt(50)
	rows := []models.QuizQuestion{
		questionRow("Second", 1,
			models.QuizOption{Text: "Mittens", MatchingTypes: pq.StringArray{"Mittens"}, PriceRangeMin: decimal.NewNullDecimal(decimal.NewFromInt(20)), PriceRangeMax: decimal.NewNullDecimal(decimal.NewFromInt(30))},
		),
		questionRow("First", 0,
			models.QuizOption{Text: "Under $50", MatchingTags: pq.StringArray{}, MatchingTypes: pq.StringArray{"Mittens"}, BudgetMin: decimal.NewNullDecimal(decimal.Zero), BudgetMax: decimal.NewNullDecimal(fifty)},
			models.QuizOption{Text: "Over $50", MatchingTags: pq.StringArray{"a", "b"}, BudgetMin: decimal.NewNullDecimal(fifty)},
		),
	}
	rows[1].ConditionalRules = datatypes.JSON(`{"showIf":"budget"}`)
	require.NoError(t, repo.ReplaceQuestions(ctx, quiz.ID, rows, enums.QuestionSourceGenerative, time.Now()))

	stored, err := repo.FindByID(ctx, merchantID, quiz.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 2)
	assert.Equal(t, "First", stored.Questions[0].Text)
	assert.Equal(t, "Second", stored.Questions[1].Text)
	require.NotNil(t, stored.LastSource)
	assert.Equal(t, enums.QuestionSourceGenerative, *stored.LastSource)
	assert.NotNil(t, stored.LastGeneratedAt)

	budget := stored.Questions[0]
	require.Len(t, budget.Options, 2)
	assert.Equal(t, "Under $50", budget.Options[0].Text)
	assert.True(t, budget.Options[0].BudgetMax.Valid)
	assert.True(t, budget.Options[0].BudgetMax.Decimal.Equal(fifty))
	assert.False(t, budget.Options[1].BudgetMax.Valid)
	assert.Equal(t, []string{"a", "b"}, []string(budget.Options[1].MatchingTags))
	assert.JSONEq(t, `{"showIf":"budget"}`, string(budget.ConditionalRules))

	var optionCount int64
	require.NoError(t, repo.db.Model(&models.QuizOption{}).Count(&optionCount).Error)
	assert.Equal(t, int64(3), optionCount, "options of replaced questions must be removed")
}

func TestRepositoryFindByIDScopesMerchant(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	quiz := mustCreateQuiz(t, repo, uuid.New(), "Scoped")

	_, err := repo.FindByID(context.Background(), uuid.New(), quiz.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryReplaceQuestionsMissingQuiz(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	rows := []models.QuizQuestion{questionRow("Q", 0, models.QuizOption{Text: "o"})}

	err := repo.ReplaceQuestions(context.Background(), uuid.New(), rows, enums.QuestionSourceFallback, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, repo.db.Model(&models.QuizQuestion{}).Count(&count).Error)
	assert.Zero(t, count, "failed replace must roll back")
}

func TestRepositoryListByMerchantKeyset(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	merchantID := uuid.New()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		quiz := &models.Quiz{MerchantID: merchantID, Name: "Quiz " + string(rune('A'+i)), Style: enums.QuizStyleFun, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, quiz))
		ids = append(ids, quiz.ID)
	}
	require.NoError(t, repo.Create(ctx, &models.Quiz{MerchantID: uuid.New(), Name: "Other", Style: enums.QuizStyleFun}))

	first, err := repo.ListByMerchant(ctx, merchantID, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[2], first[0].ID)
	assert.Equal(t, ids[1], first[1].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListByMerchant(ctx, merchantID, 2, cursor)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
	assert.Empty(t, rest[0].Questions)
}
