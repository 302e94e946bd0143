package quizzes

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/internal/questions"
	"github.com/angelmondragon/quizfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CreateQuizInput captures the fields for a new quiz. Style is already coerced.
type CreateQuizInput struct {
	Name  string
	Style enums.QuizStyle
}

// GenerateInput carries one catalog batch. A nil Style keeps the quiz's stored style.
type GenerateInput struct {
	Style    *enums.QuizStyle
	Products []catalog.Product
}

// QuizDTO is the API view of a quiz.
type QuizDTO struct {
	ID              uuid.UUID             `json:"id"`
	MerchantID      uuid.UUID             `json:"merchant_id"`
	Name            string                `json:"name"`
	Style           enums.QuizStyle       `json:"style"`
	LastSource      *enums.QuestionSource `json:"last_source,omitempty"`
	LastGeneratedAt *time.Time            `json:"last_generated_at,omitempty"`
	Questions       []QuestionDTO         `json:"questions"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// QuestionDTO is a stored question.
type QuestionDTO struct {
	ID               uuid.UUID          `json:"id"`
	Text             string             `json:"text"`
	Type             enums.QuestionType `json:"type"`
	Order            int                `json:"order"`
	ConditionalRules json.RawMessage    `json:"conditional_rules,omitempty"`
	Options          []OptionDTO        `json:"options"`
}

// OptionDTO is a stored answer option.
type OptionDTO struct {
	ID            uuid.UUID             `json:"id"`
	Text          string                `json:"text"`
	MatchingTags  []string              `json:"matching_tags"`
	MatchingTypes []string              `json:"matching_types"`
	BudgetMin     *decimal.Decimal      `json:"budget_min,omitempty"`
	BudgetMax     *decimal.Decimal      `json:"budget_max,omitempty"`
	PriceRange    *questions.PriceRange `json:"price_range,omitempty"`
}

// GenerateOutput is the stored quiz plus run metadata.
type GenerateOutput struct {
	Quiz       *QuizDTO                 `json:"quiz"`
	Source     enums.QuestionSource     `json:"source"`
	Backfilled int                      `json:"backfilled"`
	Sanitize   questions.SanitizeReport `json:"sanitize"`
}

// FromModel maps a quiz with preloaded questions to its DTO.
func FromModel(q *models.Quiz) *QuizDTO {
	if q == nil {
		return nil
	}
	dto := &QuizDTO{
		ID:              q.ID,
		MerchantID:      q.MerchantID,
		Name:            q.Name,
		Style:           q.Style,
		LastSource:      q.LastSource,
		LastGeneratedAt: q.LastGeneratedAt,
		Questions:       make([]QuestionDTO, 0, len(q.Questions)),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
	for _, question := range q.Questions {
		qdto := QuestionDTO{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Order:   question.SortOrder,
			Options: make([]OptionDTO, 0, len(question.Options)),
		}
		if len(question.ConditionalRules) > 0 {
			qdto.ConditionalRules = json.RawMessage(question.ConditionalRules)
		}
		for _, opt := range question.Options {
			odto := OptionDTO{
				ID:            opt.ID,
				Text:          opt.Text,
				MatchingTags:  nonNil(opt.MatchingTags),
				MatchingTypes: nonNil(opt.MatchingTypes),
				BudgetMin:     fromNull(opt.BudgetMin),
				BudgetMax:     fromNull(opt.BudgetMax),
			}
			if opt.PriceRangeMin.Valid && opt.PriceRangeMax.Valid {
				odto.PriceRange = &questions.PriceRange{Min: opt.PriceRangeMin.Decimal, Max: opt.PriceRangeMax.Decimal}
			}
			qdto.Options = append(qdto.Options, odto)
		}
		dto.Questions = append(dto.Questions, qdto)
	}
	return dto
}

// ToModels converts a generation result into rows for quizID with fresh ids.
func ToModels(quizID uuid.UUID, generated []questions.Question) ([]models.QuizQuestion, error) {
	rows := make([]models.QuizQuestion, 0, len(generated))
	for _, q := range generated {
		row := models.QuizQuestion{
			ID:        uuid.New(),
			QuizID:    quizID,
			Text:      q.Text,
			Type:      q.Type,
			SortOrder: q.Order,
			Options:   make([]models.QuizOption, 0, len(q.Options)),
		}
		if q.ConditionalRules != nil {
			raw, err := json.Marshal(q.ConditionalRules)
			if err != nil {
				return nil, err
			}
			row.ConditionalRules = datatypes.JSON(raw)
		}
		for i, opt := range q.Options {
			option := models.QuizOption{
				ID:            uuid.New(),
				QuestionID:    row.ID,
				Text:          opt.Text,
				Position:      i,
				MatchingTags:  pq.StringArray(nonNil(opt.MatchingTags)),
				MatchingTypes: pq.StringArray(nonNil(opt.MatchingTypes)),
				BudgetMin:     toNull(opt.BudgetMin),
				BudgetMax:     toNull(opt.BudgetMax),
			}
			if opt.PriceRange != nil {
				option.PriceRangeMin = decimal.NewNullDecimal(opt.PriceRange.Min)
				option.PriceRangeMax = decimal.NewNullDecimal(opt.PriceRange.Max)
			}
			row.Options = append(row.Options, option)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func toNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNull(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
