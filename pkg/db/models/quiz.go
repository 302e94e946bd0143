package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
)

// Quiz is the merchant-owned container for generated questions.
type Quiz struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID      uuid.UUID             `gorm:"column:merchant_id;type:uuid;not null"`
	Name            string                `gorm:"column:name;not null"`
	Style           enums.QuizStyle       `gorm:"column:style;not null;default:professional"`
	LastSource      *enums.QuestionSource `gorm:"column:last_source"`
	LastGeneratedAt *time.Time            `gorm:"column:last_generated_at"`
	Questions       []QuizQuestion        `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// QuizQuestion is one stored question; SortOrder is the generation order field.
type QuizQuestion struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuizID           uuid.UUID          `gorm:"column:quiz_id;type:uuid;not null"`
	Text             string             `gorm:"column:text;not null"`
	Type             enums.QuestionType `gorm:"column:type;not null;default:multiple_choice"`
	SortOrder        int                `gorm:"column:sort_order;not null"`
	ConditionalRules datatypes.JSON     `gorm:"column:conditional_rules;type:jsonb"`
	Options          []QuizOption       `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// QuizOption stores an answer option with its product-matching predicates.
type QuizOption struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuestionID    uuid.UUID           `gorm:"column:question_id;type:uuid;not null"`
	Text          string              `gorm:"column:text;not null"`
	Position      int                 `gorm:"column:position;not null"`
	MatchingTags  pq.StringArray      `gorm:"column:matching_tags;type:text[]"`
	MatchingTypes pq.StringArray      `gorm:"column:matching_types;type:text[]"`
	BudgetMin     decimal.NullDecimal `gorm:"column:budget_min;type:numeric(12,2)"`
	BudgetMax     decimal.NullDecimal `gorm:"column:budget_max;type:numeric(12,2)"`
	PriceRangeMin decimal.NullDecimal `gorm:"column:price_range_min;type:numeric(12,2)"`
	PriceRangeMax decimal.NullDecimal `gorm:"column:price_range_max;type:numeric(12,2)"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
