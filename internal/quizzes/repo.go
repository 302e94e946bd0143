package quizzes

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/angelmondragon/quizfinderz-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles quiz persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to quiz operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new quiz row.
func (r *Repository) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("quiz is required")
	}
	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Questions").Create(quiz).Error
}

// FindByID loads a merchant's quiz with questions and options in stored order.
func (r *Repository) FindByID(ctx context.Context, merchantID, quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC")
		}).
		Preload("Questions.Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("id = ? AND merchant_id = ?", quizID, merchantID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ListByMerchant returns up to limit quizzes, newest first, strictly after cursor. Questions are not loaded.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Quiz, error) {
	q := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var quizzes []models.Quiz
	if err := q.Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

// ReplaceQuestions swaps every stored question of quizID for rows inside one transaction
// and stamps the quiz with the producing source.
func (r *Repository) ReplaceQuestions(ctx context.Context, quizID uuid.UUID, rows []models.QuizQuestion, source enums.QuestionSource, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := tx.Model(&models.QuizQuestion{}).Select("id").Where("quiz_id = ?", quizID)
		if err := tx.Where("question_id IN (?)", existing).Delete(&models.QuizOption{}).Error; err != nil {
			return fmt.Errorf("delete options: %w", err)
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		for i := range rows {
			rows[i].QuizID = quizID
			options := rows[i].Options
			if err := tx.Omit("Options").Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("insert question %d: %w", i, err)
			}
			for j := range options {
				options[j].QuestionID = rows[i].ID
			}
			if len(options) > 0 {
				if err := tx.Create(&options).Error; err != nil {
					return fmt.Errorf("insert options for question %d: %w", i, err)
				}
			}
		}
		res := tx.Model(&models.Quiz{}).
			Where("id = ?", quizID).
			Updates(map[string]any{
				"last_source":       source,
				"last_generated_at": at,
				"updated_at":        at,
			})
		if res.Error != nil {
			return fmt.Errorf("stamp quiz: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
