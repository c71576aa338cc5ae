package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bit2byte/mentorhub-api/internal/models"
)

// DoubtFilter narrows doubt listings.
type DoubtFilter struct {
	StudentID    *uint
	AssignmentID *uint
	Resolved     *bool
}

// DoubtRepository defines persistence operations for doubt threads. Turn
// appends and the matching status change commit inside one transaction so a
// thread never carries a status its conversation does not justify.
type DoubtRepository interface {
	Create(ctx context.Context, doubt *models.Doubt) error
	GetByID(ctx context.Context, id uint) (models.Doubt, error)
	// FindOpen resolves the single unresolved thread for the pair, if any.
	FindOpen(ctx context.Context, assignmentID, studentID uint) (models.Doubt, error)
	AppendTurn(ctx context.Context, doubtID uint, turn *models.Turn, newStatus string) error
	MarkResolved(ctx context.Context, doubtID uint, turn *models.Turn, resolvedBy uint, at time.Time) error
	List(ctx context.Context, filter DoubtFilter) ([]models.Doubt, error)
	CountByStudent(ctx context.Context, studentID uint, resolved bool) (int64, error)
}

type doubtRepository struct {
	db *gorm.DB
}

// NewDoubtRepository instantiates a GORM-backed repository.
func NewDoubtRepository(db *gorm.DB) DoubtRepository {
	return &doubtRepository{db: db}
}

func (r *doubtRepository) Create(ctx context.Context, doubt *models.Doubt) error {
	return r.db.WithContext(ctx).Create(doubt).Error
}

func (r *doubtRepository) GetByID(ctx context.Context, id uint) (models.Doubt, error) {
	var doubt models.Doubt
	err := r.db.WithContext(ctx).
		Preload("Conversation", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Assignment").
		Preload("Student").
		First(&doubt, id).Error
	if err != nil {
		return models.Doubt{}, err
	}

	return doubt, nil
}

func (r *doubtRepository) FindOpen(ctx context.Context, assignmentID, studentID uint) (models.Doubt, error) {
	var doubt models.Doubt
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ? AND resolved = ?", assignmentID, studentID, false).
		Preload("Conversation", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&doubt).Error
	if err != nil {
		return models.Doubt{}, err
	}

	return doubt, nil
}

func (r *doubtRepository) AppendTurn(ctx context.Context, doubtID uint, turn *models.Turn, newStatus string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		turn.DoubtID = doubtID
		if err := tx.Create(turn).Error; err != nil {
			return err
		}

		return tx.Model(&models.Doubt{}).
			Where("id = ?", doubtID).
			Update("current_status", newStatus).Error
	})
}

func (r *doubtRepository) MarkResolved(ctx context.Context, doubtID uint, turn *models.Turn, resolvedBy uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		turn.DoubtID = doubtID
		if err := tx.Create(turn).Error; err != nil {
			return err
		}

		return tx.Model(&models.Doubt{}).
			Where("id = ?", doubtID).
			Updates(map[string]interface{}{
				"current_status": models.DoubtStatusResolved,
				"resolved":       true,
				"resolved_at":    at,
				"resolved_by_id": resolvedBy,
			}).Error
	})
}

func (r *doubtRepository) List(ctx context.Context, filter DoubtFilter) ([]models.Doubt, error) {
	query := r.db.WithContext(ctx).Model(&models.Doubt{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}

	var doubts []models.Doubt
	err := query.
		Preload("Conversation", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Assignment").
		Preload("Student").
		Order("created_at DESC").
		Find(&doubts).Error
	if err != nil {
		return nil, err
	}

	return doubts, nil
}

func (r *doubtRepository) CountByStudent(ctx context.Context, studentID uint, resolved bool) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Doubt{}).
		Where("student_id = ? AND resolved = ?", studentID, resolved).
		Count(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}
