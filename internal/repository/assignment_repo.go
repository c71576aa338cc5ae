package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bit2byte/mentorhub-api/internal/models"
)

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	DistributionTag string
	Difficulty      string
}

// AssignmentRepository defines persistence operations for assignments and the
// per-student response rows embedded in them.
type AssignmentRepository interface {
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Count(ctx context.Context) (int64, error)
	// UpsertResponse replaces the (assignment, student) response row wholesale,
	// inserting it when absent. The composite unique index is the conflict target.
	UpsertResponse(ctx context.Context, response *models.Response) error
	GetResponse(ctx context.Context, assignmentID, studentID uint) (models.Response, error)
	ListResponsesByStudent(ctx context.Context, studentID uint) ([]models.Response, error)
	UpdateResponse(ctx context.Context, response *models.Response) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{}).Preload("Assignees")

	if tag := strings.TrimSpace(filter.DistributionTag); tag != "" {
		query = query.Where("distribution_tag = ?", tag)
	}
	if difficulty := strings.TrimSpace(filter.Difficulty); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var assignments []models.Assignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Assignees").
		Preload("Responses").
		First(&assignment, id).Error
	if err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *assignmentRepository) UpsertResponse(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "submission_url", "screenshots", "learning_notes", "updated_at",
			}),
		}).
		Create(response).Error
}

func (r *assignmentRepository) GetResponse(ctx context.Context, assignmentID, studentID uint) (models.Response, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&response).Error
	if err != nil {
		return models.Response{}, err
	}

	return response, nil
}

func (r *assignmentRepository) ListResponsesByStudent(ctx context.Context, studentID uint) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *assignmentRepository) UpdateResponse(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Save(response).Error
}
