package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/repository"
)

// ErrAssigneesRequired indicates a personal assignment without recipients.
var ErrAssigneesRequired = errors.New("personal assignments must include assignees")

// AssignmentService manages assignment definitions and visibility.
type AssignmentService interface {
	Create(ctx context.Context, actor models.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	List(ctx context.Context, actor models.Actor, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor models.Actor, id uint) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: repo,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, actor models.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:           payload.Title,
		Explanation:     payload.Explanation,
		Difficulty:      defaultString(payload.Difficulty, "easy"),
		Tags:            datatypes.NewJSONSlice(payload.Tags),
		MajorTopic:      payload.MajorTopic,
		Category:        defaultString(payload.Category, "question"),
		GradingNotes:    payload.GradingNotes,
		DistributionTag: defaultString(payload.DistributionTag, models.DistributionCentral),
		CreatedByID:     actor.ID,
	}

	if assignment.IsPersonal() {
		if len(payload.Assignees) == 0 {
			return dto.AssignmentResponse{}, ErrAssigneesRequired
		}
		for _, assignee := range payload.Assignees {
			assignment.Assignees = append(assignment.Assignees, models.Assignee{
				Name:         assignee.Name,
				Email:        assignee.Email,
				AssignedByID: actor.ID,
			})
		}
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Str("distribution_tag", assignment.DistributionTag).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, actor models.Actor, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{
		DistributionTag: filter.DistributionTag,
		Difficulty:      filter.Difficulty,
	})
	if err != nil {
		return nil, err
	}

	// Students only see personal assignments addressed to them.
	if actor.Role.CanSubmit() {
		visible := make([]models.Assignment, 0, len(assignments))
		for _, assignment := range assignments {
			if assignment.IsPersonal() && !assignment.AssignedTo(actor.Email) {
				continue
			}
			visible = append(visible, assignment)
		}
		assignments = visible
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, actor models.Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if actor.Role.CanSubmit() && assignment.IsPersonal() && !assignment.AssignedTo(actor.Email) {
		return dto.AssignmentResponse{}, ErrNotAssigned
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
