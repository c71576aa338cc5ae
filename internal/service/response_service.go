package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/observability"
	"github.com/bit2byte/mentorhub-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the assignment id does not resolve.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrNotAssigned indicates the caller is not on a personal assignment's list.
	ErrNotAssigned = errors.New("caller is not assigned to this assignment")
	// ErrSubmissionURLRequired indicates a solved status without proof.
	ErrSubmissionURLRequired = errors.New("submissionUrl required for solved status")
	// ErrLearningNotesRequired indicates a non-solved status without a problem description.
	ErrLearningNotesRequired = errors.New("learningNotes required for statuses other than solved")
)

// DifficultyRecorder is the doubt-engine seam the transition engine drives
// when a submission reports unresolved difficulty.
type DifficultyRecorder interface {
	RecordDifficulty(ctx context.Context, assignmentID, studentID uint, text string) error
}

// ResponseService validates and applies a student's status update on an
// assignment. The response row is replaced wholesale; unresolved difficulty is
// handed to the doubt engine after the row is durable.
type ResponseService interface {
	Submit(ctx context.Context, actor models.Actor, assignmentID uint, payload dto.ResponseSubmitRequest) (dto.ResponseSnapshot, error)
}

type responseService struct {
	assignments repository.AssignmentRepository
	doubts      DifficultyRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NewResponseService constructs the response transition engine.
func NewResponseService(assignments repository.AssignmentRepository, doubts DifficultyRecorder, validate *validator.Validate, logger zerolog.Logger) ResponseService {
	return &responseService{
		assignments: assignments,
		doubts:      doubts,
		validator:   validate,
		logger:      logger.With().Str("component", "response_service").Logger(),
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
	}
}

func (s *responseService) Submit(ctx context.Context, actor models.Actor, assignmentID uint, payload dto.ResponseSubmitRequest) (dto.ResponseSnapshot, error) {
	// Route guards enforce this too; the service does not trust its callers.
	if !actor.Role.CanSubmit() {
		return dto.ResponseSnapshot{}, ErrNotAssigned
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ResponseSnapshot{}, err
	}

	// Evidence rule: proof for solved, a problem description for everything
	// else. Checked before any write. Notes are sanitized here so that
	// markup-only text counts as missing, not after the row commits.
	notes := strings.TrimSpace(s.sanitizer.Sanitize(payload.LearningNotes))
	if payload.Status == models.ResponseStatusSolved {
		if strings.TrimSpace(payload.SubmissionURL) == "" {
			return dto.ResponseSnapshot{}, ErrSubmissionURLRequired
		}
	} else if notes == "" {
		return dto.ResponseSnapshot{}, ErrLearningNotesRequired
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResponseSnapshot{}, ErrAssignmentNotFound
		}
		return dto.ResponseSnapshot{}, err
	}

	if assignment.IsPersonal() && !assignment.AssignedTo(actor.Email) {
		return dto.ResponseSnapshot{}, ErrNotAssigned
	}

	screenshots := payload.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}

	// Full replacement: omitted evidence fields reset to empty rather than
	// merging with the previous snapshot.
	response := models.Response{
		AssignmentID:  assignmentID,
		StudentID:     actor.ID,
		Status:        payload.Status,
		SubmissionURL: strings.TrimSpace(payload.SubmissionURL),
		Screenshots:   datatypes.NewJSONSlice(screenshots),
		LearningNotes: notes,
	}

	if err := s.assignments.UpsertResponse(ctx, &response); err != nil {
		return dto.ResponseSnapshot{}, err
	}

	observability.ResponsesSubmitted().WithLabelValues(payload.Status).Inc()

	// The doubt write happens after the response row committed. A failure here
	// leaves the response in place and surfaces to the caller; the next
	// non-solved submission converges the thread.
	if payload.Status != models.ResponseStatusSolved {
		if err := s.doubts.RecordDifficulty(ctx, assignmentID, actor.ID, response.LearningNotes); err != nil {
			s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Uint("student_id", actor.ID).Msg("failed to record difficulty for submitted response")
			return dto.ResponseSnapshot{}, err
		}
	}

	saved, err := s.assignments.GetResponse(ctx, assignmentID, actor.ID)
	if err != nil {
		return dto.ResponseSnapshot{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Uint("student_id", actor.ID).
		Str("status", payload.Status).
		Msg("assignment response recorded")

	return dto.NewResponseSnapshot(saved), nil
}
