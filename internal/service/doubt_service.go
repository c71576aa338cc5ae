package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/observability"
	"github.com/bit2byte/mentorhub-api/internal/repository"
)

var (
	// ErrDoubtNotFound indicates the doubt id does not resolve.
	ErrDoubtNotFound = errors.New("doubt not found")
	// ErrDoubtForbidden indicates the caller does not own the thread.
	ErrDoubtForbidden = errors.New("caller is not the owner of this doubt")
	// ErrDoubtResolved indicates a mutation was attempted on a terminal thread.
	ErrDoubtResolved = errors.New("doubt is already resolved")
	// ErrBlankMessage indicates the message text was empty after sanitization.
	ErrBlankMessage = errors.New("message text is required")
)

// ReplyNotifier delivers a best-effort notification to the student after a
// mentor reply has been durably recorded.
type ReplyNotifier interface {
	NotifyReply(ctx context.Context, student models.User, assignment models.Assignment, doubtText, reply string) error
}

// DoubtService is the conversation engine for doubt threads. Every operation
// appends exactly one immutable turn and moves the thread status; resolved
// threads are terminal.
type DoubtService interface {
	// RecordDifficulty reacts to a non-solved assignment response: it extends
	// the open thread for the pair or opens a new one.
	RecordDifficulty(ctx context.Context, assignmentID, studentID uint, text string) error
	Create(ctx context.Context, actor models.Actor, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error)
	Reply(ctx context.Context, actor models.Actor, doubtID uint, text string) (dto.DoubtResponse, error)
	Followup(ctx context.Context, actor models.Actor, doubtID uint, text string) (dto.DoubtResponse, error)
	Resolve(ctx context.Context, actor models.Actor, doubtID uint) (dto.DoubtResponse, error)
	Get(ctx context.Context, actor models.Actor, doubtID uint) (dto.DoubtResponse, error)
	List(ctx context.Context, actor models.Actor, filter dto.DoubtFilter) ([]dto.DoubtResponse, error)
}

type doubtService struct {
	doubts      repository.DoubtRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	notifier    ReplyNotifier
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NewDoubtService constructs the doubt conversation engine.
func NewDoubtService(doubts repository.DoubtRepository, assignments repository.AssignmentRepository, users repository.UserRepository, notifier ReplyNotifier, validate *validator.Validate, logger zerolog.Logger) DoubtService {
	return &doubtService{
		doubts:      doubts,
		assignments: assignments,
		users:       users,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "doubt_service").Logger(),
		tracer:      otel.Tracer("github.com/bit2byte/mentorhub-api/internal/service/doubt"),
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
	}
}

func (s *doubtService) RecordDifficulty(ctx context.Context, assignmentID, studentID uint, text string) error {
	message, err := s.cleanMessage(text)
	if err != nil {
		return err
	}

	spanCtx, span := s.tracer.Start(ctx, "doubt.record_difficulty", trace.WithAttributes(
		attribute.Int("assignment.id", int(assignmentID)),
		attribute.Int("student.id", int(studentID)),
	))
	defer span.End()

	existing, err := s.doubts.FindOpen(spanCtx, assignmentID, studentID)
	switch {
	case err == nil:
		turn := models.Turn{SenderID: studentID, Type: models.TurnTypeFollowUp, Message: message}
		if err := s.doubts.AppendTurn(spanCtx, existing.ID, &turn, models.DoubtStatusUnsatisfied); err != nil {
			span.RecordError(err)
			return err
		}
		observability.DoubtTurns().WithLabelValues(models.TurnTypeFollowUp).Inc()
		s.logger.Info().Uint("doubt_id", existing.ID).Msg("open doubt extended from response submission")
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		_, openErr := s.openThread(spanCtx, assignmentID, studentID, message, "response")
		return openErr

	default:
		span.RecordError(err)
		return err
	}
}

func (s *doubtService) Create(ctx context.Context, actor models.Actor, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error) {
	if !actor.Role.CanSubmit() {
		return dto.DoubtResponse{}, ErrDoubtForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.DoubtResponse{}, err
	}

	message, err := s.cleanMessage(payload.DoubtText)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DoubtResponse{}, ErrAssignmentNotFound
		}
		return dto.DoubtResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "doubt.create", trace.WithAttributes(
		attribute.Int("assignment.id", int(payload.AssignmentID)),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	// An explicit "ask a doubt" always opens a fresh thread, even when one is
	// already open for the pair.
	created, err := s.openThread(spanCtx, payload.AssignmentID, actor.ID, message, string(actor.Role))
	if err != nil {
		span.RecordError(err)
		return dto.DoubtResponse{}, err
	}

	return s.loadResponse(spanCtx, created.ID)
}

func (s *doubtService) Reply(ctx context.Context, actor models.Actor, doubtID uint, text string) (dto.DoubtResponse, error) {
	if !actor.Role.CanMentor() {
		return dto.DoubtResponse{}, ErrDoubtForbidden
	}

	message, err := s.cleanMessage(text)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	doubt, err := s.load(ctx, doubtID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	if !doubt.Open() {
		return dto.DoubtResponse{}, ErrDoubtResolved
	}

	spanCtx, span := s.tracer.Start(ctx, "doubt.reply", trace.WithAttributes(
		attribute.Int("doubt.id", int(doubtID)),
		attribute.Int("mentor.id", int(actor.ID)),
	))
	defer span.End()

	turn := models.Turn{SenderID: actor.ID, Type: models.TurnTypeReply, Message: message}
	if err := s.doubts.AppendTurn(spanCtx, doubtID, &turn, models.DoubtStatusReplied); err != nil {
		span.RecordError(err)
		return dto.DoubtResponse{}, err
	}
	observability.DoubtTurns().WithLabelValues(models.TurnTypeReply).Inc()

	updated, err := s.loadResponse(spanCtx, doubtID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	s.dispatchReplyEmail(doubt, message)

	s.logger.Info().Uint("doubt_id", doubtID).Uint("mentor_id", actor.ID).Msg("mentor replied to doubt")

	return updated, nil
}

func (s *doubtService) Followup(ctx context.Context, actor models.Actor, doubtID uint, text string) (dto.DoubtResponse, error) {
	message, err := s.cleanMessage(text)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	doubt, err := s.load(ctx, doubtID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	if doubt.StudentID != actor.ID {
		return dto.DoubtResponse{}, ErrDoubtForbidden
	}
	if !doubt.Open() {
		return dto.DoubtResponse{}, ErrDoubtResolved
	}

	turn := models.Turn{SenderID: actor.ID, Type: models.TurnTypeFollowUp, Message: message}
	if err := s.doubts.AppendTurn(ctx, doubtID, &turn, models.DoubtStatusUnsatisfied); err != nil {
		return dto.DoubtResponse{}, err
	}
	observability.DoubtTurns().WithLabelValues(models.TurnTypeFollowUp).Inc()

	return s.loadResponse(ctx, doubtID)
}

func (s *doubtService) Resolve(ctx context.Context, actor models.Actor, doubtID uint) (dto.DoubtResponse, error) {
	doubt, err := s.load(ctx, doubtID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	if doubt.StudentID != actor.ID {
		return dto.DoubtResponse{}, ErrDoubtForbidden
	}
	if !doubt.Open() {
		return dto.DoubtResponse{}, ErrDoubtResolved
	}

	turn := models.Turn{SenderID: actor.ID, Type: models.TurnTypeResolve, Message: "Resolved"}
	if err := s.doubts.MarkResolved(ctx, doubtID, &turn, actor.ID, s.now().UTC()); err != nil {
		return dto.DoubtResponse{}, err
	}
	observability.DoubtTurns().WithLabelValues(models.TurnTypeResolve).Inc()

	s.logger.Info().Uint("doubt_id", doubtID).Uint("student_id", actor.ID).Msg("doubt resolved by owner")

	return s.loadResponse(ctx, doubtID)
}

func (s *doubtService) Get(ctx context.Context, actor models.Actor, doubtID uint) (dto.DoubtResponse, error) {
	doubt, err := s.load(ctx, doubtID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	if actor.Role.CanSubmit() && doubt.StudentID != actor.ID {
		return dto.DoubtResponse{}, ErrDoubtForbidden
	}

	return dto.NewDoubtResponse(doubt), nil
}

func (s *doubtService) List(ctx context.Context, actor models.Actor, filter dto.DoubtFilter) ([]dto.DoubtResponse, error) {
	repoFilter := repository.DoubtFilter{
		AssignmentID: filter.AssignmentID,
		Resolved:     filter.Resolved,
	}
	if actor.Role.CanSubmit() {
		studentID := actor.ID
		repoFilter.StudentID = &studentID
	}

	doubts, err := s.doubts.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewDoubtResponseSlice(doubts), nil
}

func (s *doubtService) openThread(ctx context.Context, assignmentID, studentID uint, message, origin string) (models.Doubt, error) {
	doubt := models.Doubt{
		AssignmentID:  assignmentID,
		StudentID:     studentID,
		CurrentStatus: models.DoubtStatusNew,
		Metadata:      datatypes.JSONMap{"opened_via": origin},
		Conversation: []models.Turn{
			{SenderID: studentID, Type: models.TurnTypeDoubt, Message: message},
		},
	}

	if err := s.doubts.Create(ctx, &doubt); err != nil {
		return models.Doubt{}, err
	}

	observability.DoubtsOpened().Inc()
	observability.DoubtTurns().WithLabelValues(models.TurnTypeDoubt).Inc()
	s.logger.Info().Uint("doubt_id", doubt.ID).Uint("assignment_id", assignmentID).Uint("student_id", studentID).Msg("doubt thread opened")

	return doubt, nil
}

func (s *doubtService) load(ctx context.Context, doubtID uint) (models.Doubt, error) {
	doubt, err := s.doubts.GetByID(ctx, doubtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Doubt{}, ErrDoubtNotFound
		}
		return models.Doubt{}, err
	}

	return doubt, nil
}

func (s *doubtService) loadResponse(ctx context.Context, doubtID uint) (dto.DoubtResponse, error) {
	doubt, err := s.load(ctx, doubtID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	return dto.NewDoubtResponse(doubt), nil
}

func (s *doubtService) cleanMessage(text string) (string, error) {
	message := strings.TrimSpace(s.sanitizer.Sanitize(text))
	if message == "" {
		return "", ErrBlankMessage
	}

	return message, nil
}

// dispatchReplyEmail notifies the student off the request path. The reply is
// already durable; a failed send is logged and counted, never surfaced.
func (s *doubtService) dispatchReplyEmail(doubt models.Doubt, reply string) {
	if s.notifier == nil {
		return
	}

	student := doubt.Student
	assignment := doubt.Assignment
	doubtText := doubt.LatestStudentMessage()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if student.Email == "" {
			loaded, err := s.users.GetByID(ctx, doubt.StudentID)
			if err != nil {
				observability.ReplyEmails().WithLabelValues("error").Inc()
				s.logger.Warn().Err(err).Uint("doubt_id", doubt.ID).Msg("failed to resolve student for reply email")
				return
			}
			student = loaded
		}

		if err := s.notifier.NotifyReply(ctx, student, assignment, doubtText, reply); err != nil {
			observability.ReplyEmails().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Uint("doubt_id", doubt.ID).Msg("failed to send reply notification")
			return
		}

		observability.ReplyEmails().WithLabelValues("sent").Inc()
	}()
}
