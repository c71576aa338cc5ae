package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/repository"
)

// ErrUnsupportedImage indicates the uploaded file is not an accepted image type.
var ErrUnsupportedImage = errors.New("screenshot must be a png, jpeg or webp image")

// FileUploader abstracts uploading binary data and returning a retrievable URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService attaches screenshot evidence to a student's response.
type UploadService interface {
	AddScreenshot(ctx context.Context, actor models.Actor, assignmentID uint, file *multipart.FileHeader) (dto.ResponseSnapshot, error)
}

type uploadService struct {
	assignments repository.AssignmentRepository
	uploader    FileUploader
	logger      zerolog.Logger
}

// NewUploadService constructs an UploadService instance.
func NewUploadService(assignments repository.AssignmentRepository, uploader FileUploader, logger zerolog.Logger) UploadService {
	return &uploadService{
		assignments: assignments,
		uploader:    uploader,
		logger:      logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) AddScreenshot(ctx context.Context, actor models.Actor, assignmentID uint, file *multipart.FileHeader) (dto.ResponseSnapshot, error) {
	if file == nil {
		return dto.ResponseSnapshot{}, fmt.Errorf("screenshot file is required")
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

	if err := validateImage(file); err != nil {
		return dto.ResponseSnapshot{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.ResponseSnapshot{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	url, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.ResponseSnapshot{}, fmt.Errorf("failed to upload screenshot: %w", err)
	}

	response, err := s.assignments.GetResponse(ctx, assignmentID, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response = models.Response{
			AssignmentID: assignmentID,
			StudentID:    actor.ID,
			Status:       models.ResponseStatusNotAttempted,
			Screenshots:  datatypes.JSONSlice[string]{},
		}
	} else if err != nil {
		return dto.ResponseSnapshot{}, err
	}

	response.Screenshots = append(response.Screenshots, url)

	if response.ID == 0 {
		err = s.assignments.UpsertResponse(ctx, &response)
	} else {
		err = s.assignments.UpdateResponse(ctx, &response)
	}
	if err != nil {
		return dto.ResponseSnapshot{}, err
	}

	s.logger.Info().Uint("assignment_id", assignmentID).Uint("student_id", actor.ID).Msg("screenshot attached to response")

	return dto.NewResponseSnapshot(response), nil
}

func validateImage(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	for _, allowed := range []string{"image/png", "image/jpeg", "image/webp"} {
		if mime.Is(allowed) {
			return nil
		}
	}

	return ErrUnsupportedImage
}
