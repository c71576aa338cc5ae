package dto

import (
	"time"

	"github.com/bit2byte/mentorhub-api/internal/models"
)

// AssignmentCreateRequest is the payload mentors use to publish an assignment.
type AssignmentCreateRequest struct {
	Title           string            `json:"title" validate:"required,min=3"`
	Explanation     string            `json:"explanation"`
	Difficulty      string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Tags            []string          `json:"tags"`
	MajorTopic      string            `json:"majorTopic"`
	Category        string            `json:"category" validate:"omitempty,oneof=question project"`
	GradingNotes    string            `json:"gradingNotes"`
	DistributionTag string            `json:"distributionTag" validate:"omitempty,oneof=central practice hw cw personal"`
	Assignees       []AssigneePayload `json:"assignees" validate:"dive"`
}

// AssigneePayload names one recipient of a personal assignment.
type AssigneePayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ResponseSubmitRequest carries a student's status update for an assignment.
type ResponseSubmitRequest struct {
	Status        string   `json:"responseStatus" validate:"required,oneof='not attempted' solved 'partially solved' 'not understanding' 'having doubt'"`
	SubmissionURL string   `json:"submissionUrl"`
	Screenshots   []string `json:"screenshots"`
	LearningNotes string   `json:"learningNotes"`
}

// AssignmentFilter describes query-string filters for assignment listing.
type AssignmentFilter struct {
	DistributionTag string `query:"distributionTag" validate:"omitempty,oneof=central practice hw cw personal"`
	Difficulty      string `query:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// AssignmentResponse is the API view of an assignment.
type AssignmentResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Explanation     string             `json:"explanation"`
	Difficulty      string             `json:"difficulty"`
	Tags            []string           `json:"tags"`
	MajorTopic      string             `json:"majorTopic"`
	Category        string             `json:"category"`
	GradingNotes    string             `json:"gradingNotes"`
	DistributionTag string             `json:"distributionTag"`
	CreatedByID     uint               `json:"createdById"`
	Assignees       []AssigneePayload  `json:"assignees,omitempty"`
	Responses       []ResponseSnapshot `json:"responses,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// ResponseSnapshot is the API view of one student's response row.
type ResponseSnapshot struct {
	ID            uint      `json:"id"`
	AssignmentID  uint      `json:"assignmentId"`
	StudentID     uint      `json:"studentId"`
	Status        string    `json:"responseStatus"`
	SubmissionURL string    `json:"submissionUrl"`
	Screenshots   []string  `json:"screenshots"`
	LearningNotes string    `json:"learningNotes"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AssignmentLite summarizes an assignment inside other payloads.
type AssignmentLite struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Difficulty      string `json:"difficulty"`
	DistributionTag string `json:"distributionTag"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:              model.ID,
		Title:           model.Title,
		Explanation:     model.Explanation,
		Difficulty:      model.Difficulty,
		Tags:            []string(model.Tags),
		MajorTopic:      model.MajorTopic,
		Category:        model.Category,
		GradingNotes:    model.GradingNotes,
		DistributionTag: model.DistributionTag,
		CreatedByID:     model.CreatedByID,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	for _, assignee := range model.Assignees {
		response.Assignees = append(response.Assignees, AssigneePayload{
			Name:  assignee.Name,
			Email: assignee.Email,
		})
	}

	for _, snapshot := range model.Responses {
		response.Responses = append(response.Responses, NewResponseSnapshot(snapshot))
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

// NewResponseSnapshot converts a Response model into a DTO.
func NewResponseSnapshot(model models.Response) ResponseSnapshot {
	return ResponseSnapshot{
		ID:            model.ID,
		AssignmentID:  model.AssignmentID,
		StudentID:     model.StudentID,
		Status:        model.Status,
		SubmissionURL: model.SubmissionURL,
		Screenshots:   []string(model.Screenshots),
		LearningNotes: model.LearningNotes,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewAssignmentLite summarizes an assignment for embedding in doubt payloads.
func NewAssignmentLite(model models.Assignment) AssignmentLite {
	return AssignmentLite{
		ID:              model.ID,
		Title:           model.Title,
		Difficulty:      model.Difficulty,
		DistributionTag: model.DistributionTag,
	}
}
