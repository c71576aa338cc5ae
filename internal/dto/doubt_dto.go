package dto

import (
	"time"

	"github.com/bit2byte/mentorhub-api/internal/models"
)

// DoubtCreateRequest raises a fresh doubt thread on an assignment.
type DoubtCreateRequest struct {
	AssignmentID uint   `json:"assignmentId" validate:"required,gt=0"`
	DoubtText    string `json:"doubtText" validate:"required"`
}

// DoubtReplyRequest carries a mentor's reply on a thread.
type DoubtReplyRequest struct {
	Reply string `json:"reply" validate:"required"`
}

// DoubtFollowupRequest carries a student's follow-up on a thread.
type DoubtFollowupRequest struct {
	Followup string `json:"followup" validate:"required"`
}

// DoubtFilter describes query-string filters for doubt listing.
type DoubtFilter struct {
	AssignmentID *uint `query:"assignmentId"`
	Resolved     *bool `query:"resolved"`
}

// TurnResponse is the API view of one conversation turn.
type TurnResponse struct {
	ID        uint      `json:"id"`
	SenderID  uint      `json:"senderId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLite summarizes a user without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DoubtResponse is the API view of a doubt thread with its conversation.
type DoubtResponse struct {
	ID            uint           `json:"id"`
	AssignmentID  uint           `json:"assignmentId"`
	StudentID     uint           `json:"studentId"`
	CurrentStatus string         `json:"currentStatus"`
	Resolved      bool           `json:"resolved"`
	ResolvedAt    *time.Time     `json:"resolvedAt"`
	ResolvedByID  *uint          `json:"resolvedById"`
	Conversation  []TurnResponse `json:"conversation"`
	Assignment    AssignmentLite `json:"assignment"`
	Student       UserLite       `json:"student"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// NewDoubtResponse converts a Doubt model into a DTO. Conversation order is
// preserved as loaded (ascending by timestamp).
func NewDoubtResponse(model models.Doubt) DoubtResponse {
	response := DoubtResponse{
		ID:            model.ID,
		AssignmentID:  model.AssignmentID,
		StudentID:     model.StudentID,
		CurrentStatus: model.CurrentStatus,
		Resolved:      model.Resolved,
		ResolvedAt:    model.ResolvedAt,
		ResolvedByID:  model.ResolvedByID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	response.Conversation = make([]TurnResponse, 0, len(model.Conversation))
	for _, turn := range model.Conversation {
		response.Conversation = append(response.Conversation, TurnResponse{
			ID:        turn.ID,
			SenderID:  turn.SenderID,
			Type:      turn.Type,
			Message:   turn.Message,
			Timestamp: turn.CreatedAt,
		})
	}

	if model.Assignment.ID != 0 {
		response.Assignment = NewAssignmentLite(model.Assignment)
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewDoubtResponseSlice converts doubt models into DTOs.
func NewDoubtResponseSlice(doubts []models.Doubt) []DoubtResponse {
	responses := make([]DoubtResponse, 0, len(doubts))
	for _, doubt := range doubts {
		responses = append(responses, NewDoubtResponse(doubt))
	}

	return responses
}
