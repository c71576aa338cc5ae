package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Distribution tags classify an assignment's audience scope.
const (
	DistributionCentral  = "central"
	DistributionPractice = "practice"
	DistributionHW       = "hw"
	DistributionCW       = "cw"
	DistributionPersonal = "personal"
)

// Response statuses a student can report on an assignment.
const (
	ResponseStatusNotAttempted     = "not attempted"
	ResponseStatusSolved           = "solved"
	ResponseStatusPartiallySolved  = "partially solved"
	ResponseStatusNotUnderstanding = "not understanding"
	ResponseStatusHavingDoubt      = "having doubt"
)

// Assignment is a coding or project task handed out to students. Definition
// fields are immutable through the response workflow.
type Assignment struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Title           string                      `gorm:"size:255;not null" json:"title"`
	Explanation     string                      `gorm:"type:text" json:"explanation"`
	Difficulty      string                      `gorm:"size:16;default:easy" json:"difficulty"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	MajorTopic      string                      `gorm:"size:128" json:"majorTopic"`
	Category        string                      `gorm:"size:32;not null;default:question" json:"category"`
	GradingNotes    string                      `gorm:"type:text" json:"gradingNotes"`
	DistributionTag string                      `gorm:"size:32;not null;default:central;index" json:"distributionTag"`
	CreatedByID     uint                        `gorm:"not null" json:"createdById"`
	Assignees       []Assignee                  `json:"assignees"`
	Responses       []Response                  `json:"responses"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// IsPersonal reports whether the assignment is scoped to an explicit assignee list.
func (a Assignment) IsPersonal() bool {
	return a.DistributionTag == DistributionPersonal
}

// AssignedTo reports whether the given email appears in the assignee list.
// Only meaningful for personal assignments.
func (a Assignment) AssignedTo(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, assignee := range a.Assignees {
		if strings.ToLower(strings.TrimSpace(assignee.Email)) == email {
			return true
		}
	}
	return false
}

// Assignee records one recipient of a personal assignment.
type Assignee struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignmentId"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	AssignedByID uint      `gorm:"not null" json:"assignedById"`
	CreatedAt    time.Time `json:"created_at"`
}

// Response is a student's current status snapshot on one assignment. The
// composite unique index keeps exactly one row per (assignment, student);
// re-submission replaces the row wholesale rather than accumulating history.
type Response struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	AssignmentID  uint                        `gorm:"not null;uniqueIndex:idx_response_assignment_student" json:"assignmentId"`
	StudentID     uint                        `gorm:"not null;uniqueIndex:idx_response_assignment_student" json:"studentId"`
	Status        string                      `gorm:"size:32;not null;default:'not attempted'" json:"responseStatus"`
	SubmissionURL string                      `gorm:"size:512" json:"submissionUrl"`
	Screenshots   datatypes.JSONSlice[string] `json:"screenshots"`
	LearningNotes string                      `gorm:"type:text" json:"learningNotes"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// IsSolved reports whether the snapshot marks the assignment as solved.
func (r Response) IsSolved() bool {
	return r.Status == ResponseStatusSolved
}

// ValidResponseStatus reports whether the supplied status is part of the
// response vocabulary.
func ValidResponseStatus(status string) bool {
	switch status {
	case ResponseStatusNotAttempted, ResponseStatusSolved, ResponseStatusPartiallySolved,
		ResponseStatusNotUnderstanding, ResponseStatusHavingDoubt:
		return true
	default:
		return false
	}
}
