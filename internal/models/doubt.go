package models

import (
	"time"

	"gorm.io/datatypes"
)

// Doubt thread statuses. The status reflects the most recent transition only;
// it is never recomputed from the conversation content.
const (
	DoubtStatusNew         = "new"
	DoubtStatusReplied     = "replied"
	DoubtStatusUnsatisfied = "unsatisfied"
	// DoubtStatusReview is part of the domain vocabulary but no engine
	// transition currently produces it.
	DoubtStatusReview   = "review"
	DoubtStatusResolved = "resolved"
)

// Turn types within a doubt conversation.
const (
	TurnTypeDoubt    = "doubt"
	TurnTypeReply    = "reply"
	TurnTypeFollowUp = "follow-up"
	TurnTypeResolve  = "resolve"
)

// Doubt is a per-(assignment, student) conversation thread tracking unresolved
// difficulty. The composite index backs the "reuse the open thread" lookup; at
// most one row per pair has Resolved=false.
type Doubt struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	AssignmentID  uint              `gorm:"not null;index:idx_doubt_open" json:"assignmentId"`
	StudentID     uint              `gorm:"not null;index:idx_doubt_open" json:"studentId"`
	CurrentStatus string            `gorm:"size:32;not null;default:new" json:"currentStatus"`
	Resolved      bool              `gorm:"not null;default:false;index:idx_doubt_open" json:"resolved"`
	ResolvedAt    *time.Time        `json:"resolvedAt"`
	ResolvedByID  *uint             `json:"resolvedById"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Conversation  []Turn            `json:"conversation"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Assignment    Assignment        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student       User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// Open reports whether the thread still accepts conversation turns.
func (d Doubt) Open() bool {
	return !d.Resolved
}

// LatestStudentMessage returns the most recent doubt or follow-up text.
// Used to give mentors' reply notifications their context.
func (d Doubt) LatestStudentMessage() string {
	for i := len(d.Conversation) - 1; i >= 0; i-- {
		turn := d.Conversation[i]
		if turn.Type == TurnTypeDoubt || turn.Type == TurnTypeFollowUp {
			return turn.Message
		}
	}
	return ""
}

// Turn is one immutable message in a doubt conversation. Turns are append-only
// and ordered by creation time.
type Turn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DoubtID   uint      `gorm:"not null;index" json:"doubtId"`
	SenderID  uint      `gorm:"not null" json:"senderId"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}
