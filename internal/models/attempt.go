package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attempt is one user's pass through an exam. ShuffleSeed is generated
// once at creation (1..999999) and drives the deterministic question
// and option shuffling for the whole attempt. Score and Total stay null
// until submission.
type Attempt struct {
	ID          uint  `json:"id" gorm:"primaryKey"`
	ExamID      uint  `json:"exam_id" gorm:"not null;index"`
	ShuffleSeed int64 `json:"shuffle_seed" gorm:"not null"`

	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at" gorm:"index"`
	Score       *int       `json:"score"`
	Total       *int       `json:"total"`

	ClientMeta datatypes.JSON `json:"client_meta,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Exam    Exam     `json:"-" gorm:"foreignKey:ExamID"`
	Answers []Answer `json:"-" gorm:"foreignKey:AttemptID"`
}

// Submitted reports whether the attempt has been finalized at least
// once. Review-mode corrections do not clear this.
func (a *Attempt) Submitted() bool {
	return a.SubmittedAt != nil
}

// Answer records one choice for one question within an attempt. At most
// one row exists per (attempt, question) pair; writes are upserts.
// ChosenOption is stored in canonical option numbering, translated from
// the shuffle-relative value the client submitted.
type Answer struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	AttemptID    uint `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	QuestionID   uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	ChosenOption int  `json:"chosen_option" gorm:"not null;check:chosen_option >= 1 AND chosen_option <= 5"`
	IsCorrect    bool `json:"is_correct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Attempt  Attempt  `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}
