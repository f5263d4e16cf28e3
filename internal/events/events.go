// Package events publishes domain events for attempt lifecycle and
// question imports over watermill.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventAttemptStarted    = "attempt.started"
	EventAttemptSubmitted  = "attempt.submitted"
	EventAnswerCorrected   = "answer.corrected"
	EventQuestionsImported = "questions.imported"
)

// Event is the envelope shared by every published event
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope around a payload
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "exam-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AttemptStartedEvent is emitted when a new attempt is created
type AttemptStartedEvent struct {
	AttemptID   uint  `json:"attempt_id"`
	ExamID      uint  `json:"exam_id"`
	ShuffleSeed int64 `json:"shuffle_seed"`
}

// AttemptSubmittedEvent is emitted when an attempt is graded
type AttemptSubmittedEvent struct {
	AttemptID uint `json:"attempt_id"`
	ExamID    uint `json:"exam_id"`
	Score     int  `json:"score"`
	Total     int  `json:"total"`
	Correct   int  `json:"correct"`
}

// AnswerCorrectedEvent is emitted when an answer is amended after submission
type AnswerCorrectedEvent struct {
	AnswerID     uint `json:"answer_id"`
	AttemptID    uint `json:"attempt_id"`
	QuestionID   uint `json:"question_id"`
	ChosenOption int  `json:"chosen_option"`
	IsCorrect    bool `json:"is_correct"`
}

// QuestionsImportedEvent is emitted when an import batch is committed
type QuestionsImportedEvent struct {
	ImportID uint   `json:"import_id"`
	ExamID   uint   `json:"exam_id"`
	Filename string `json:"filename"`
	RowsOK   int    `json:"rows_ok"`
	RowsFail int    `json:"rows_fail"`
}
