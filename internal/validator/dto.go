package validator

import "gorm.io/datatypes"

// AttemptCreateRequest represents the request structure for starting an attempt
type AttemptCreateRequest struct {
	ExamID     uint           `json:"exam_id" validate:"required"`
	ClientMeta datatypes.JSON `json:"client_meta" validate:"omitempty"`
}

// AnswerSaveRequest represents the request structure for recording an answer.
// ChosenOption is numbered in the shuffled order the client was shown.
type AnswerSaveRequest struct {
	AttemptID    uint `json:"attempt_id" validate:"required"`
	QuestionID   uint `json:"question_id" validate:"required"`
	ChosenOption int  `json:"chosen_option" validate:"required,answer_option"`
}

// AnswerCorrectRequest represents the request structure for a post-submission
// correction. ChosenOption is in canonical numbering.
type AnswerCorrectRequest struct {
	ChosenOption int `json:"chosen_option" validate:"required,answer_option"`
}

// ExamCreateRequest represents the request structure for creating exams
type ExamCreateRequest struct {
	ExamType string `json:"exam_type" validate:"required,exam_type"`
	ExamCode string `json:"exam_code" validate:"required,min=1,max=50"`
	Title    string `json:"title" validate:"required,min=1,max=200"`
	IsFree   bool   `json:"is_free"`
}

// ImportRow represents one parsed question row from an uploaded file
type ImportRow struct {
	QuestionID  string   `json:"question_id" validate:"required,max=100"`
	Stem        string   `json:"stem" validate:"required,min=1,max=4000"`
	Options     []string `json:"options" validate:"required,min=2,max=5,dive,required,max=1000"`
	Answer      int      `json:"answer" validate:"required,answer_option"`
	Explanation *string  `json:"explanation" validate:"omitempty,max=4000"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}
