package models

import "time"

type Exam struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	ExamType      string `json:"exam_type" gorm:"not null;index;size:50" validate:"required,max=50"`
	ExamCode      string `json:"exam_code" gorm:"size:100"`
	Title         string `json:"title" gorm:"size:255"`
	IsFree        bool   `json:"is_free" gorm:"default:false;index"`
	QuestionCount int    `json:"question_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Questions []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
}

// ExamQuestion binds a question to an exam with an explicit canonical
// order. Unique per (exam, question) pair; OrderNo defines the
// pre-shuffle question order for the exam.
type ExamQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ExamID     uint `json:"exam_id" gorm:"not null;index;uniqueIndex:idx_exam_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_exam_question"`
	OrderNo    int  `json:"order_no" gorm:"not null"`

	// Relations
	Exam     Exam     `json:"-" gorm:"foreignKey:ExamID"`
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}
