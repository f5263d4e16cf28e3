package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/carecbt/exam-service/internal/shuffle"
)

// Question is a multiple-choice item with 2 to 5 options. Opt1 and Opt2
// are always present; Opt3..Opt5 may be null. Answer is the canonical
// 1-based index of the correct option and must reference a populated
// slot. Questions are shared across exams through ExamQuestion.
type Question struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID string `json:"question_id" gorm:"not null;uniqueIndex;size:100" validate:"required,max=100"`
	Version    int    `json:"version" gorm:"default:1"`
	Stem       string `json:"stem" gorm:"type:text;not null" validate:"required"`

	Opt1 string  `json:"opt1" gorm:"type:text;not null" validate:"required"`
	Opt2 string  `json:"opt2" gorm:"type:text;not null" validate:"required"`
	Opt3 *string `json:"opt3" gorm:"type:text"`
	Opt4 *string `json:"opt4" gorm:"type:text"`
	Opt5 *string `json:"opt5" gorm:"type:text"`

	Answer      int            `json:"answer" gorm:"not null;check:answer >= 1 AND answer <= 5" validate:"required,min=1,max=5"`
	Explanation *string        `json:"explanation" gorm:"type:text"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:jsonb"` // []string
	MediaURL    *string        `json:"media_url" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Options returns the populated options as a bounded ordered list, each
// tagged with its canonical 1-based number. Absent trailing options are
// never included.
func (q *Question) Options() []shuffle.Option {
	opts := []shuffle.Option{
		{Num: 1, Text: q.Opt1},
		{Num: 2, Text: q.Opt2},
	}
	for i, opt := range []*string{q.Opt3, q.Opt4, q.Opt5} {
		if opt != nil && *opt != "" {
			opts = append(opts, shuffle.Option{Num: i + 3, Text: *opt})
		}
	}
	return opts
}

// OptionCount reports the number of populated option slots.
func (q *Question) OptionCount() int {
	return len(q.Options())
}
