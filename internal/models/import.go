package models

import "time"

// Import is the audit row recorded for every committed question upload.
type Import struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ExamID    uint      `json:"exam_id" gorm:"not null;index"`
	Filename  string    `json:"filename" gorm:"not null;size:255"`
	RowsOK    int       `json:"rows_ok" gorm:"default:0"`
	RowsFail  int       `json:"rows_fail" gorm:"default:0"`
	CreatedBy string    `json:"created_by" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
}
