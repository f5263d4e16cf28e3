package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/carecbt/exam-service/internal/events"
)

const importCSV = `question_id,stem,opt1,opt2,opt3,opt4,opt5,answer,explanation,tags
Q-100,First imported question,Yes,No,,,,1,Yes is right,cardio;pharm
Q-101,Second imported question,A,B,C,D,,4,,
Q-102,Broken row,OnlyOne,,,,,1,,
Q-103,Bad answer,A,B,C,,,5,,
`

func TestImportService_PreviewCSV(t *testing.T) {
	env := newTestEnv(t)

	preview, err := env.imports.Preview(context.Background(), "questions.csv", strings.NewReader(importCSV))
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if preview.RowsOK != 2 || preview.RowsFail != 2 {
		t.Fatalf("preview counts = %d ok / %d fail, want 2/2", preview.RowsOK, preview.RowsFail)
	}

	byID := map[string]*ImportRowResult{}
	for _, r := range preview.Rows {
		byID[r.Row.QuestionID] = r
	}

	if len(byID["Q-100"].Errors) != 0 {
		t.Errorf("Q-100 should be valid, got %v", byID["Q-100"].Errors)
	}
	if got := byID["Q-100"].Row.Tags; len(got) != 2 || got[0] != "cardio" {
		t.Errorf("Q-100 tags = %v", got)
	}
	if len(byID["Q-102"].Errors) == 0 {
		t.Error("Q-102 has one option and should fail validation")
	}
	if len(byID["Q-103"].Errors) == 0 {
		t.Error("Q-103 answers an unpopulated option and should fail")
	}
}

func TestImportService_CommitCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.imports.Commit(ctx, env.exam.ID, "questions.csv", strings.NewReader(importCSV), "admin")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if result.RowsOK != 2 || result.RowsFail != 2 {
		t.Fatalf("commit counts = %d ok / %d fail, want 2/2", result.RowsOK, result.RowsFail)
	}

	// Valid rows joined the exam behind the three seeded questions
	questions, err := env.repo.ExamQuestion().GetQuestionsForExam(ctx, env.exam.ID)
	if err != nil {
		t.Fatalf("GetQuestionsForExam failed: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("exam has %d questions after import, want 5", len(questions))
	}

	imported, err := env.repo.Question().GetByExternalID(ctx, "Q-101")
	if err != nil {
		t.Fatalf("imported question missing: %v", err)
	}
	if imported.Answer != 4 || imported.Opt4 == nil || *imported.Opt4 != "D" {
		t.Errorf("imported question stored wrong: %+v", imported)
	}

	exam, err := env.repo.Exam().GetByID(ctx, env.exam.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if exam.QuestionCount != 5 {
		t.Errorf("question count = %d, want 5", exam.QuestionCount)
	}

	if len(env.repo.imports) != 1 {
		t.Fatalf("expected 1 import audit row, got %d", len(env.repo.imports))
	}
	audit := env.repo.imports[0]
	if audit.ExamID != env.exam.ID || audit.Filename != "questions.csv" || audit.CreatedBy != "admin" || audit.RowsOK != 2 {
		t.Errorf("audit row = %+v", audit)
	}

	if env.repo.cacheInvalidations != 1 {
		t.Errorf("cache invalidated %d times after commit, want 1", env.repo.cacheInvalidations)
	}

	var imports []*events.Event
	for _, e := range env.publisher.GetPublishedEvents() {
		if e.Type == events.EventQuestionsImported {
			imports = append(imports, e)
		}
	}
	if len(imports) != 1 {
		t.Errorf("expected one %s event, got %d", events.EventQuestionsImported, len(imports))
	}
}

func TestImportService_CommitIsUpsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.imports.Commit(ctx, env.exam.ID, "questions.csv", strings.NewReader(importCSV), "admin"); err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}
	if _, err := env.imports.Commit(ctx, env.exam.ID, "questions.csv", strings.NewReader(importCSV), "admin"); err != nil {
		t.Fatalf("second Commit failed: %v", err)
	}

	questions, err := env.repo.ExamQuestion().GetQuestionsForExam(ctx, env.exam.ID)
	if err != nil {
		t.Fatalf("GetQuestionsForExam failed: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("re-import duplicated questions: %d, want 5", len(questions))
	}

	q, err := env.repo.Question().GetByExternalID(ctx, "Q-100")
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if q.Version != 2 {
		t.Errorf("re-imported question version = %d, want 2", q.Version)
	}
}

func TestImportService_XLSX(t *testing.T) {
	env := newTestEnv(t)

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	rows := [][]interface{}{
		{"question_id", "stem", "opt1", "opt2", "opt3", "opt4", "opt5", "answer", "explanation", "tags"},
		{"Q-200", "Spreadsheet question", "Left", "Right", "", "", "", 2, "Right it is", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("workbook write failed: %v", err)
	}

	preview, err := env.imports.Preview(context.Background(), "upload.xlsx", &buf)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if preview.RowsOK != 1 || preview.RowsFail != 0 {
		t.Fatalf("xlsx preview = %d ok / %d fail, want 1/0", preview.RowsOK, preview.RowsFail)
	}
	if preview.Rows[0].Row.Answer != 2 {
		t.Errorf("xlsx answer = %d, want 2", preview.Rows[0].Row.Answer)
	}
}

func TestImportService_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.imports.Preview(context.Background(), "questions.pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedImportFormat) {
		t.Fatalf("expected ErrUnsupportedImportFormat, got %v", err)
	}
}

func TestImportService_CommitUnknownExam(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.imports.Commit(context.Background(), 999, "questions.csv", strings.NewReader(importCSV), "admin")
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}
