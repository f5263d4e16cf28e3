package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/events"
	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
	"github.com/carecbt/exam-service/internal/validator"
)

// Upload column layout, shared by CSV and XLSX:
// question_id, stem, opt1, opt2, opt3, opt4, opt5, answer, explanation, tags
const importColumns = 10

type importService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
}

func NewImportService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.BusinessValidator,
	publisher events.EventPublisher,
) ImportService {
	return &importService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *importService) Preview(ctx context.Context, filename string, file io.Reader) (*ImportPreviewResponse, error) {
	results, err := s.parse(filename, file)
	if err != nil {
		return nil, err
	}

	preview := &ImportPreviewResponse{Rows: results}
	for _, r := range results {
		if len(r.Errors) == 0 {
			preview.RowsOK++
		} else {
			preview.RowsFail++
		}
	}
	return preview, nil
}

// Commit parses the upload and applies every valid row in a single
// transaction: questions are upserted by their external id, bound to
// the exam after its current question list, and the exam's question
// count is refreshed. Invalid rows are skipped and counted; they never
// abort the batch.
func (s *importService) Commit(ctx context.Context, examID uint, filename string, file io.Reader, createdBy string) (*ImportCommitResponse, error) {
	if _, err := s.repo.Exam().GetByID(ctx, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	results, err := s.parse(filename, file)
	if err != nil {
		return nil, err
	}

	imp := &models.Import{
		ExamID:    examID,
		Filename:  filename,
		CreatedBy: createdBy,
	}
	for _, r := range results {
		if len(r.Errors) == 0 {
			imp.RowsOK++
		} else {
			imp.RowsFail++
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		orderBase, err := txRepo.ExamQuestion().CountForExam(ctx, examID)
		if err != nil {
			return fmt.Errorf("failed to count exam questions: %w", err)
		}

		bound := int(orderBase)
		for _, r := range results {
			if len(r.Errors) > 0 {
				continue
			}

			question, err := rowToQuestion(r.Row)
			if err != nil {
				return fmt.Errorf("row %d: %w", r.Line, err)
			}
			if err := txRepo.Question().Upsert(ctx, question); err != nil {
				return fmt.Errorf("row %d: failed to upsert question: %w", r.Line, err)
			}

			member, err := txRepo.ExamQuestion().IsMember(ctx, examID, question.ID)
			if err != nil {
				return fmt.Errorf("row %d: failed to check membership: %w", r.Line, err)
			}
			if !member {
				bound++
				if err := txRepo.ExamQuestion().Bind(ctx, examID, question.ID, bound); err != nil {
					return fmt.Errorf("row %d: failed to bind question: %w", r.Line, err)
				}
			}
		}

		count, err := txRepo.ExamQuestion().CountForExam(ctx, examID)
		if err != nil {
			return fmt.Errorf("failed to recount exam questions: %w", err)
		}
		if err := txRepo.Exam().UpdateQuestionCount(ctx, examID, int(count)); err != nil {
			return fmt.Errorf("failed to update question count: %w", err)
		}

		return txRepo.Import().Create(ctx, imp)
	})
	if err != nil {
		return nil, err
	}

	// The transactional repository carries no cache, so stale exam and
	// question rows are flushed here once the commit is durable.
	if err := s.repo.InvalidateQuestionCache(ctx); err != nil {
		s.logger.Warn("Failed to invalidate question cache after import", "error", err)
	}

	s.logger.Info("Import committed",
		"import_id", imp.ID,
		"exam_id", examID,
		"filename", filename,
		"rows_ok", imp.RowsOK,
		"rows_fail", imp.RowsFail)

	if s.publisher != nil {
		event := events.NewEvent(events.EventQuestionsImported, events.QuestionsImportedEvent{
			ImportID: imp.ID,
			ExamID:   examID,
			Filename: filename,
			RowsOK:   imp.RowsOK,
			RowsFail: imp.RowsFail,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
		}
	}

	return &ImportCommitResponse{
		ImportID: imp.ID,
		RowsOK:   imp.RowsOK,
		RowsFail: imp.RowsFail,
	}, nil
}

// ===== PARSING =====

func (s *importService) parse(filename string, file io.Reader) ([]*ImportRowResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return s.parseCSV(file)
	case ".xlsx":
		return s.parseXLSX(file)
	default:
		return nil, ErrUnsupportedImportFormat
	}
}

func (s *importService) parseCSV(file io.Reader) ([]*ImportRowResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var results []*ImportRowResult
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line++
		if line == 1 && isHeaderRow(record) {
			continue
		}
		results = append(results, s.buildRow(line, record))
	}
	return results, nil
}

func (s *importService) parseXLSX(file io.Reader) ([]*ImportRowResult, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var results []*ImportRowResult
	for i, record := range rows {
		line := i + 1
		if line == 1 && isHeaderRow(record) {
			continue
		}
		if isEmptyRow(record) {
			continue
		}
		results = append(results, s.buildRow(line, record))
	}
	return results, nil
}

func (s *importService) buildRow(line int, record []string) *ImportRowResult {
	result := &ImportRowResult{Line: line}

	cells := make([]string, importColumns)
	for i := 0; i < importColumns && i < len(record); i++ {
		cells[i] = strings.TrimSpace(record[i])
	}

	row := &ImportRow{
		QuestionID: cells[0],
		Stem:       cells[1],
	}
	for _, opt := range cells[2:7] {
		if opt == "" {
			break
		}
		row.Options = append(row.Options, opt)
	}

	answer, err := strconv.Atoi(cells[7])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("answer %q is not a number", cells[7]))
	}
	row.Answer = answer

	if cells[8] != "" {
		row.Explanation = &cells[8]
	}
	if cells[9] != "" {
		for _, tag := range strings.Split(cells[9], ";") {
			if t := strings.TrimSpace(tag); t != "" {
				row.Tags = append(row.Tags, t)
			}
		}
	}

	for _, verr := range s.validator.ValidateImportRow(row) {
		result.Errors = append(result.Errors, verr.Error())
	}
	result.Row = row

	return result
}

func rowToQuestion(row *ImportRow) (*models.Question, error) {
	q := &models.Question{
		QuestionID:  row.QuestionID,
		Stem:        row.Stem,
		Answer:      row.Answer,
		Explanation: row.Explanation,
	}

	opts := row.Options
	q.Opt1 = opts[0]
	q.Opt2 = opts[1]
	if len(opts) > 2 {
		q.Opt3 = &opts[2]
	}
	if len(opts) > 3 {
		q.Opt4 = &opts[3]
	}
	if len(opts) > 4 {
		q.Opt5 = &opts[4]
	}

	if len(row.Tags) > 0 {
		tags, err := json.Marshal(row.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		q.Tags = tags
	}

	return q, nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "question_id")
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
