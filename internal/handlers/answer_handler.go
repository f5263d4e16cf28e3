package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carecbt/exam-service/internal/services"
	"github.com/carecbt/exam-service/internal/utils"
)

type AnswerHandler struct {
	BaseHandler
	answerService services.AnswerService
}

func NewAnswerHandler(answerService services.AnswerService, logger utils.Logger) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler:   NewBaseHandler(logger),
		answerService: answerService,
	}
}

// SaveAnswer records a choice for one question of an attempt
// @Summary Save answer
// @Description Records a shuffle-relative choice, overwriting any previous choice for the question
// @Tags answers
// @Accept json
// @Produce json
// @Param answer body services.SaveAnswerRequest true "Answer data"
// @Success 200 {object} services.AnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /answers [post]
func (h *AnswerHandler) SaveAnswer(c *gin.Context) {
	var req services.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: err.Error(),
		})
		return
	}

	answer, err := h.answerService.Save(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// CorrectAnswer amends an answer after submission
// @Summary Correct answer
// @Description Amends a submitted attempt's answer in canonical numbering; the stored score is not recomputed
// @Tags answers
// @Accept json
// @Produce json
// @Param id path uint true "Answer ID"
// @Param correction body services.CorrectAnswerRequest true "Correction data"
// @Success 200 {object} services.AnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /answers/{id}/correct [post]
func (h *AnswerHandler) CorrectAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CorrectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Correcting answer", "answer_id", id)

	answer, err := h.answerService.Correct(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// GetWrongAnswers returns a submitted attempt's incorrect answers
// @Summary Get wrong answers
// @Tags answers
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {array} services.ReviewAnswer
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/wrong [get]
func (h *AnswerHandler) GetWrongAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	answers, err := h.answerService.GetWrongAnswers(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// GetExplanations returns every recorded answer with explanations
// @Summary Get answer explanations
// @Tags answers
// @Produce json
// @Param attemptId path uint true "Attempt ID"
// @Success 200 {array} services.ReviewAnswer
// @Failure 404 {object} ErrorResponse
// @Router /answers/attempt/{attemptId}/explanations [get]
func (h *AnswerHandler) GetExplanations(c *gin.Context) {
	id := h.parseIDParam(c, "attemptId")
	if id == 0 {
		return
	}

	answers, err := h.answerService.GetExplanations(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}
