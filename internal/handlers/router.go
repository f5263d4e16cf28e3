package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carecbt/exam-service/internal/services"
	"github.com/carecbt/exam-service/internal/utils"
)

type HandlerManager struct {
	examHandler    *ExamHandler
	attemptHandler *AttemptHandler
	answerHandler  *AnswerHandler
	adminHandler   *AdminHandler

	serviceManager services.ServiceManager
	adminToken     string
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, adminToken string) *HandlerManager {
	return &HandlerManager{
		examHandler:    NewExamHandler(serviceManager.Exam(), logger),
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), logger),
		answerHandler:  NewAnswerHandler(serviceManager.Answer(), logger),
		adminHandler:   NewAdminHandler(serviceManager.Import(), logger),
		serviceManager: serviceManager,
		adminToken:     adminToken,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		exams := api.Group("/exams")
		{
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/free", hm.examHandler.GetFreeExam)
			exams.GET("/:id", hm.examHandler.GetExam)
		}

		attempts := api.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/:id/questions", hm.attemptHandler.GetAttemptQuestions)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/result", hm.attemptHandler.GetAttemptResult)
			attempts.GET("/:id/wrong", hm.answerHandler.GetWrongAnswers)
		}

		answers := api.Group("/answers")
		{
			answers.POST("", hm.answerHandler.SaveAnswer)
			answers.POST("/:id/correct", hm.answerHandler.CorrectAnswer)
			answers.GET("/attempt/:attemptId/explanations", hm.answerHandler.GetExplanations)
		}

		// Admin routes guarded by the static bearer token
		admin := api.Group("/admin")
		admin.Use(AdminAuthMiddleware(hm.adminToken))
		{
			admin.POST("/exams", hm.examHandler.CreateExam)
			admin.POST("/import/preview", hm.adminHandler.PreviewImport)
			admin.POST("/import/commit", hm.adminHandler.CommitImport)
		}
	}

	router.GET("/healthz", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "exam-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})
}
