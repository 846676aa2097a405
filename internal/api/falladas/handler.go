package falladas

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/practice"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	deps *shared.Deps
}

func NewHandler(d *shared.Deps) *Handler {
	return &Handler{deps: d}
}

type FailedQuestionDTO struct {
	QuestionID   string    `json:"question_id"`
	EvaluationID string    `json:"evaluation_id"`
	Statement    string    `json:"statement"`
	Options      []string  `json:"options"`
	Correct      int       `json:"correct"`
	Explanation  string    `json:"explanation"`
	LastChoice   *int      `json:"last_choice"`
	Failures     int       `json:"failures"`
	LastFailedAt time.Time `json:"last_failed_at"`
}

// List serves GET /falladas: the caller's unreviewed failures grouped by
// question, most recently failed first.
func (h *Handler) List(c *gin.Context) {
	studentID, ok := h.deps.StudentID(c)
	if !ok {
		return
	}

	q := h.deps.DB.WithContext(c.Request.Context()).
		Preload("Question").
		Where("pregunta_fallada.estudiante_id = ? AND pregunta_fallada.reviewed_at IS NULL", studentID)
	if ev := strings.TrimSpace(c.Query("evaluation_id")); ev != "" {
		q = q.Joins("JOIN pregunta ON pregunta.id = pregunta_fallada.pregunta_id").
			Where("pregunta.evaluacion_id = ?", ev)
	}

	var rows []practice.Failed
	if err := q.Find(&rows).Error; err != nil {
		h.deps.InternalError(c, "load failed questions failed", err, slog.String("student_id", studentID))
		return
	}

	c.JSON(http.StatusOK, groupByQuestion(rows))
}

func groupByQuestion(rows []practice.Failed) []FailedQuestionDTO {
	byID := make(map[string]*FailedQuestionDTO)
	for _, f := range rows {
		g, ok := byID[f.PreguntaID]
		if !ok {
			g = &FailedQuestionDTO{QuestionID: f.PreguntaID}
			if f.Question != nil {
				g.EvaluationID = f.Question.EvaluacionID
				g.Statement = f.Question.Enunciado
				g.Options = f.Question.Opciones
				g.Correct = f.Question.Correcta
				g.Explanation = f.Question.Explicacion
			}
			byID[f.PreguntaID] = g
		}
		g.Failures++
		if !f.CreatedAt.Before(g.LastFailedAt) {
			g.LastFailedAt = f.CreatedAt
			g.LastChoice = f.Elegida
		}
	}

	out := make([]FailedQuestionDTO, 0, len(byID))
	for _, g := range byID {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastFailedAt.Equal(out[j].LastFailedAt) {
			return out[i].LastFailedAt.After(out[j].LastFailedAt)
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out
}

// Review serves POST /falladas/:questionId/review and marks every pending
// failure of that question as reviewed.
func (h *Handler) Review(c *gin.Context) {
	studentID, ok := h.deps.StudentID(c)
	if !ok {
		return
	}
	questionID := c.Param("questionId")

	res := h.deps.DB.WithContext(c.Request.Context()).
		Model(&practice.Failed{}).
		Where("estudiante_id = ? AND pregunta_id = ? AND reviewed_at IS NULL", studentID, questionID).
		Update("reviewed_at", h.deps.Clock())
	if res.Error != nil {
		h.deps.InternalError(c, "mark reviewed failed", res.Error,
			slog.String("student_id", studentID), slog.String("question_id", questionID))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No pending failures for this question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"question_id": questionID, "reviewed": res.RowsAffected})
}
