package practice

import (
	"errors"
	"log/slog"
	"net/http"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/exams"
	"exam-portal/internal/domain/practice"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const recentAttempts = 50

type Handler struct {
	deps *shared.Deps
}

func NewHandler(d *shared.Deps) *Handler {
	return &Handler{deps: d}
}

// loadOpen loads a published evaluation with its questions and checks the
// caller may open it. It answers 404/403/500 itself.
func (h *Handler) loadOpen(c *gin.Context, linkID string) (*exams.Evaluation, string, bool) {
	ctx := c.Request.Context()

	var ev exams.Evaluation
	err := h.deps.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_index ASC") }).
		Where("id = ? AND published = ?", c.Param("id"), true).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation not found"})
		return nil, "", false
	}
	if err != nil {
		h.deps.InternalError(c, "load evaluation failed", err, slog.String("evaluation_id", c.Param("id")))
		return nil, "", false
	}

	viewer, err := h.deps.Viewer(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "load viewer failed", err, slog.String("link_id", linkID))
		return nil, "", false
	}
	d := viewer.ForEvaluation(ev)
	if !d.Allowed() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Evaluation is locked", "reason": d.Reason})
		return nil, "", false
	}
	return &ev, string(d.Reason), true
}

// GetEvaluation serves GET /evaluations/:id without the correct answers.
func (h *Handler) GetEvaluation(c *gin.Context) {
	linkID, err := h.deps.OptionalLinkID(c)
	if err != nil {
		h.deps.InternalError(c, "resolve student failed", err)
		return
	}
	ev, reason, ok := h.loadOpen(c, linkID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildEvaluationDTO(*ev, reason))
}

// SubmitAttempt serves POST /evaluations/:id/attempts. The attempt and one
// failed row per wrong or blank answer are written in one transaction.
func (h *Handler) SubmitAttempt(c *gin.Context) {
	var body attemptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	linkID, ok := h.deps.LinkID(c)
	if !ok {
		return
	}
	studentID, ok := h.deps.StudentID(c)
	if !ok {
		return
	}
	ev, _, ok := h.loadOpen(c, linkID)
	if !ok {
		return
	}

	answers := make([]practice.Answer, 0, len(body.Answers))
	for _, a := range body.Answers {
		answers = append(answers, practice.Answer{QuestionID: a.QuestionID, Choice: *a.Choice})
	}
	res, err := practice.Grade(ev.Questions, answers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt := practice.Attempt{
		EstudianteID: studentID,
		EvaluacionID: ev.ID,
		Total:        res.Total,
		Correct:      res.Correct,
		Score:        res.Score,
		CreatedAt:    h.deps.Clock(),
	}
	err = h.deps.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		failed := res.Failed()
		if len(failed) == 0 {
			return nil
		}
		rows := make([]practice.Failed, 0, len(failed))
		for _, it := range failed {
			rows = append(rows, practice.Failed{
				EstudianteID: studentID,
				PreguntaID:   it.QuestionID,
				IntentoID:    attempt.ID,
				Elegida:      it.Choice,
				CreatedAt:    attempt.CreatedAt,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		h.deps.InternalError(c, "save attempt failed", err,
			slog.String("student_id", studentID), slog.String("evaluation_id", ev.ID))
		return
	}

	explanations := make(map[string]string, len(ev.Questions))
	for _, q := range ev.Questions {
		explanations[q.ID] = q.Explicacion
	}
	out := AttemptResultDTO{
		AttemptID: attempt.ID,
		Total:     res.Total,
		Correct:   res.Correct,
		Score:     res.Score,
		Items:     make([]CorrectionDTO, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, CorrectionDTO{
			QuestionID:  it.QuestionID,
			Choice:      it.Choice,
			Correct:     it.Correct,
			OK:          it.OK,
			Explanation: explanations[it.QuestionID],
		})
	}
	c.JSON(http.StatusCreated, out)
}

// ListAttempts serves GET /attempts, newest first.
func (h *Handler) ListAttempts(c *gin.Context) {
	studentID, ok := h.deps.StudentID(c)
	if !ok {
		return
	}

	var attempts []practice.Attempt
	err := h.deps.DB.WithContext(c.Request.Context()).
		Preload("Evaluation").
		Where("estudiante_id = ?", studentID).
		Order("created_at DESC").
		Limit(recentAttempts).
		Find(&attempts).Error
	if err != nil {
		h.deps.InternalError(c, "load attempts failed", err, slog.String("student_id", studentID))
		return
	}

	out := make([]AttemptDTO, 0, len(attempts))
	for _, a := range attempts {
		dto := AttemptDTO{
			ID:           a.ID,
			EvaluationID: a.EvaluacionID,
			Total:        a.Total,
			Correct:      a.Correct,
			Score:        a.Score,
			CreatedAt:    a.CreatedAt,
		}
		if a.Evaluation != nil {
			dto.EvaluationTitle = a.Evaluation.Titulo
		}
		out = append(out, dto)
	}
	c.JSON(http.StatusOK, out)
}
