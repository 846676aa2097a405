package market

import (
	"log/slog"
	"net/http"
	"strings"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/exams"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	deps *shared.Deps
}

func NewHandler(d *shared.Deps) *Handler {
	return &Handler{deps: d}
}

type EvaluationCard struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Area          string  `json:"area"`
	PriceEUR      float64 `json:"price_eur"`
	Mode          string  `json:"mode"`
	Access        string  `json:"access"`
	Reason        string  `json:"reason"`
	QuestionCount int64   `json:"question_count"`
}

type Response struct {
	Pro         bool             `json:"pro"`
	Evaluations []EvaluationCard `json:"evaluations"`
}

// List serves GET /market. Callers without a usuario-estudiante still get the
// catalogue, with everything that is not free locked.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	linkID, err := h.deps.OptionalLinkID(c)
	if err != nil {
		h.deps.InternalError(c, "resolve student failed", err)
		return
	}
	viewer, err := h.deps.Viewer(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "load market viewer failed", err, slog.String("link_id", linkID))
		return
	}

	q := h.deps.DB.WithContext(ctx).Where("published = ?", true)
	if area := strings.TrimSpace(c.Query("area")); area != "" {
		q = q.Where("area = ?", area)
	}
	var evs []exams.Evaluation
	if err := q.Order("area ASC").Order("titulo ASC").Find(&evs).Error; err != nil {
		h.deps.InternalError(c, "load evaluations failed", err)
		return
	}

	counts, err := h.questionCounts(c, evs)
	if err != nil {
		h.deps.InternalError(c, "count questions failed", err)
		return
	}

	cards := make([]EvaluationCard, 0, len(evs))
	for _, ev := range evs {
		d := viewer.ForEvaluation(ev)
		cards = append(cards, EvaluationCard{
			ID:            ev.ID,
			Title:         ev.Titulo,
			Description:   ev.Descripcion,
			Area:          ev.Area,
			PriceEUR:      ev.PriceEUR,
			Mode:          ev.Access,
			Access:        string(d.State),
			Reason:        string(d.Reason),
			QuestionCount: counts[ev.ID],
		})
	}

	c.JSON(http.StatusOK, Response{Pro: viewer.Pro, Evaluations: cards})
}

func (h *Handler) questionCounts(c *gin.Context, evs []exams.Evaluation) (map[string]int64, error) {
	out := make(map[string]int64, len(evs))
	if len(evs) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(evs))
	for _, ev := range evs {
		ids = append(ids, ev.ID)
	}

	var rows []struct {
		EvaluacionID string
		N            int64
	}
	err := h.deps.DB.WithContext(c.Request.Context()).Model(&exams.Question{}).
		Select("evaluacion_id, COUNT(*) AS n").
		Where("evaluacion_id IN ?", ids).
		Group("evaluacion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.EvaluacionID] = r.N
	}
	return out, nil
}
