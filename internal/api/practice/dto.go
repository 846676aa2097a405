package practice

import (
	"time"

	"exam-portal/internal/domain/exams"
)

type QuestionDTO struct {
	ID        string   `json:"id"`
	Statement string   `json:"statement"`
	Options   []string `json:"options"`
}

type EvaluationDTO struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Area        string        `json:"area"`
	Reason      string        `json:"reason"`
	Questions   []QuestionDTO `json:"questions"`
}

type attemptRequest struct {
	Answers []answerInput `json:"answers" binding:"required,dive"`
}

type answerInput struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Choice     *int   `json:"choice" binding:"required,min=0"`
}

type CorrectionDTO struct {
	QuestionID  string `json:"question_id"`
	Choice      *int   `json:"choice"`
	Correct     int    `json:"correct"`
	OK          bool   `json:"ok"`
	Explanation string `json:"explanation"`
}

type AttemptResultDTO struct {
	AttemptID string          `json:"attempt_id"`
	Total     int             `json:"total"`
	Correct   int             `json:"correct"`
	Score     float64         `json:"score"`
	Items     []CorrectionDTO `json:"items"`
}

type AttemptDTO struct {
	ID              string    `json:"id"`
	EvaluationID    string    `json:"evaluation_id"`
	EvaluationTitle string    `json:"evaluation_title"`
	Total           int       `json:"total"`
	Correct         int       `json:"correct"`
	Score           float64   `json:"score"`
	CreatedAt       time.Time `json:"created_at"`
}

func buildEvaluationDTO(ev exams.Evaluation, reason string) EvaluationDTO {
	out := EvaluationDTO{
		ID:          ev.ID,
		Title:       ev.Titulo,
		Description: ev.Descripcion,
		Area:        ev.Area,
		Reason:      reason,
		Questions:   make([]QuestionDTO, 0, len(ev.Questions)),
	}
	for _, q := range ev.Questions {
		out.Questions = append(out.Questions, QuestionDTO{ID: q.ID, Statement: q.Enunciado, Options: q.Opciones})
	}
	return out
}
