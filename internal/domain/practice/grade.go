package practice

import (
	"errors"
	"fmt"
	"math"

	"exam-portal/internal/domain/exams"
)

var (
	ErrUnknownQuestion  = errors.New("answer references a question outside the evaluation")
	ErrChoiceOutOfRange = errors.New("choice out of range")
	ErrDuplicateAnswer  = errors.New("question answered twice")
)

type Answer struct {
	QuestionID string
	Choice     int
}

type ItemResult struct {
	QuestionID string
	Choice     *int
	Correct    int
	OK         bool
}

type Result struct {
	Total   int
	Correct int
	Score   float64 // 0..100, two decimals
	Items   []ItemResult
}

// Failed returns the items that were answered wrong or not answered.
func (r Result) Failed() []ItemResult {
	out := make([]ItemResult, 0, r.Total-r.Correct)
	for _, it := range r.Items {
		if !it.OK {
			out = append(out, it)
		}
	}
	return out
}

// Grade scores answers against the evaluation's questions. Items follow the
// order of questions; unanswered questions count as failed.
func Grade(questions []exams.Question, answers []Answer) (Result, error) {
	byID := make(map[string]exams.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	chosen := make(map[string]int, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, a.QuestionID)
		}
		if a.Choice < 0 || a.Choice >= len(q.Opciones) {
			return Result{}, fmt.Errorf("%w: question %s choice %d", ErrChoiceOutOfRange, a.QuestionID, a.Choice)
		}
		if _, dup := chosen[a.QuestionID]; dup {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateAnswer, a.QuestionID)
		}
		chosen[a.QuestionID] = a.Choice
	}

	res := Result{Total: len(questions), Items: make([]ItemResult, 0, len(questions))}
	for _, q := range questions {
		item := ItemResult{QuestionID: q.ID, Correct: q.Correcta}
		if c, ok := chosen[q.ID]; ok {
			choice := c
			item.Choice = &choice
			item.OK = c == q.Correcta
		}
		if item.OK {
			res.Correct++
		}
		res.Items = append(res.Items, item)
	}

	if res.Total > 0 {
		res.Score = math.Round(float64(res.Correct)/float64(res.Total)*10000) / 100
	}
	return res, nil
}
