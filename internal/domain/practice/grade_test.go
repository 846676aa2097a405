package practice

import (
	"testing"

	"exam-portal/internal/domain/exams"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []exams.Question {
	return []exams.Question{
		{ID: "q1", Opciones: exams.Options{"a", "b", "c"}, Correcta: 1},
		{ID: "q2", Opciones: exams.Options{"a", "b"}, Correcta: 0},
		{ID: "q3", Opciones: exams.Options{"a", "b", "c", "d"}, Correcta: 3},
	}
}

func TestGrade(t *testing.T) {
	t.Run("scores correct answers and treats blanks as failed", func(t *testing.T) {
		res, err := Grade(sampleQuestions(), []Answer{
			{QuestionID: "q1", Choice: 1},
			{QuestionID: "q2", Choice: 1},
		})
		require.NoError(t, err)

		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 1, res.Correct)
		assert.Equal(t, 33.33, res.Score)

		failed := res.Failed()
		require.Len(t, failed, 2)
		assert.Equal(t, "q2", failed[0].QuestionID)
		require.NotNil(t, failed[0].Choice)
		assert.Equal(t, 1, *failed[0].Choice)
		assert.Equal(t, "q3", failed[1].QuestionID)
		assert.Nil(t, failed[1].Choice)
	})

	t.Run("perfect score", func(t *testing.T) {
		res, err := Grade(sampleQuestions(), []Answer{
			{QuestionID: "q3", Choice: 3},
			{QuestionID: "q1", Choice: 1},
			{QuestionID: "q2", Choice: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.Score)
		assert.Empty(t, res.Failed())
		assert.Equal(t, []string{"q1", "q2", "q3"}, []string{res.Items[0].QuestionID, res.Items[1].QuestionID, res.Items[2].QuestionID})
	})

	t.Run("empty evaluation scores zero", func(t *testing.T) {
		res, err := Grade(nil, nil)
		require.NoError(t, err)
		assert.Zero(t, res.Total)
		assert.Zero(t, res.Score)
	})

	t.Run("rejects unknown question", func(t *testing.T) {
		_, err := Grade(sampleQuestions(), []Answer{{QuestionID: "nope", Choice: 0}})
		assert.ErrorIs(t, err, ErrUnknownQuestion)
	})

	t.Run("rejects choice out of range", func(t *testing.T) {
		_, err := Grade(sampleQuestions(), []Answer{{QuestionID: "q2", Choice: 2}})
		assert.ErrorIs(t, err, ErrChoiceOutOfRange)
	})

	t.Run("rejects duplicate answers", func(t *testing.T) {
		_, err := Grade(sampleQuestions(), []Answer{
			{QuestionID: "q1", Choice: 0},
			{QuestionID: "q1", Choice: 1},
		})
		assert.ErrorIs(t, err, ErrDuplicateAnswer)
	})
}
