package market

import (
	"net/http"
	"testing"

	"exam-portal/internal/api/apitest"
	"exam-portal/internal/domain/exams"
	"exam-portal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	deps := apitest.NewDeps(t)
	db := deps.DB

	apitest.Student(t, db, "link-pro", "est-pro", "pro@example.com")
	apitest.Pro(t, db, "link-pro")
	apitest.Student(t, db, "link-buyer", "est-buyer", "buyer@example.com")

	free := apitest.Evaluation(t, db, "Anatomía básica", "medicina", exams.AccessFree, 2)
	paid := apitest.Evaluation(t, db, "Farmacología", "medicina", exams.AccessPaid, 3)
	apitest.Evaluation(t, db, "Derecho civil", "derecho", exams.AccessPro, 1)
	require.NoError(t, db.Create(&exams.Evaluation{Titulo: "Borrador", Area: "derecho", Access: exams.AccessFree}).Error)
	require.NoError(t, db.Create(&exams.Purchase{
		UsuarioEstudianteID: "link-buyer", EvaluacionID: paid.ID, StripeSessionID: "cs_1", Status: exams.PurchasePaid,
	}).Error)

	r, auth := apitest.Router()
	auth.GET("/market", NewHandler(deps).List)

	byTitle := func(resp Response) map[string]EvaluationCard {
		out := map[string]EvaluationCard{}
		for _, c := range resp.Evaluations {
			out[c.Title] = c
		}
		return out
	}

	t.Run("pro sees everything open", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/market", testutil.Token(t, "link-pro", "", ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		apitest.Decode(t, rec, &resp)

		assert.True(t, resp.Pro)
		require.Len(t, resp.Evaluations, 3, "unpublished evaluations are hidden")
		assert.Equal(t, "Derecho civil", resp.Evaluations[0].Title, "ordered by area then title")
		for _, c := range resp.Evaluations {
			assert.Equal(t, "open", c.Access, c.Title)
		}
		assert.EqualValues(t, 3, byTitle(resp)["Farmacología"].QuestionCount)
	})

	t.Run("buyer opens the purchased evaluation only", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/market", testutil.Token(t, "", "buyer@example.com", ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		apitest.Decode(t, rec, &resp)

		cards := byTitle(resp)
		assert.False(t, resp.Pro)
		assert.Equal(t, "purchased", cards["Farmacología"].Reason)
		assert.Equal(t, "locked", cards["Derecho civil"].Access)
		assert.Equal(t, "requires_pro", cards["Derecho civil"].Reason)
		assert.Equal(t, "free", cards[free.Titulo].Reason)
	})

	t.Run("unresolved caller still browses", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/market", testutil.Token(t, "nobody", "", ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		apitest.Decode(t, rec, &resp)

		cards := byTitle(resp)
		assert.Equal(t, "open", cards[free.Titulo].Access)
		assert.Equal(t, "requires_purchase", cards["Farmacología"].Reason)
	})

	t.Run("area filter", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/market?area=derecho", testutil.Token(t, "link-pro", "", ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		apitest.Decode(t, rec, &resp)
		require.Len(t, resp.Evaluations, 1)
		assert.Equal(t, "Derecho civil", resp.Evaluations[0].Title)
	})
}
