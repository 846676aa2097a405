package access

import (
	"testing"

	"exam-portal/internal/domain/exams"

	"github.com/stretchr/testify/assert"
)

func TestViewerForEvaluation(t *testing.T) {
	free := exams.Evaluation{ID: "e-free", Access: exams.AccessFree}
	pro := exams.Evaluation{ID: "e-pro", Access: exams.AccessPro}
	paid := exams.Evaluation{ID: "e-paid", Access: exams.AccessPaid}

	tests := []struct {
		name   string
		viewer Viewer
		ev     exams.Evaluation
		want   Decision
	}{
		{"free is open without plan", Viewer{}, free, Decision{Open, ReasonFree}},
		{"free is open for pro", Viewer{Pro: true}, free, Decision{Open, ReasonFree}},
		{"pro evaluation locked without plan", Viewer{}, pro, Decision{Locked, ReasonRequiresPro}},
		{"pro evaluation open with plan", Viewer{Pro: true}, pro, Decision{Open, ReasonPro}},
		{"paid evaluation locked without purchase", Viewer{}, paid, Decision{Locked, ReasonRequiresPurchase}},
		{"paid evaluation open after purchase", Viewer{Purchased: map[string]bool{"e-paid": true}}, paid, Decision{Open, ReasonPurchased}},
		{"paid evaluation open with plan", Viewer{Pro: true}, paid, Decision{Open, ReasonPro}},
		{"purchase of another evaluation does not leak", Viewer{Purchased: map[string]bool{"e-other": true}}, paid, Decision{Locked, ReasonRequiresPurchase}},
		{"unknown mode behaves as pro", Viewer{}, exams.Evaluation{ID: "x", Access: "vip"}, Decision{Locked, ReasonRequiresPro}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.viewer.ForEvaluation(tt.ev)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.State == Open, got.Allowed())
		})
	}
}
