package access

import "exam-portal/internal/domain/exams"

// Viewer is what the market knows about the caller: whether the gate said
// pro, and which evaluations were bought one by one.
type Viewer struct {
	Pro       bool
	Purchased map[string]bool
}

// ForEvaluation decides whether v may open ev.
// Priority:
// 1. free evaluations are open to everyone
// 2. an active pro plan opens pro and paid evaluations
// 3. a purchase opens that single evaluation
func (v Viewer) ForEvaluation(ev exams.Evaluation) Decision {
	switch ev.Access {
	case exams.AccessFree:
		return Decision{State: Open, Reason: ReasonFree}
	case exams.AccessPaid:
		if v.Pro {
			return Decision{State: Open, Reason: ReasonPro}
		}
		if v.Purchased[ev.ID] {
			return Decision{State: Open, Reason: ReasonPurchased}
		}
		return Decision{State: Locked, Reason: ReasonRequiresPurchase}
	default:
		// unknown modes are treated as pro
		if v.Pro {
			return Decision{State: Open, Reason: ReasonPro}
		}
		if v.Purchased[ev.ID] {
			return Decision{State: Open, Reason: ReasonPurchased}
		}
		return Decision{State: Locked, Reason: ReasonRequiresPro}
	}
}
