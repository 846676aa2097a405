package access

type State string

const (
	Open   State = "open"
	Locked State = "locked"
)

type Reason string

const (
	ReasonFree             Reason = "free"
	ReasonPro              Reason = "pro"
	ReasonPurchased        Reason = "purchased"
	ReasonRequiresPro      Reason = "requires_pro"
	ReasonRequiresPurchase Reason = "requires_purchase"
)

type Decision struct {
	State  State
	Reason Reason
}

func (d Decision) Allowed() bool { return d.State == Open }
