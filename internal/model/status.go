package model

// Status is the lifecycle state of an online order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// flow is the strict forward sequence used by the "advance" shortcut.
var flow = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
}

var statusLabels = map[Status]string{
	StatusPending:   "Pendente",
	StatusConfirmed: "Confirmado",
	StatusPreparing: "Preparando",
	StatusReady:     "Pronto",
	StatusDelivered: "Entregue",
	StatusCancelled: "Cancelado",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the following state in the forward sequence. The second
// return is false for terminal states and for unknown values.
func (s Status) Next() (Status, bool) {
	for i, st := range flow {
		if st == s && i < len(flow)-1 {
			return flow[i+1], true
		}
	}
	return "", false
}

// CanCancel reports whether the cancel action is offered. Cancellation is
// only legal while the order is still pending.
func (s Status) CanCancel() bool {
	return s == StatusPending
}

// CanTransition is the legal edge set enforced at the store boundary, not
// only in UI affordances. Any non-terminal state may jump to any state in
// the forward flow (the operator picker allows skipping steps), while
// cancelled is reachable from pending only. Terminal states accept nothing.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return from.CanCancel()
	}
	return true
}

// Label returns the customer-facing pt-BR label used on receipts.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
