package entities

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusReady     Status = "Ready"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
)

// validNext holds the allowed status graph. Rejected and Completed are
// terminal: no outgoing edges.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusReady: true, StatusRejected: true},
	StatusReady:     {StatusCompleted: true},
	StatusRejected:  {},
	StatusCompleted: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

// ParseStatus accepts only statuses that can appear as a transition target.
// Pending is assigned at checkout and is never a valid target.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReady, StatusRejected, StatusCompleted:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}
