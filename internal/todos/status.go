package todos

// Status is the lifecycle of a single store operation. Each operation
// kind (list, detail, create, update) tracks its own status so one
// operation's failure never masks another's success.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

// String returns a short label for the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// OpState is the status of one operation kind together with its last
// error. Err is non-nil only when Status is StatusFailed.
type OpState struct {
	Status Status
	Err    error
}

func pending() OpState {
	return OpState{Status: StatusPending}
}

func succeeded() OpState {
	return OpState{Status: StatusSucceeded}
}

func failed(err error) OpState {
	return OpState{Status: StatusFailed, Err: err}
}
