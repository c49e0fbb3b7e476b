package protocol

// Status is a status token of a beanstalk reply.
type Status int

// The status tokens a beanstalk server can reply with. StatusUnknown is used
// for any token that is not part of this list.
const (
	StatusUnknown Status = iota
	StatusInserted
	StatusBuried
	StatusUsing
	StatusReserved
	StatusDeleted
	StatusReleased
	StatusTouched
	StatusWatching
	StatusFound
	StatusKicked
	StatusOK
	StatusPaused
	StatusNotFound
	StatusNotIgnored
	StatusTimedOut
	StatusDeadlineSoon
	StatusDraining
	StatusExpectedCRLF
	StatusJobTooBig
	StatusOutOfMemory
	StatusInternalError
	StatusBadFormat
	StatusUnknownCommand
)

var statusTokens = [...]string{
	StatusUnknown:        "",
	StatusInserted:       "INSERTED",
	StatusBuried:         "BURIED",
	StatusUsing:          "USING",
	StatusReserved:       "RESERVED",
	StatusDeleted:        "DELETED",
	StatusReleased:       "RELEASED",
	StatusTouched:        "TOUCHED",
	StatusWatching:       "WATCHING",
	StatusFound:          "FOUND",
	StatusKicked:         "KICKED",
	StatusOK:             "OK",
	StatusPaused:         "PAUSED",
	StatusNotFound:       "NOT_FOUND",
	StatusNotIgnored:     "NOT_IGNORED",
	StatusTimedOut:       "TIMED_OUT",
	StatusDeadlineSoon:   "DEADLINE_SOON",
	StatusDraining:       "DRAINING",
	StatusExpectedCRLF:   "EXPECTED_CRLF",
	StatusJobTooBig:      "JOB_TOO_BIG",
	StatusOutOfMemory:    "OUT_OF_MEMORY",
	StatusInternalError:  "INTERNAL_ERROR",
	StatusBadFormat:      "BAD_FORMAT",
	StatusUnknownCommand: "UNKNOWN_COMMAND",
}

var statusByToken = func() map[string]Status {
	m := make(map[string]Status, len(statusTokens))
	for status, token := range statusTokens {
		if token != "" {
			m[token] = Status(status)
		}
	}

	return m
}()

// ParseStatus returns the Status of a status token, or StatusUnknown if the
// token is not recognized.
func ParseStatus(token string) Status {
	if status, ok := statusByToken[token]; ok {
		return status
	}

	return StatusUnknown
}

// String returns the wire token of this status.
func (status Status) String() string {
	if status < 0 || int(status) >= len(statusTokens) || status == StatusUnknown {
		return "UNKNOWN"
	}

	return statusTokens[status]
}

// HasBody returns true for the statuses whose reply carries a body of the
// length declared in the last meta field.
func (status Status) HasBody() bool {
	switch status {
	case StatusOK, StatusReserved, StatusFound:
		return true
	}

	return false
}
