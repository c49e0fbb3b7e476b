package beanstalk

import (
	"errors"

	"github.com/yellow1912/swbeanstalk/protocol"
)

// These errors may be returned by any of Client's functions. Errors reported
// by the server are returned as a *ServerError that matches one of these
// through errors.Is.
var (
	ErrBadFormat      = errors.New("bad command format")
	ErrBuried         = errors.New("job was buried")
	ErrDeadlineSoon   = errors.New("deadline soon")
	ErrDisconnected   = errors.New("client disconnected")
	ErrDraining       = errors.New("server in draining mode")
	ErrExpectedCRLF   = errors.New("expected CRLF after job body")
	ErrInternalError  = errors.New("server internal error")
	ErrJobTooBig      = errors.New("job body too big")
	ErrNotConnected   = errors.New("not connected")
	ErrNotFound       = errors.New("job not found")
	ErrNotIgnored     = errors.New("tube not ignored")
	ErrNotWatched     = errors.New("tube not watched")
	ErrOutOfMemory    = errors.New("server is out of memory")
	ErrTimedOut       = errors.New("reserve timed out")
	ErrTubeEmpty      = errors.New("tube name is empty")
	ErrTubeInvalid    = errors.New("tube name contains invalid characters")
	ErrTubeTooLong    = errors.New("tube name too long")
	ErrUnexpected     = errors.New("unexpected response received")
	ErrUnknownCommand = errors.New("unknown command")
)

var statusErrors = map[protocol.Status]error{
	protocol.StatusBadFormat:      ErrBadFormat,
	protocol.StatusBuried:         ErrBuried,
	protocol.StatusDeadlineSoon:   ErrDeadlineSoon,
	protocol.StatusDraining:       ErrDraining,
	protocol.StatusExpectedCRLF:   ErrExpectedCRLF,
	protocol.StatusInternalError:  ErrInternalError,
	protocol.StatusJobTooBig:      ErrJobTooBig,
	protocol.StatusNotFound:       ErrNotFound,
	protocol.StatusNotIgnored:     ErrNotIgnored,
	protocol.StatusOutOfMemory:    ErrOutOfMemory,
	protocol.StatusTimedOut:       ErrTimedOut,
	protocol.StatusUnknownCommand: ErrUnknownCommand,
}

// ServerError is returned when the server replied with anything other than
// the success status of a command. The connection remains usable.
type ServerError struct {
	// Command is the verb of the failed command.
	Command string
	Status  protocol.Status
	// Token is the status token as it was received.
	Token   string
	Meta    []string
	Message string
}

func newServerError(cmd *protocol.Command, reply *protocol.Reply, message string) *ServerError {
	return &ServerError{
		Command: cmd.Verb,
		Status:  reply.Status,
		Token:   reply.Token,
		Meta:    reply.Meta,
		Message: message,
	}
}

func (e *ServerError) Error() string {
	msg := e.Command + ": " + e.Token
	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

// Unwrap returns the sentinel error belonging to the status of this error,
// or ErrUnexpected for statuses that aren't failures of their own.
func (e *ServerError) Unwrap() error {
	if err, ok := statusErrors[e.Status]; ok {
		return err
	}

	return ErrUnexpected
}
