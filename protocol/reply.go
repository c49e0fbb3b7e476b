package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxBodySize is the largest body a reply may declare. It matches the largest
// job size the server can be configured with.
const MaxBodySize = 1 << 30

// ErrFraming is matched by every FramingError through errors.Is.
var ErrFraming = errors.New("beanstalk: framing error")

// FramingError is returned when a reply can't be framed: the status line is
// missing its CRLF, the declared body length is invalid, or fewer body bytes
// are available than were declared. The connection that produced it can no
// longer be trusted.
type FramingError struct {
	Reason    string
	Declared  int
	Available int
	Err       error
}

func (e *FramingError) Error() string {
	msg := "beanstalk: framing error: " + e.Reason
	if e.Declared > 0 || e.Available > 0 {
		msg += fmt.Sprintf(" (declared=%d, available=%d)", e.Declared, e.Available)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *FramingError) Unwrap() error {
	return e.Err
}

// Is makes every FramingError match ErrFraming.
func (e *FramingError) Is(target error) bool {
	return target == ErrFraming
}

// Reply is a single decoded server response.
type Reply struct {
	Status Status
	// Token is the status token as it was received.
	Token string
	// Meta holds the tokens on the status line after the status token. Their
	// meaning depends on the command.
	Meta []string
	Body []byte
}

// Uint parses meta field i as an unsigned integer.
func (reply *Reply) Uint(i int) (uint64, error) {
	if i >= len(reply.Meta) {
		return 0, fmt.Errorf("%s: missing meta field %d", reply.Token, i)
	}

	return strconv.ParseUint(reply.Meta[i], 10, 64)
}

// Int parses meta field i as an integer.
func (reply *Reply) Int(i int) (int, error) {
	if i >= len(reply.Meta) {
		return 0, fmt.Errorf("%s: missing meta field %d", reply.Token, i)
	}

	return strconv.Atoi(reply.Meta[i])
}

func parseStatusLine(line string) (*Reply, error) {
	if line == "" {
		return nil, &FramingError{Reason: "empty status line"}
	}

	tokens := strings.Split(line, " ")
	return &Reply{
		Status: ParseStatus(tokens[0]),
		Token:  tokens[0],
		Meta:   tokens[1:],
	}, nil
}

// bodyLength returns the declared body length of the reply, or -1 if the
// reply has no body.
func bodyLength(reply *Reply) (int, error) {
	if !reply.Status.HasBody() {
		return -1, nil
	}
	if len(reply.Meta) == 0 {
		return 0, &FramingError{Reason: reply.Token + " without body length"}
	}

	size, err := strconv.Atoi(reply.Meta[len(reply.Meta)-1])
	switch {
	case err != nil || size < 0:
		return 0, &FramingError{Reason: "invalid body length " + strconv.Quote(reply.Meta[len(reply.Meta)-1])}
	case size > MaxBodySize:
		return 0, &FramingError{Reason: "body too large", Declared: size}
	}

	return size, nil
}

// Decode parses a raw response into a Reply. Bytes past the declared body
// length are ignored.
func Decode(raw []byte) (*Reply, error) {
	idx := bytes.Index(raw, crlf)
	if idx == -1 {
		return nil, &FramingError{Reason: "missing CRLF after status line"}
	}

	reply, err := parseStatusLine(string(raw[:idx]))
	if err != nil {
		return nil, err
	}

	size, err := bodyLength(reply)
	switch {
	case err != nil:
		return nil, err
	case size < 0:
		return reply, nil
	}

	rest := raw[idx+len(crlf):]
	if len(rest) < size {
		return nil, &FramingError{Reason: "short body", Declared: size, Available: len(rest)}
	}

	reply.Body = append([]byte(nil), rest[:size]...)
	return reply, nil
}

// ReadReply reads a single reply from r, including its body and the CRLF
// that follows it.
func ReadReply(r *bufio.Reader) (*Reply, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return nil, &FramingError{Reason: "truncated status line", Err: io.ErrUnexpectedEOF}
		}

		return nil, err
	}
	if !strings.HasSuffix(line, "\r\n") {
		return nil, &FramingError{Reason: "status line not terminated by CRLF"}
	}

	reply, err := parseStatusLine(line[:len(line)-2])
	if err != nil {
		return nil, err
	}

	size, err := bodyLength(reply)
	switch {
	case err != nil:
		return nil, err
	case size < 0:
		return reply, nil
	}

	body := make([]byte, size+2)
	if n, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &FramingError{Reason: "short body", Declared: size, Available: n, Err: io.ErrUnexpectedEOF}
		}

		return nil, err
	}
	if !bytes.Equal(body[size:], crlf) {
		return nil, &FramingError{Reason: "body not terminated by CRLF", Declared: size, Available: size}
	}

	reply.Body = body[:size]
	return reply, nil
}
