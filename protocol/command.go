package protocol

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

var crlf = []byte("\r\n")

// Command describes a single beanstalk request.
type Command struct {
	Verb string
	Args []interface{}
	// Body is the payload of body-bearing commands like put. When it is
	// non-nil, its length is sent as the last argument of the command line.
	Body []byte
}

// NewCommand returns a Command without a body.
func NewCommand(verb string, args ...interface{}) *Command {
	return &Command{Verb: verb, Args: args}
}

// NewPutCommand returns a put command for the specified body.
func NewPutCommand(priority uint32, delay, ttr uint64, body []byte) *Command {
	if body == nil {
		body = []byte{}
	}

	return &Command{Verb: "put", Args: []interface{}{priority, delay, ttr}, Body: body}
}

// String returns the command line without its terminator and body.
func (cmd *Command) String() string {
	var buf bytes.Buffer
	cmd.writeLine(&buf)
	return buf.String()
}

func (cmd *Command) writeLine(buf *bytes.Buffer) {
	buf.WriteString(cmd.Verb)
	for _, arg := range cmd.Args {
		buf.WriteByte(' ')
		buf.WriteString(formatArg(arg))
	}

	if cmd.Body != nil {
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(len(cmd.Body)))
	}
}

// Encode returns the exact bytes that are sent to the server for this
// command.
func Encode(cmd *Command) []byte {
	var buf bytes.Buffer
	buf.Grow(len(cmd.Verb) + 16*len(cmd.Args) + len(cmd.Body) + 8)

	cmd.writeLine(&buf)
	buf.Write(crlf)

	if cmd.Body != nil {
		buf.Write(cmd.Body)
		buf.Write(crlf)
	}

	return buf.Bytes()
}

// WriteCommand encodes cmd and writes it to w in a single write.
func WriteCommand(w io.Writer, cmd *Command) error {
	_, err := w.Write(Encode(cmd))
	return err
}

func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
