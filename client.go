package beanstalk

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"

	"github.com/yellow1912/swbeanstalk/protocol"
)

// Client is a single connection to a beanstalk server. It keeps track of the
// tube it uses for producing and the tubes it watches for consuming.
//
// A Client is not safe for concurrent use. The protocol has no way to
// correlate replies with requests, so callers sharing a Client must
// serialize their calls.
type Client struct {
	URI     string
	socket  string
	isTLS   bool
	config  Config
	conn    net.Conn
	reader  *bufio.Reader
	tubes   tubeState
	lastErr *ServerError
}

// NewClient returns a disconnected Client for the specified URI. Call
// Connect to establish the connection.
func NewClient(URI string, config Config) (*Client, error) {
	socket, isTLS, err := ParseURI(URI)
	if err != nil {
		return nil, err
	}

	return &Client{
		URI:    URI,
		socket: socket,
		isTLS:  isTLS,
		config: config.normalize(),
		tubes:  newTubeState(),
	}, nil
}

// Dial into a beanstalk server.
func Dial(URI string, config Config) (*Client, error) {
	client, err := NewClient(URI, config)
	if err != nil {
		return nil, err
	}

	if err = client.Connect(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// Connect establishes the connection to the beanstalk server. An existing
// connection is closed first, without sending quit.
func (client *Client) Connect(ctx context.Context) error {
	if client.conn != nil {
		client.closeConn()
	}

	dialer := &net.Dialer{Timeout: client.config.DialTimeout}

	var netConn net.Conn
	var err error
	if client.isTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: client.config.TLSConfig}
		netConn, err = tlsDialer.DialContext(ctx, "tcp", client.socket)
	} else {
		netConn, err = dialer.DialContext(ctx, "tcp", client.socket)
	}
	if err != nil {
		return err
	}

	if client.config.DebugFunc != nil {
		netConn = &debugConn{Conn: netConn, debug: client.config.DebugFunc}
	}

	client.conn = netConn
	client.reader = bufio.NewReader(netConn)
	client.tubes = newTubeState()

	client.config.InfoFunc("Connected to beanstalk server " + client.String())
	return nil
}

// IsConnected returns true if this client has an open connection.
func (client *Client) IsConnected() bool {
	return client.conn != nil
}

// Disconnect sends the quit command to the server and closes the connection.
// The client is disconnected afterwards, even if quit could not be sent.
func (client *Client) Disconnect() error {
	if client.conn == nil {
		return nil
	}

	if client.config.ConnTimeout != 0 {
		_ = client.conn.SetWriteDeadline(time.Now().Add(client.config.ConnTimeout))
	}
	_ = protocol.WriteCommand(client.conn, protocol.NewCommand("quit"))

	client.config.InfoFunc("Disconnected from beanstalk server " + client.String())
	return client.closeConn()
}

// Close is the io.Closer form of Disconnect.
func (client *Client) Close() error {
	return client.Disconnect()
}

func (client *Client) closeConn() error {
	err := client.conn.Close()
	client.conn, client.reader = nil, nil
	return err
}

func (client *Client) String() string {
	if client.conn == nil {
		return client.URI
	}

	return client.URI + " (local=" + client.conn.LocalAddr().String() + ")"
}

// TakeError returns the last error reported by the server and clears it. It
// returns nil if no command failed since the last call.
func (client *Client) TakeError() *ServerError {
	err := client.lastErr
	client.lastErr = nil
	return err
}

// roundTrip sends a command and reads its reply. Any error it returns means
// that the connection was closed.
func (client *Client) roundTrip(ctx context.Context, cmd *protocol.Command) (*protocol.Reply, error) {
	return client.roundTripWithin(ctx, cmd, 0)
}

// roundTripWithin works like roundTrip, but extends the configured connection
// timeout with extra. This is used by commands that block on the server side.
func (client *Client) roundTripWithin(ctx context.Context, cmd *protocol.Command, extra time.Duration) (*protocol.Reply, error) {
	if client.conn == nil {
		return nil, ErrNotConnected
	}

	ctx, span := trace.StartSpan(ctx, "github.com/yellow1912/swbeanstalk/Client."+cmd.Verb)
	defer span.End()

	ctx = addTagKey(ctx, tag.Upsert(tagKeyCommand, cmd.Verb))
	start := time.Now()

	reply, err := func() (*protocol.Reply, error) {
		if deadline, ok := client.deadline(ctx, extra); ok {
			if err := client.conn.SetDeadline(deadline); err != nil {
				return nil, err
			}

			defer client.conn.SetDeadline(time.Time{})
		}

		if err := protocol.WriteCommand(client.conn, cmd); err != nil {
			return nil, err
		}

		return protocol.ReadReply(client.reader)
	}()

	stats.Record(ctx,
		commandCountMeasurement.M(1),
		roundTripCommandLatencyMeasurement.M(time.Since(start).Milliseconds()))

	if err != nil {
		// An io.EOF means the connection got disconnected.
		if err == io.EOF {
			err = ErrDisconnected
		}

		recordError(ctx, "io")
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnavailable, Message: err.Error()})
		client.config.ErrorFunc(err, "Closing connection to beanstalk server "+client.String()+" after "+cmd.Verb+" failed")
		_ = client.closeConn()

		return nil, err
	}

	span.AddAttributes(trace.StringAttribute("beanstalk.status", reply.Token))
	return reply, nil
}

func (client *Client) deadline(ctx context.Context, extra time.Duration) (time.Time, bool) {
	deadline, ok := ctx.Deadline()
	if client.config.ConnTimeout == 0 {
		return deadline, ok
	}

	timeout := time.Now().Add(client.config.ConnTimeout + extra)
	if !ok || timeout.Before(deadline) {
		return timeout, true
	}

	return deadline, true
}

// fail records a failed command as the last error and returns it.
func (client *Client) fail(ctx context.Context, cmd *protocol.Command, reply *protocol.Reply, message string) error {
	err := newServerError(cmd, reply, message)
	client.lastErr = err

	recordError(addTagKey(ctx, tag.Upsert(tagKeyCommand, cmd.Verb)), reply.Token)
	return err
}

// expect sends a command that has a single success status and no payload.
func (client *Client) expect(ctx context.Context, cmd *protocol.Command, status protocol.Status) error {
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return err
	}

	if reply.Status != status {
		return client.fail(ctx, cmd, reply, "")
	}

	return nil
}

// isServerError returns true if err was reported by the server, as opposed
// to a failure that closed the connection.
func isServerError(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// debugConn passes all traffic of a connection to a debug function.
type debugConn struct {
	net.Conn
	debug func(out bool, data []byte)
}

func (conn *debugConn) Read(b []byte) (int, error) {
	n, err := conn.Conn.Read(b)
	if n > 0 {
		conn.debug(false, b[:n])
	}

	return n, err
}

func (conn *debugConn) Write(b []byte) (int, error) {
	conn.debug(true, b)
	return conn.Conn.Write(b)
}
