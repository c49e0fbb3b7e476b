package beanstalk

import (
	"net"
	"net/textproto"
	"sync"
	"testing"
	"time"
)

// Line describes a read line from the client.
type Line struct {
	lineno int
	line   string
}

// At validates if the specified string is present at a specific line number.
func (line Line) At(lineno int, s string) bool {
	return lineno == line.lineno && s == line.line
}

// Server implements a test beanstalk server.
type Server struct {
	listener net.Listener
	mu       sync.RWMutex
	lineno   int
	conns    int
	quits    int
	handler  func(line Line) string
}

// NewServer returns a new Server.
func NewServer() *Server {
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic("Unable to set up listening socket for text beanstalk server: " + err.Error())
	}

	server := &Server{listener: listener}
	go server.accept()

	return server
}

// Close the server socket.
func (server *Server) Close() {
	_ = server.listener.Close()
}

// accept incoming connections.
func (server *Server) accept() {
	defer server.listener.Close()

	for {
		conn, err := server.listener.Accept()
		if err != nil {
			return
		}

		server.mu.Lock()
		server.conns++
		server.mu.Unlock()

		server.handleConn(textproto.NewConn(conn))
	}
}

// handleConn handles an existing client connection.
func (server *Server) handleConn(conn *textproto.Conn) {
	defer conn.Close()

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return
		}

		// A client that quits is done, regardless of the registered handler.
		if line == "quit" {
			server.mu.Lock()
			server.quits++
			server.mu.Unlock()
			return
		}

		// Fetch a lock and call the handler with the line information that was
		// just read.
		func() {
			server.mu.Lock()
			defer server.mu.Unlock()

			server.lineno++
			if server.handler != nil {
				if resp := server.handler(Line{server.lineno, line}); resp != "" {
					_ = conn.PrintfLine("%s", resp)
				}
			}
		}()
	}
}

// HandleFunc registers the handler function that should be called for every
// line that this server receives from the client.
func (server *Server) HandleFunc(handler func(line Line) string) {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.lineno = 0
	server.handler = handler
}

// Lines returns the number of lines received since the last HandleFunc.
func (server *Server) Lines() int {
	server.mu.RLock()
	defer server.mu.RUnlock()

	return server.lineno
}

// Conns returns the number of accepted connections.
func (server *Server) Conns() int {
	server.mu.RLock()
	defer server.mu.RUnlock()

	return server.conns
}

// Quits returns the number of received quit commands.
func (server *Server) Quits() int {
	server.mu.RLock()
	defer server.mu.RUnlock()

	return server.quits
}

// Socket returns the host:port combo that this server is listening on.
func (server *Server) Socket() string {
	return server.listener.Addr().String()
}

// unexpected reports an unexpected request and answers it so that the client
// doesn't block.
func unexpected(t *testing.T, line Line) string {
	t.Errorf("Unexpected client request at line %d: %s", line.lineno, line.line)
	return "UNKNOWN_COMMAND"
}

// newTestClient dials the server with a timeout that keeps broken tests from
// hanging.
func newTestClient(t *testing.T, server *Server) *Client {
	t.Helper()

	client, err := Dial(server.Socket(), Config{ConnTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Unable to dial to beanstalk server: %s", err)
	}

	return client
}
