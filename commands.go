package beanstalk

import (
	"context"
	"time"

	"github.com/yellow1912/swbeanstalk/protocol"
)

// seconds converts a duration into the whole seconds the protocol expects.
func seconds(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}

	return uint64(d / time.Second)
}

// Put a job into the used tube and return its ID. If the server buried the
// job because it ran out of memory, the returned *ServerError matches
// ErrBuried and its Meta holds the ID.
func (client *Client) Put(ctx context.Context, body []byte, params PutParams) (uint64, error) {
	cmd := protocol.NewPutCommand(params.Priority, seconds(params.Delay), seconds(params.TTR), body)
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return 0, err
	}

	if reply.Status != protocol.StatusInserted {
		return 0, client.fail(ctx, cmd, reply, "")
	}

	id, err := reply.Uint(0)
	if err != nil {
		return 0, client.fail(ctx, cmd, reply, "invalid job id")
	}

	return id, nil
}

// PutInTube puts a job into the specified tube and switches back to the
// previously used tube afterwards.
func (client *Client) PutInTube(ctx context.Context, tube string, body []byte, params PutParams) (id uint64, err error) {
	err = client.WithUsedTube(ctx, tube, func(client *Client) error {
		id, err = client.Put(ctx, body, params)
		return err
	})

	return id, err
}

// Reserve blocks until a job is available in one of the watched tubes. It is
// bound by Config.ConnTimeout and the context deadline like any other
// command, and hitting either closes the connection.
func (client *Client) Reserve(ctx context.Context) (*Job, error) {
	return client.readJob(ctx, protocol.NewCommand("reserve"), protocol.StatusReserved, 0)
}

// ReserveWithTimeout tries to reserve a job and blocks for up to a maximum of
// timeout. If no job could be reserved the returned error matches
// ErrTimedOut. ErrDeadlineSoon is returned when a job reserved by this client
// is about to expire.
func (client *Client) ReserveWithTimeout(ctx context.Context, timeout time.Duration) (*Job, error) {
	cmd := protocol.NewCommand("reserve-with-timeout", seconds(timeout))
	return client.readJob(ctx, cmd, protocol.StatusReserved, timeout)
}

// Delete a job.
func (client *Client) Delete(ctx context.Context, id uint64) error {
	return client.expect(ctx, protocol.NewCommand("delete", id), protocol.StatusDeleted)
}

// Release a reserved job back into the ready queue.
func (client *Client) Release(ctx context.Context, id uint64, priority uint32, delay time.Duration) error {
	return client.expect(ctx, protocol.NewCommand("release", id, priority, seconds(delay)), protocol.StatusReleased)
}

// Bury a reserved job.
func (client *Client) Bury(ctx context.Context, id uint64, priority uint32) error {
	return client.expect(ctx, protocol.NewCommand("bury", id, priority), protocol.StatusBuried)
}

// Touch a reserved job, which resets its time to run.
func (client *Client) Touch(ctx context.Context, id uint64) error {
	return client.expect(ctx, protocol.NewCommand("touch", id), protocol.StatusTouched)
}

// Peek returns the job with the specified ID.
func (client *Client) Peek(ctx context.Context, id uint64) (*Job, error) {
	return client.readJob(ctx, protocol.NewCommand("peek", id), protocol.StatusFound, 0)
}

// PeekReady returns the next ready job in the used tube.
func (client *Client) PeekReady(ctx context.Context) (*Job, error) {
	return client.readJob(ctx, protocol.NewCommand("peek-ready"), protocol.StatusFound, 0)
}

// PeekDelayed returns the delayed job in the used tube with the shortest
// delay left.
func (client *Client) PeekDelayed(ctx context.Context) (*Job, error) {
	return client.readJob(ctx, protocol.NewCommand("peek-delayed"), protocol.StatusFound, 0)
}

// PeekBuried returns the next buried job in the used tube.
func (client *Client) PeekBuried(ctx context.Context) (*Job, error) {
	return client.readJob(ctx, protocol.NewCommand("peek-buried"), protocol.StatusFound, 0)
}

// PeekBuriedInTube returns the next buried job in the specified tube.
func (client *Client) PeekBuriedInTube(ctx context.Context, tube string) (job *Job, err error) {
	err = client.WithUsedTube(ctx, tube, func(client *Client) error {
		job, err = client.PeekBuried(ctx)
		return err
	})

	return job, err
}

func (client *Client) readJob(ctx context.Context, cmd *protocol.Command, status protocol.Status, extra time.Duration) (*Job, error) {
	reply, err := client.roundTripWithin(ctx, cmd, extra)
	if err != nil {
		return nil, err
	}

	if reply.Status != status {
		return nil, client.fail(ctx, cmd, reply, "")
	}

	id, err := reply.Uint(0)
	if err != nil {
		return nil, client.fail(ctx, cmd, reply, "invalid job id")
	}

	return &Job{ID: id, Body: reply.Body, client: client}, nil
}

// Kick moves up to bound buried jobs, or delayed jobs if there are no buried
// ones, in the used tube into the ready queue. It returns the number of
// kicked jobs.
func (client *Client) Kick(ctx context.Context, bound int) (int, error) {
	cmd := protocol.NewCommand("kick", bound)
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return 0, err
	}

	if reply.Status != protocol.StatusKicked {
		return 0, client.fail(ctx, cmd, reply, "")
	}

	count, err := reply.Int(0)
	if err != nil {
		return 0, client.fail(ctx, cmd, reply, "invalid kick count")
	}

	return count, nil
}

// KickTube kicks up to bound jobs in the specified tube.
func (client *Client) KickTube(ctx context.Context, tube string, bound int) (count int, err error) {
	err = client.WithUsedTube(ctx, tube, func(client *Client) error {
		count, err = client.Kick(ctx, bound)
		return err
	})

	return count, err
}

// KickJob moves a buried or delayed job into the ready queue.
func (client *Client) KickJob(ctx context.Context, id uint64) error {
	return client.expect(ctx, protocol.NewCommand("kick-job", id), protocol.StatusKicked)
}

// PauseTube delays any new job being reserved from a tube.
func (client *Client) PauseTube(ctx context.Context, tube string, delay time.Duration) error {
	if err := validTube(tube); err != nil {
		return err
	}

	return client.expect(ctx, protocol.NewCommand("pause-tube", tube, seconds(delay)), protocol.StatusPaused)
}

// Stats returns the statistics of the server.
func (client *Client) Stats(ctx context.Context) (*protocol.Stats, error) {
	return client.stats(ctx, protocol.NewCommand("stats"))
}

// StatsJob returns the statistics of a job.
func (client *Client) StatsJob(ctx context.Context, id uint64) (*protocol.Stats, error) {
	return client.stats(ctx, protocol.NewCommand("stats-job", id))
}

// StatsTube returns the statistics of a tube.
func (client *Client) StatsTube(ctx context.Context, tube string) (*protocol.Stats, error) {
	if err := validTube(tube); err != nil {
		return nil, err
	}

	return client.stats(ctx, protocol.NewCommand("stats-tube", tube))
}

// ListTubes returns the names of all existing tubes.
func (client *Client) ListTubes(ctx context.Context) ([]string, error) {
	stats, err := client.stats(ctx, protocol.NewCommand("list-tubes"))
	if err != nil {
		return nil, err
	}

	return stats.List, nil
}

func (client *Client) stats(ctx context.Context, cmd *protocol.Command) (*protocol.Stats, error) {
	body, err := client.statsBody(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return protocol.DecodeStats(body), nil
}

func (client *Client) statsBody(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if reply.Status != protocol.StatusOK {
		return nil, client.fail(ctx, cmd, reply, "")
	}

	return reply.Body, nil
}
