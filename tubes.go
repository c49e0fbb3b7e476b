package beanstalk

import (
	"context"
	"errors"
	"fmt"

	"github.com/yellow1912/swbeanstalk/protocol"
)

const defaultTube = "default"

// tubeState mirrors the tube state of the connection on the server. It is
// only changed after the server confirmed the change.
type tubeState struct {
	using   string
	watched []string
}

func newTubeState() tubeState {
	return tubeState{using: defaultTube, watched: []string{defaultTube}}
}

func (state *tubeState) isWatched(tube string) bool {
	return includes(state.watched, tube)
}

func (state *tubeState) watch(tube string) {
	if !state.isWatched(tube) {
		state.watched = append(state.watched, tube)
	}
}

func (state *tubeState) ignore(tube string) {
	for i, t := range state.watched {
		if t == tube {
			state.watched = append(state.watched[:i:i], state.watched[i+1:]...)
			return
		}
	}
}

// UsedTube returns the tube that put commands are sent to.
func (client *Client) UsedTube() string {
	return client.tubes.using
}

// WatchedTubes returns the tubes that reserve commands take jobs from, in the
// order they were watched.
func (client *Client) WatchedTubes() []string {
	return append([]string(nil), client.tubes.watched...)
}

// Use the specified tube for the upcoming put commands. Nothing is sent to
// the server if the tube is already in use.
func (client *Client) Use(ctx context.Context, tube string) error {
	if err := validTube(tube); err != nil {
		return err
	}
	if tube == client.tubes.using {
		return nil
	}

	cmd := protocol.NewCommand("use", tube)
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return err
	}

	if reply.Status != protocol.StatusUsing || len(reply.Meta) != 1 || reply.Meta[0] != tube {
		return client.fail(ctx, cmd, reply, "use tube "+tube+" failed")
	}

	client.tubes.using = tube
	return nil
}

// Watch adds a tube to the watch list and returns the number of watched
// tubes. Nothing is sent to the server if the tube is already watched.
func (client *Client) Watch(ctx context.Context, tube string) (int, error) {
	if err := validTube(tube); err != nil {
		return 0, err
	}
	if client.tubes.isWatched(tube) {
		return len(client.tubes.watched), nil
	}

	cmd := protocol.NewCommand("watch", tube)
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return 0, err
	}

	if reply.Status != protocol.StatusWatching {
		return 0, client.fail(ctx, cmd, reply, "watch tube "+tube+" failed")
	}

	client.tubes.watch(tube)

	count, err := reply.Int(0)
	if err != nil {
		return 0, client.fail(ctx, cmd, reply, "invalid watch count")
	}

	return count, nil
}

// Ignore removes a tube from the watch list. Ignoring a tube that isn't
// watched fails with ErrNotWatched without contacting the server. The server
// refuses to ignore the last watched tube with NOT_IGNORED.
func (client *Client) Ignore(ctx context.Context, tube string) error {
	if !client.tubes.isWatched(tube) {
		return ErrNotWatched
	}

	cmd := protocol.NewCommand("ignore", tube)
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return err
	}

	if reply.Status != protocol.StatusWatching {
		return client.fail(ctx, cmd, reply, "ignore tube "+tube+" failed")
	}

	client.tubes.ignore(tube)
	return nil
}

// WatchOnly watches the specified tube and ignores all others. Tubes the
// server refuses to ignore remain watched and the last of those refusals is
// available through TakeError.
func (client *Client) WatchOnly(ctx context.Context, tube string) error {
	if _, err := client.Watch(ctx, tube); err != nil {
		return err
	}

	for _, other := range client.WatchedTubes() {
		if other == tube {
			continue
		}

		if err := client.Ignore(ctx, other); err != nil && !isServerError(err) {
			return err
		}
	}

	return nil
}

// WithUsedTube calls fn while the specified tube is used and switches back to
// the previously used tube afterwards, also when fn fails or panics. A failure
// to switch back is joined to the error of fn.
func (client *Client) WithUsedTube(ctx context.Context, tube string, fn func(*Client) error) (err error) {
	used := client.tubes.using
	if err := client.Use(ctx, tube); err != nil {
		return err
	}

	defer func() {
		if restoreErr := client.Use(ctx, used); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore used tube %s: %w", used, restoreErr))
		}
	}()

	return fn(client)
}

// WithWatchedTube calls fn while only the specified tube is watched. The
// previous watch list is restored afterwards, also when fn fails or panics.
// Tubes that fn watched itself are ignored again. A
// failure to restore is joined to the error of fn.
func (client *Client) WithWatchedTube(ctx context.Context, tube string, fn func(*Client) error) (err error) {
	watched := client.WatchedTubes()

	defer func() {
		if restoreErr := client.restoreWatched(ctx, watched); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore watched tubes: %w", restoreErr))
		}
	}()

	if err := client.WatchOnly(ctx, tube); err != nil {
		return err
	}

	return fn(client)
}

// restoreWatched watches the tubes in watched again and then ignores every
// other tube, so that the watch list ends up as it was.
func (client *Client) restoreWatched(ctx context.Context, watched []string) error {
	var errs []error
	for _, t := range watched {
		if _, err := client.Watch(ctx, t); err != nil {
			if !isServerError(err) {
				return errors.Join(append(errs, err)...)
			}

			errs = append(errs, err)
		}
	}

	for _, t := range client.WatchedTubes() {
		if includes(watched, t) {
			continue
		}

		if err := client.Ignore(ctx, t); err != nil {
			if !isServerError(err) {
				return errors.Join(append(errs, err)...)
			}

			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ListTubeUsed asks the server which tube is used and updates the local state
// with its answer.
func (client *Client) ListTubeUsed(ctx context.Context) (string, error) {
	cmd := protocol.NewCommand("list-tube-used")
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return "", err
	}

	if reply.Status != protocol.StatusUsing || len(reply.Meta) != 1 {
		return "", client.fail(ctx, cmd, reply, "")
	}

	client.tubes.using = reply.Meta[0]
	return client.tubes.using, nil
}

// ListTubesWatched asks the server which tubes are watched and replaces the
// local watch list with its answer. An empty answer leaves the local watch
// list untouched.
func (client *Client) ListTubesWatched(ctx context.Context) ([]string, error) {
	cmd := protocol.NewCommand("list-tubes-watched")
	reply, err := client.roundTrip(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if reply.Status != protocol.StatusOK {
		return nil, client.fail(ctx, cmd, reply, "")
	}

	// A connection always watches at least one tube.
	stats := protocol.DecodeStats(reply.Body)
	if len(stats.List) == 0 {
		return nil, client.fail(ctx, cmd, reply, "empty watch list")
	}

	client.tubes.watched = append([]string(nil), stats.List...)
	return stats.List, nil
}
