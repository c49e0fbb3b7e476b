package beanstalk

import (
	"context"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/yellow1912/swbeanstalk/protocol"
)

// JobStats contains statistics about a job.
type JobStats struct {
	ID       uint64        `yaml:"id"`
	Tube     string        `yaml:"tube"`
	State    string        `yaml:"state"`
	Priority uint32        `yaml:"pri"`
	Age      time.Duration `yaml:"age"`
	Delay    time.Duration `yaml:"delay"`
	TTR      time.Duration `yaml:"ttr"`
	TimeLeft time.Duration `yaml:"time-left"`
	File     int           `yaml:"file"`
	Reserves int           `yaml:"reserves"`
	Timeouts int           `yaml:"timeouts"`
	Releases int           `yaml:"releases"`
	Buries   int           `yaml:"buries"`
	Kicks    int           `yaml:"kicks"`
}

// TubeStats contains statistics about a tube.
type TubeStats struct {
	Name          string        `yaml:"name"`
	UrgentJobs    int64         `yaml:"current-jobs-urgent"`
	ReadyJobs     int64         `yaml:"current-jobs-ready"`
	ReservedJobs  int64         `yaml:"current-jobs-reserved"`
	DelayedJobs   int64         `yaml:"current-jobs-delayed"`
	BuriedJobs    int64         `yaml:"current-jobs-buried"`
	TotalJobs     int64         `yaml:"total-jobs"`
	Using         int64         `yaml:"current-using"`
	Waiting       int64         `yaml:"current-waiting"`
	Watching      int64         `yaml:"current-watching"`
	Pause         time.Duration `yaml:"pause"`
	DeleteCount   int64         `yaml:"cmd-delete"`
	PauseCount    int64         `yaml:"cmd-pause-tube"`
	PauseTimeLeft time.Duration `yaml:"pause-time-left"`
}

// ServerStats contains statistics about the server.
type ServerStats struct {
	UrgentJobs       int64         `yaml:"current-jobs-urgent"`
	ReadyJobs        int64         `yaml:"current-jobs-ready"`
	ReservedJobs     int64         `yaml:"current-jobs-reserved"`
	DelayedJobs      int64         `yaml:"current-jobs-delayed"`
	BuriedJobs       int64         `yaml:"current-jobs-buried"`
	TotalJobs        int64         `yaml:"total-jobs"`
	JobTimeouts      int64         `yaml:"job-timeouts"`
	MaxJobSize       int64         `yaml:"max-job-size"`
	Tubes            int64         `yaml:"current-tubes"`
	Connections      int64         `yaml:"current-connections"`
	Producers        int64         `yaml:"current-producers"`
	Workers          int64         `yaml:"current-workers"`
	Waiting          int64         `yaml:"current-waiting"`
	TotalConnections int64         `yaml:"total-connections"`
	PID              int64         `yaml:"pid"`
	Version          string        `yaml:"version"`
	Uptime           time.Duration `yaml:"uptime"`
	Draining         bool          `yaml:"draining"`
	ID               string        `yaml:"id"`
	Hostname         string        `yaml:"hostname"`
}

// JobStats returns the statistics of a job.
func (client *Client) JobStats(ctx context.Context, id uint64) (JobStats, error) {
	var stats JobStats
	if err := client.statsInto(ctx, protocol.NewCommand("stats-job", id), &stats); err != nil {
		return JobStats{}, err
	}

	stats.Age *= time.Second
	stats.Delay *= time.Second
	stats.TTR *= time.Second
	stats.TimeLeft *= time.Second

	return stats, nil
}

// TubeStats returns the statistics of a tube.
func (client *Client) TubeStats(ctx context.Context, tube string) (TubeStats, error) {
	if err := validTube(tube); err != nil {
		return TubeStats{}, err
	}

	var stats TubeStats
	if err := client.statsInto(ctx, protocol.NewCommand("stats-tube", tube), &stats); err != nil {
		return TubeStats{}, err
	}

	stats.Pause *= time.Second
	stats.PauseTimeLeft *= time.Second

	return stats, nil
}

// ServerStats returns the statistics of the server.
func (client *Client) ServerStats(ctx context.Context) (ServerStats, error) {
	var stats ServerStats
	if err := client.statsInto(ctx, protocol.NewCommand("stats"), &stats); err != nil {
		return ServerStats{}, err
	}

	stats.Uptime *= time.Second

	return stats, nil
}

func (client *Client) statsInto(ctx context.Context, cmd *protocol.Command, out interface{}) error {
	body, err := client.statsBody(ctx, cmd)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(body, out)
}
