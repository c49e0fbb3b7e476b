package beanstalk

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTypedStats(t *testing.T) {
	server := NewServer()
	defer server.Close()

	ctx := context.Background()
	client := newTestClient(t, server)
	defer client.Close()

	t.Run("TubeStats", func(t *testing.T) {
		server.HandleFunc(func(line Line) string {
			if line.At(1, "stats-tube emails") {
				return okReply("---\nname: emails\ncurrent-jobs-urgent: 1\ncurrent-jobs-ready: 2\ncurrent-jobs-buried: 3\ntotal-jobs: 10\ncurrent-watching: 4\npause: 60\ncmd-delete: 6\npause-time-left: 12\n")
			}

			return unexpected(t, line)
		})

		stats, err := client.TubeStats(ctx, "emails")
		switch {
		case err != nil:
			t.Fatalf("Error fetching tube stats: %s", err)
		case stats.Name != "emails":
			t.Fatalf("Unexpected name: %s", stats.Name)
		case stats.UrgentJobs != 1 || stats.ReadyJobs != 2 || stats.BuriedJobs != 3:
			t.Fatalf("Unexpected job counts: %+v", stats)
		case stats.TotalJobs != 10:
			t.Fatalf("Unexpected total jobs: %d", stats.TotalJobs)
		case stats.Watching != 4:
			t.Fatalf("Unexpected watching: %d", stats.Watching)
		case stats.Pause != time.Minute:
			t.Fatalf("Unexpected pause: %s", stats.Pause)
		case stats.DeleteCount != 6:
			t.Fatalf("Unexpected delete count: %d", stats.DeleteCount)
		case stats.PauseTimeLeft != 12*time.Second:
			t.Fatalf("Unexpected pause time left: %s", stats.PauseTimeLeft)
		}
	})

	t.Run("TubeStatsNotFound", func(t *testing.T) {
		server.HandleFunc(func(line Line) string {
			if line.At(1, "stats-tube nope") {
				return "NOT_FOUND"
			}

			return unexpected(t, line)
		})

		if _, err := client.TubeStats(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected the ErrNotFound error, but got %v", err)
		}
	})

	t.Run("ServerStats", func(t *testing.T) {
		server.HandleFunc(func(line Line) string {
			if line.At(1, "stats") {
				return okReply("---\ncurrent-jobs-ready: 5\ncurrent-tubes: 2\npid: 1234\nversion: \"1.13\"\nuptime: 3600\ndraining: false\nhostname: queue\n")
			}

			return unexpected(t, line)
		})

		stats, err := client.ServerStats(ctx)
		switch {
		case err != nil:
			t.Fatalf("Error fetching server stats: %s", err)
		case stats.ReadyJobs != 5:
			t.Fatalf("Unexpected ready jobs: %d", stats.ReadyJobs)
		case stats.Tubes != 2:
			t.Fatalf("Unexpected tubes: %d", stats.Tubes)
		case stats.PID != 1234:
			t.Fatalf("Unexpected PID: %d", stats.PID)
		case stats.Version != "1.13":
			t.Fatalf("Unexpected version: %s", stats.Version)
		case stats.Uptime != time.Hour:
			t.Fatalf("Unexpected uptime: %s", stats.Uptime)
		case stats.Draining:
			t.Fatal("Expected the server not to be draining")
		case stats.Hostname != "queue":
			t.Fatalf("Unexpected hostname: %s", stats.Hostname)
		}
	})
}
