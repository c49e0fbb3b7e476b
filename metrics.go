package beanstalk

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	tagKeyCommand = tag.MustNewKey("command")
	tagKeyStatus  = tag.MustNewKey("status")
)

var (
	roundTripCommandLatencyMeasurement = stats.Int64(
		"beanstalk_client_command_roundtrip_latency",
		"Latency between sending the command request and receiving it's response",
		stats.UnitMilliseconds,
	)
	commandErrorCountMeasurement = stats.Int64(
		"beanstalk_client_command_error_count",
		"Errors returned from beanstalkd",
		"",
	)
	commandCountMeasurement = stats.Int64(
		"beanstalk_client_command_count",
		"Commands sent and received from beanstalkd",
		"",
	)
)

var (
	roundTripCommandLatencyView = &view.View{
		Name:        roundTripCommandLatencyMeasurement.Name(),
		Description: roundTripCommandLatencyMeasurement.Description(),
		Measure:     roundTripCommandLatencyMeasurement,
		Aggregation: view.Distribution(1, 2, 5, 10, 20, 50, 100, 1000),
		TagKeys:     []tag.Key{tagKeyCommand},
	}
	commandErrorCountView = &view.View{
		Name:        commandErrorCountMeasurement.Name(),
		Description: commandErrorCountMeasurement.Description(),
		Measure:     commandErrorCountMeasurement,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{tagKeyCommand, tagKeyStatus},
	}
	commandCountView = &view.View{
		Name:        commandCountMeasurement.Name(),
		Description: commandCountMeasurement.Description(),
		Measure:     commandCountMeasurement,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{tagKeyCommand},
	}
)

// MetricViews returns the opencensus views of the metrics that are recorded
// by every Client. Register them with view.Register to export them.
func MetricViews() []*view.View {
	return []*view.View{
		roundTripCommandLatencyView,
		commandErrorCountView,
		commandCountView,
	}
}

func addTagKey(ctx context.Context, mutators ...tag.Mutator) context.Context {
	newctx, _ := tag.New(ctx, mutators...)
	return newctx
}

// recordError counts a failed command. Hard failures carry the "io" status.
func recordError(ctx context.Context, status string) {
	stats.Record(addTagKey(ctx, tag.Upsert(tagKeyStatus, status)), commandErrorCountMeasurement.M(1))
}
