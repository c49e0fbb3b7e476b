package beanstalk

import (
	"context"
	"time"
)

// Default parameters for put, release and bury.
const (
	DefaultPriority uint32 = 60
	DefaultTTR             = 30 * time.Second
)

// PutParams describe the parameters for a put request.
type PutParams struct {
	Priority uint32
	Delay    time.Duration
	TTR      time.Duration
}

// DefaultPutParams returns the parameters that are used when nothing else is
// known about a job.
func DefaultPutParams() PutParams {
	return PutParams{Priority: DefaultPriority, TTR: DefaultTTR}
}

// Job contains the data of a reserved or peeked job. Its methods use the
// client that returned it.
type Job struct {
	ID     uint64
	Body   []byte
	client *Client
}

// Bury this job.
func (job *Job) Bury(ctx context.Context, priority uint32) error {
	return job.client.Bury(ctx, job.ID, priority)
}

// Delete this job.
func (job *Job) Delete(ctx context.Context) error {
	return job.client.Delete(ctx, job.ID)
}

// Release this job back into the ready queue.
func (job *Job) Release(ctx context.Context, priority uint32, delay time.Duration) error {
	return job.client.Release(ctx, job.ID, priority, delay)
}

// Touch this job to extend its time to run.
func (job *Job) Touch(ctx context.Context) error {
	return job.client.Touch(ctx, job.ID)
}

// Kick this job into the ready queue.
func (job *Job) Kick(ctx context.Context) error {
	return job.client.KickJob(ctx, job.ID)
}

// Stats returns the statistics of this job.
func (job *Job) Stats(ctx context.Context) (JobStats, error) {
	return job.client.JobStats(ctx, job.ID)
}
