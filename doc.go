/*
Package beanstalk implements a client for the beanstalkd work queue protocol
over a single connection.

Create a Client and connect it to a beanstalk server:

	client, err := beanstalk.Dial("localhost:11300", beanstalk.Config{})
	if err != nil {
		// handle error
	}
	defer client.Close()

Jobs are put into the used tube, which is "default" on a new connection:

	if err = client.Use(ctx, "example_tube"); err != nil {
		// handle error
	}

	id, err := client.Put(ctx, []byte("Hello World"), beanstalk.PutParams{
		Priority: 1024,
		Delay:    2 * time.Second,
		TTR:      1 * time.Minute,
	})
	if err != nil {
		// handle error
	}

Jobs are reserved from the watched tubes:

	if _, err = client.Watch(ctx, "example_tube"); err != nil {
		// handle error
	}

	job, err := client.ReserveWithTimeout(ctx, 3*time.Second)
	switch {
	case errors.Is(err, beanstalk.ErrTimedOut):
		// no job available
	case err != nil:
		// handle error
	}

	// process job

	if err = job.Delete(ctx); err != nil {
		// handle error
	}

The client keeps track of the used and watched tubes and skips commands that
wouldn't change them. WithUsedTube and WithWatchedTube run a function while
a single tube is in use or watched and restore the previous state afterwards.

A server reply other than the expected one is returned as a *ServerError that
matches the sentinel errors of this package through errors.Is. These leave
the connection usable and the last one can be retrieved once with TakeError.
Any other error closes the connection and the client needs to Connect again.

In the above examples the beanstalk server was referenced by way of the
host:port notation. This package also supports URI formats like beanstalk:// for
a plaintext connection, and beanstalks:// or tls:// for encrypted connections.
*/
package beanstalk
