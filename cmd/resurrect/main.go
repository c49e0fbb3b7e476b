package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	beanstalk "github.com/yellow1912/swbeanstalk"
)

var (
	configPath  = flag.String("config", "", "Path to a TOML configuration file")
	debug       = flag.Bool("debug", false, "Log all traffic to and from the beanstalk server")
	help        = flag.Bool("help", false, "Display usage information")
	tube        = flag.String("tube", "", "The tube to operate on. The default is all tubes")
	uri         = flag.String("uri", "", "The URI of the beanstalk server")
	connTimeout = flag.Duration("timeout", 0, "The read and write timeout of a single command")
)

// delete all the buried jobs in the specified tubes.
func delete(ctx context.Context, log zerolog.Logger, client *beanstalk.Client, tubes []beanstalk.TubeStats) error {
	for _, tube := range tubes {
		log.Info().Str("tube", tube.Name).Msg("Deleting buried jobs")

		var count int
		for {
			job, err := client.PeekBuriedInTube(ctx, tube.Name)
			if errors.Is(err, beanstalk.ErrNotFound) {
				break
			}
			if err != nil {
				return err
			}

			if err = job.Delete(ctx); err != nil {
				if !errors.Is(err, beanstalk.ErrNotFound) {
					return err
				}

				log.Warn().Uint64("id", job.ID).Msg("Unable to delete job")
				continue
			}

			count++
		}

		log.Info().Str("tube", tube.Name).Int("count", count).Msg("Deleted buried jobs")
	}

	return nil
}

// kick all the buried jobs in the specified tubes.
func kick(ctx context.Context, log zerolog.Logger, client *beanstalk.Client, tubes []beanstalk.TubeStats) error {
	for _, tube := range tubes {
		log.Info().Str("tube", tube.Name).Msg("Kicking buried jobs")

		count, err := client.KickTube(ctx, tube.Name, int(tube.BuriedJobs))
		if err != nil {
			return err
		}

		log.Info().Str("tube", tube.Name).Int("count", count).Msg("Kicked buried jobs")
	}

	return nil
}

// buriedTubes returns the stats of the tubes that have buried jobs.
func buriedTubes(ctx context.Context, client *beanstalk.Client, tubeName string) ([]beanstalk.TubeStats, int, error) {
	var tubeNames []string
	if tubeName == "" {
		var err error
		if tubeNames, err = client.ListTubes(ctx); err != nil {
			return nil, 0, fmt.Errorf("fetch tube names: %w", err)
		}

		sort.Strings(tubeNames)
	} else {
		tubeNames = []string{tubeName}
	}

	var tubes []beanstalk.TubeStats
	for _, name := range tubeNames {
		stats, err := client.TubeStats(ctx, name)
		switch {
		case err != nil:
			return nil, 0, fmt.Errorf("fetch tube stats of %s: %w", name, err)
		case stats.BuriedJobs == 0:
			continue
		}

		tubes = append(tubes, stats)
	}

	return tubes, len(tubeNames), nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func clientConfig(cfg config, log zerolog.Logger) beanstalk.Config {
	clientCfg := beanstalk.Config{
		ConnTimeout: cfg.ConnTimeout,
		DialTimeout: cfg.DialTimeout,
		InfoFunc: func(message string) {
			log.Info().Msg(message)
		},
		ErrorFunc: func(err error, message string) {
			log.Error().Err(err).Msg(message)
		},
	}

	if cfg.Debug {
		clientCfg.DebugFunc = func(out bool, data []byte) {
			direction := "recv"
			if out {
				direction = "send"
			}

			log.Debug().Str("direction", direction).Bytes("data", data).Msg("wire")
		}
	}

	return clientCfg
}

func main() {
	flag.Usage = func() {
		fmt.Printf("Usage: %s [flags] [command]\n\n", os.Args[0])
		fmt.Println("Delete or kick buried jobs on your beanstalk servers.")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		fmt.Println("\nCommands:")
		fmt.Println("  delete    Delete one or more buried jobs")
		fmt.Println("  info      Show the number of buried jobs per tube (default)")
		fmt.Println("  kick      Kick one or more jobs back to the ready queue")
		fmt.Println("")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	var command string
	switch flag.Arg(0) {
	case "delete", "kick", "info":
		command = flag.Arg(0)
	case "":
		command = "info"
	default:
		_, _ = fmt.Fprintf(os.Stderr, "%s: invalid command\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath, cfg); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Explicitly set flags take precedence over the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "uri":
			cfg.URI = *uri
		case "tube":
			cfg.Tube = *tube
		case "timeout":
			cfg.ConnTimeout = *connTimeout
		case "debug":
			cfg.Debug = *debug
		}
	})

	log := newLogger(cfg.Debug)

	// Create a connection to the beanstalk server.
	client, err := beanstalk.Dial(cfg.URI, clientConfig(cfg, log))
	if err != nil {
		log.Fatal().Err(err).Str("uri", cfg.URI).Msg("Unable to connect")
	}
	defer client.Close()

	ctx := context.Background()

	tubes, total, err := buriedTubes(ctx, client, cfg.Tube)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to inspect tubes")
	}

	if len(tubes) == 0 {
		log.Info().Msgf("%d tubes found, but none have buried jobs", total)
		return
	}

	switch command {
	case "delete":
		if err = delete(ctx, log, client, tubes); err != nil {
			log.Fatal().Err(err).Msg("Error deleting jobs")
		}

	case "info":
		for _, tube := range tubes {
			log.Info().Str("tube", tube.Name).Int64("buried", tube.BuriedJobs).Msg("Buried jobs")
		}

	case "kick":
		if err = kick(ctx, log, client, tubes); err != nil {
			log.Fatal().Err(err).Msg("Error kicking jobs")
		}
	}
}
