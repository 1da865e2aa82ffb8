// Command synthetic-stream posts generated HRV samples to a running
// emotion service, one scenario at a time. It exists for local development
// and smoke tests against a live deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/synheart/emotion-go/internal/synthetic"
	"github.com/synheart/emotion-go/pkg/logger"
)

// Default configuration constants.
const (
	defaultRate     = time.Second
	defaultDuration = time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		scenario = flag.String("scenario", "Calm", "Scenario to stream: Calm, Stressed, or Amused")
		rate     = flag.Duration("rate", defaultRate, "Interval between samples")
		duration = flag.Duration("duration", defaultDuration, "How long to stream")
		seed     = flag.Int64("seed", 0, "Random seed (0 uses the current time)")
		subject  = flag.String("subject", "synthetic", "Subject ID stamped on samples")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	sc, ok := synthetic.ScenarioByName(*scenario)
	if !ok {
		names := make([]string, 0, len(synthetic.Scenarios()))
		for _, s := range synthetic.Scenarios() {
			names = append(names, s.Name)
		}
		os.Stderr.WriteString("unknown scenario " + *scenario +
			"; expected one of " + strings.Join(names, ", ") + "\n")
		os.Exit(1)
	}

	genOpts := []synthetic.GeneratorOption{
		synthetic.WithSubject(*subject),
		synthetic.WithInterval(*rate),
	}
	if *seed != 0 {
		genOpts = append(genOpts, synthetic.WithSeed(*seed))
	}
	gen := synthetic.NewGenerator(sc, genOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamer := synthetic.NewStreamer(*baseURL+"/samples", gen)
	accepted, err := streamer.Run(ctx, *rate, *duration)
	if err != nil && ctx.Err() == nil {
		os.Stderr.WriteString("stream failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("streamed %d %s samples to %s\n", accepted, sc.Name, *baseURL)
}
