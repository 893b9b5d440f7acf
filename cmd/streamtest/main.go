package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/nvoss/goalfeed/internal/streamtest"
	"github.com/nvoss/goalfeed/pkg/logger"
)

// Default configuration constants.
const (
	defaultSubscribers = 25
	defaultRefreshes   = 10
	defaultSettleDelay = 2 * time.Second
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:4100", "Base URL of the service")
		subscribers = flag.Int("subscribers", defaultSubscribers, "Number of concurrent SSE subscribers")
		refreshes   = flag.Int("refreshes", defaultRefreshes, "Number of refresh triggers to fire")
		settle      = flag.Duration("settle", defaultSettleDelay, "Wait after the last trigger before verifying")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	report, err := streamtest.Run(ctx, &streamtest.Config{
		BaseURL:     *baseURL,
		Subscribers: *subscribers,
		Refreshes:   *refreshes,
		SettleDelay: *settle,
		Timeout:     *timeout,
	})
	if err != nil {
		os.Stderr.WriteString("soak test failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	os.Stdout.WriteString(report.String())
	if !report.OK() {
		os.Exit(1)
	}
}
