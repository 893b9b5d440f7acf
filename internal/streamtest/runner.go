package streamtest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/nvoss/goalfeed/pkg/logger"
)

// Run executes the complete stream soak test.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Get().Named("streamtest")
	log.Info(ctx, "starting stream soak test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("subscribers", config.Subscribers),
		logger.Int("refreshes", config.Refreshes),
	)

	hc := &http.Client{Timeout: config.Timeout}
	streamHC := &http.Client{} // stream connections must not time out

	if err := checkServiceHealth(ctx, hc, config.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Connect the subscriber fleet and wait until every stream is open.
	streamCtx, stopStreams := context.WithCancel(ctx)
	defer stopStreams()

	clients := make([]*streamClient, config.Subscribers)
	connected := make(chan struct{}, config.Subscribers)
	for i := range clients {
		clients[i] = newStreamClient()
		go func(sc *streamClient) {
			_ = sc.run(streamCtx, streamHC, config.BaseURL, connected)
		}(clients[i])
	}
	for i := 0; i < config.Subscribers; i++ {
		select {
		case <-connected:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	log.Info(ctx, "all subscribers connected")

	// Fire the refresh triggers and collect the notified counts.
	notified := make([]int, 0, config.Refreshes)
	for i := 0; i < config.Refreshes; i++ {
		n, err := triggerRefresh(ctx, hc, config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("refresh trigger %d failed: %w", i+1, err)
		}
		notified = append(notified, n)
	}

	log.Info(ctx, "waiting for frames to settle")
	select {
	case <-time.After(config.SettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	stopStreams()

	report := buildReport(config, clients, notified)
	return report, nil
}

func checkServiceHealth(ctx context.Context, hc *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func triggerRefresh(ctx context.Context, hc *http.Client, baseURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/refresh", nil)
	if err != nil {
		return 0, fmt.Errorf("build refresh request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("refresh returned %d", resp.StatusCode)
	}

	var body struct {
		Success         bool `json:"success"`
		ClientsNotified int  `json:"clientsNotified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode refresh response: %w", err)
	}
	if !body.Success {
		return 0, fmt.Errorf("refresh reported failure")
	}
	return body.ClientsNotified, nil
}
