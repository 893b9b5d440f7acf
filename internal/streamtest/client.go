package streamtest

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nvoss/goalfeed/internal/domain/model"
)

// streamClient is a minimal SSE reader that counts frames per type and
// records whether the first frame was the initial snapshot.
type streamClient struct {
	mu           sync.Mutex
	counts       map[model.EventType]int
	firstType    model.EventType
	sawFirst     bool
	disconnected bool
}

func newStreamClient() *streamClient {
	return &streamClient{counts: make(map[model.EventType]int)}
}

// run consumes the stream until ctx is done or the server closes it.
func (sc *streamClient) run(ctx context.Context, hc *http.Client, baseURL string, connected chan<- struct{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/stream", nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := hc.Do(req)
	if err != nil {
		sc.markDisconnected()
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		sc.markDisconnected()
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	connected <- struct{}{}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 16<<20)
	var data []byte
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(data) > 0 {
				sc.record(data)
				data = nil
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(payload, " ")...)
		}
	}
	sc.markDisconnected()
	return scanner.Err()
}

func (sc *streamClient) record(data []byte) {
	ev, err := model.DecodeEvent(data)
	if err != nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.sawFirst {
		sc.sawFirst = true
		sc.firstType = ev.Type
	}
	sc.counts[ev.Type]++
}

func (sc *streamClient) markDisconnected() {
	sc.mu.Lock()
	sc.disconnected = true
	sc.mu.Unlock()
}

func (sc *streamClient) summary() clientSummary {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	counts := make(map[model.EventType]int, len(sc.counts))
	for k, v := range sc.counts {
		counts[k] = v
	}
	return clientSummary{
		Counts:       counts,
		FirstType:    sc.firstType,
		SawFirst:     sc.sawFirst,
		Disconnected: sc.disconnected,
	}
}

type clientSummary struct {
	Counts       map[model.EventType]int
	FirstType    model.EventType
	SawFirst     bool
	Disconnected bool
}
