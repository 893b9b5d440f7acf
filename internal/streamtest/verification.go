package streamtest

import (
	"fmt"
	"strings"

	"github.com/nvoss/goalfeed/internal/domain/model"
)

// Report aggregates what the subscriber fleet observed.
type Report struct {
	Subscribers     int
	Refreshes       int
	NotifiedCounts  []int
	InitialFirst    int
	RefreshComplete int
	Disconnected    int
	Problems        []string
}

// buildReport checks every client's observations against the delivery
// contract: initial before anything else, and one refresh frame per trigger
// for clients that stayed connected.
func buildReport(config *Config, clients []*streamClient, notified []int) *Report {
	r := &Report{
		Subscribers:    config.Subscribers,
		Refreshes:      config.Refreshes,
		NotifiedCounts: notified,
	}

	for i, sc := range clients {
		s := sc.summary()
		if s.Disconnected {
			r.Disconnected++
		}
		if !s.SawFirst {
			r.Problems = append(r.Problems, fmt.Sprintf("client %d received no frames", i))
			continue
		}
		if s.FirstType == model.EventInitial || s.FirstType == model.EventError {
			r.InitialFirst++
		} else {
			r.Problems = append(r.Problems, fmt.Sprintf("client %d saw %q before initial", i, s.FirstType))
		}
		if s.Counts[model.EventRefresh] == config.Refreshes {
			r.RefreshComplete++
		} else if !s.Disconnected {
			r.Problems = append(r.Problems,
				fmt.Sprintf("client %d saw %d/%d refresh frames", i, s.Counts[model.EventRefresh], config.Refreshes))
		}
	}

	for i, n := range notified {
		if n != config.Subscribers {
			r.Problems = append(r.Problems,
				fmt.Sprintf("trigger %d notified %d of %d subscribers", i+1, n, config.Subscribers))
		}
	}
	return r
}

// OK reports whether the run satisfied the delivery contract.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// String renders a human-readable summary.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "subscribers:        %d\n", r.Subscribers)
	fmt.Fprintf(&b, "refresh triggers:   %d\n", r.Refreshes)
	fmt.Fprintf(&b, "initial-first:      %d/%d\n", r.InitialFirst, r.Subscribers)
	fmt.Fprintf(&b, "complete refreshes: %d/%d\n", r.RefreshComplete, r.Subscribers)
	fmt.Fprintf(&b, "disconnected:       %d\n", r.Disconnected)
	if r.OK() {
		b.WriteString("result: PASS\n")
	} else {
		b.WriteString("result: FAIL\n")
		for _, p := range r.Problems {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	return b.String()
}
