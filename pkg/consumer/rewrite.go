package consumer

import (
	"strings"

	"github.com/nvoss/goalfeed/internal/domain/model"
)

// RewriteSnapshot returns a copy of the snapshot with every store-relative
// video reference rewritten to an absolute URL routed through the video
// proxy. The transform is pure and applied to every inbound snapshot
// (initial, refresh or prefetch) before it is handed to consumers.
func RewriteSnapshot(s model.FixtureSnapshot, proxyBase string) model.FixtureSnapshot {
	if proxyBase == "" {
		return s
	}
	base := strings.TrimSuffix(proxyBase, "/")
	return model.FixtureSnapshot{
		Staging:   rewriteFixtures(s.Staging, base),
		Active:    rewriteFixtures(s.Active, base),
		Completed: rewriteFixtures(s.Completed, base),
	}
}

func rewriteFixtures(fixtures []model.Fixture, base string) []model.Fixture {
	if len(fixtures) == 0 {
		return fixtures
	}
	out := make([]model.Fixture, len(fixtures))
	copy(out, fixtures)
	for i := range out {
		if len(out[i].Events) == 0 {
			continue
		}
		events := make([]model.GoalEvent, len(out[i].Events))
		copy(events, out[i].Events)
		for j := range events {
			if len(events[j].Videos) == 0 {
				continue
			}
			videos := make([]model.RankedVideo, len(events[j].Videos))
			copy(videos, events[j].Videos)
			for k := range videos {
				videos[k].URL = proxyURL(base, videos[k].Bucket, videos[k].Path)
			}
			events[j].Videos = videos
		}
		out[i].Events = events
	}
	return out
}

func proxyURL(base, bucket, path string) string {
	if bucket == "" || path == "" {
		return ""
	}
	return base + "/video/" + bucket + "/" + strings.TrimPrefix(path, "/")
}
