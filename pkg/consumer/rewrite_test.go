package consumer_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/consumer"
)

func TestRewriteSnapshot(t *testing.T) {
	Convey("Given a snapshot carrying store-relative video references", t, func() {
		snap := model.FixtureSnapshot{
			Active: []model.Fixture{{
				ID: 7,
				Events: []model.GoalEvent{{
					Scorer: "Saka",
					Minute: 23,
					Videos: []model.RankedVideo{
						{Bucket: "goal-clips", Path: "2026/7/goal1.mp4", Rank: 1},
						{Bucket: "goal-clips", Path: "/2026/7/goal1-alt.mp4", Rank: 2},
					},
				}},
			}},
			Completed: []model.Fixture{{ID: 8}},
		}

		Convey("When rewritten against a proxy base", func() {
			out := consumer.RewriteSnapshot(snap, "http://edge.example:4100/")

			Convey("Then every video URL should route through the proxy", func() {
				videos := out.Active[0].Events[0].Videos
				So(videos[0].URL, ShouldEqual, "http://edge.example:4100/video/goal-clips/2026/7/goal1.mp4")
				So(videos[1].URL, ShouldEqual, "http://edge.example:4100/video/goal-clips/2026/7/goal1-alt.mp4")
			})

			Convey("Then non-video fields should survive untouched", func() {
				So(out.Active[0].ID, ShouldEqual, 7)
				So(out.Active[0].Events[0].Scorer, ShouldEqual, "Saka")
				So(out.Completed, ShouldHaveLength, 1)
			})

			Convey("Then the input snapshot should not be mutated", func() {
				So(snap.Active[0].Events[0].Videos[0].URL, ShouldBeEmpty)
			})
		})

		Convey("When a video lacks a bucket or path", func() {
			broken := model.FixtureSnapshot{Active: []model.Fixture{{
				Events: []model.GoalEvent{{Videos: []model.RankedVideo{{Bucket: "", Path: "x.mp4"}}}},
			}}}
			out := consumer.RewriteSnapshot(broken, "http://edge.example:4100")

			Convey("Then the URL should be cleared rather than half-built", func() {
				So(out.Active[0].Events[0].Videos[0].URL, ShouldBeEmpty)
			})
		})

		Convey("When the proxy base is empty", func() {
			out := consumer.RewriteSnapshot(snap, "")

			Convey("Then the snapshot should pass through unchanged", func() {
				So(out.Active[0].Events[0].Videos[0].URL, ShouldBeEmpty)
			})
		})
	})
}
