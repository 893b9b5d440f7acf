package consumer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvoss/goalfeed/internal/domain/model"
)

func TestApplyOrdering(t *testing.T) {
	Convey("Given a consumer whose stream frame has already loaded", t, func() {
		c := New("http://example.test")
		streamSnap := model.FixtureSnapshot{Active: []model.Fixture{{ID: 1}}}
		prefetchSnap := model.FixtureSnapshot{Active: []model.Fixture{{ID: 2}}}

		c.apply(streamSnap, false)

		Convey("When a slower prefetch result arrives afterwards", func() {
			c.apply(prefetchSnap, true)

			Convey("Then the stream frame should win", func() {
				snap, ok := c.Snapshot()
				So(ok, ShouldBeTrue)
				So(snap.Active[0].ID, ShouldEqual, 1)
			})
		})

		Convey("When a forced refetch arrives afterwards", func() {
			c.apply(prefetchSnap, false)

			Convey("Then it should replace the loaded snapshot", func() {
				snap, ok := c.Snapshot()
				So(ok, ShouldBeTrue)
				So(snap.Active[0].ID, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a consumer with no data yet", t, func() {
		c := New("http://example.test")
		prefetchSnap := model.FixtureSnapshot{Active: []model.Fixture{{ID: 3}}}

		Convey("When the prefetch arrives first", func() {
			c.apply(prefetchSnap, true)

			Convey("Then it should install and end the loading phase", func() {
				snap, ok := c.Snapshot()
				So(ok, ShouldBeTrue)
				So(snap.Active[0].ID, ShouldEqual, 3)

				select {
				case <-c.ready:
				default:
					So("ready not closed after first apply", ShouldBeEmpty)
				}
			})
		})
	})
}
