package hub_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/internal/hub"
	"github.com/nvoss/goalfeed/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type fakeSource struct {
	snapshot model.FixtureSnapshot
	err      error
	calls    int
}

func (f *fakeSource) FetchAll(ctx context.Context) (model.FixtureSnapshot, error) {
	f.calls++
	if f.err != nil {
		return model.FixtureSnapshot{}, f.err
	}
	return f.snapshot, nil
}

func TestSubscriberLifecycle(t *testing.T) {
	Convey("Given a hub", t, func() {
		ctx := context.Background()
		h := hub.New(&fakeSource{})

		Convey("When subscribers connect and disconnect", func() {
			a, err := h.Subscribe(ctx)
			So(err, ShouldBeNil)
			b, err := h.Subscribe(ctx)
			So(err, ShouldBeNil)
			So(h.Count(), ShouldEqual, 2)

			h.Unsubscribe(a.ID())

			Convey("Then the set size should track open connections", func() {
				So(h.Count(), ShouldEqual, 1)

				// Removing twice is harmless.
				h.Unsubscribe(a.ID())
				So(h.Count(), ShouldEqual, 1)

				h.Unsubscribe(b.ID())
				So(h.Count(), ShouldEqual, 0)
			})

			Convey("Then the removed subscriber's channel should be closed", func() {
				_, open := <-a.Events()
				So(open, ShouldBeFalse)
			})
		})

		Convey("When the hub is closed", func() {
			sub, err := h.Subscribe(ctx)
			So(err, ShouldBeNil)
			h.Close()

			Convey("Then existing subscribers are dropped and new ones rejected", func() {
				So(h.Count(), ShouldEqual, 0)
				_, open := <-sub.Events()
				So(open, ShouldBeFalse)

				_, err := h.Subscribe(ctx)
				So(errors.Is(err, hub.ErrHubClosed), ShouldBeTrue)
			})
		})
	})
}

func TestBroadcast(t *testing.T) {
	Convey("Given a hub with three subscribers", t, func() {
		ctx := context.Background()
		h := hub.New(&fakeSource{}, hub.WithSubscriberBuffer(4))

		subs := make([]*hub.Subscriber, 3)
		for i := range subs {
			sub, err := h.Subscribe(ctx)
			So(err, ShouldBeNil)
			subs[i] = sub
		}

		Convey("When broadcasting a frame", func() {
			ev := model.Event{Type: model.EventHeartbeat, Timestamp: time.Now()}
			attempts := h.Broadcast(ev)

			Convey("Then every subscriber gets exactly one delivery attempt", func() {
				So(attempts, ShouldEqual, 3)
				for _, sub := range subs {
					got := <-sub.Events()
					So(got.Type, ShouldEqual, model.EventHeartbeat)
				}
			})
		})

		Convey("When one subscriber's buffer is full", func() {
			// Saturate the first subscriber without draining it.
			for i := 0; i < 4; i++ {
				h.Broadcast(model.Event{Type: model.EventHeartbeat})
			}
			for _, sub := range subs[1:] {
				for i := 0; i < 4; i++ {
					<-sub.Events()
				}
			}

			attempts := h.Broadcast(model.Event{Type: model.EventRefresh})

			Convey("Then only the failed subscriber is removed", func() {
				So(attempts, ShouldEqual, 3)
				So(h.Count(), ShouldEqual, 2)

				for _, sub := range subs[1:] {
					got := <-sub.Events()
					So(got.Type, ShouldEqual, model.EventRefresh)
				}
			})
		})
	})
}

func TestBroadcastDuringChurn(t *testing.T) {
	Convey("Given broadcasts racing subscriber connect/disconnect churn", t, func() {
		ctx := context.Background()
		h := hub.New(&fakeSource{}, hub.WithSubscriberBuffer(2))

		stop := make(chan struct{})
		var wg sync.WaitGroup

		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
						h.Broadcast(model.Event{Type: model.EventHeartbeat})
					}
				}
			}()
		}

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					sub, err := h.Subscribe(ctx)
					if err != nil {
						return
					}
					h.Unsubscribe(sub.ID())
				}
			}()
		}

		time.Sleep(200 * time.Millisecond)
		close(stop)
		wg.Wait()

		Convey("Then the hub should survive and keep delivering", func() {
			sub, err := h.Subscribe(ctx)
			So(err, ShouldBeNil)
			So(h.Broadcast(model.Event{Type: model.EventHeartbeat}), ShouldEqual, 1)

			ev := <-sub.Events()
			So(ev.Type, ShouldEqual, model.EventHeartbeat)
		})
	})
}

func TestBroadcastRefresh(t *testing.T) {
	Convey("Given a hub backed by a fixture source", t, func() {
		ctx := context.Background()
		source := &fakeSource{
			snapshot: model.FixtureSnapshot{
				Active: []model.Fixture{{ID: 42, Status: model.StatusFirstHalf}},
			},
		}
		h := hub.New(source)

		sub, err := h.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("When the refresh trigger fires", func() {
			notified, err := h.BroadcastRefresh(ctx)

			Convey("Then every subscriber receives the full new snapshot", func() {
				So(err, ShouldBeNil)
				So(notified, ShouldEqual, 1)

				got := <-sub.Events()
				So(got.Type, ShouldEqual, model.EventRefresh)
				So(got.Fixtures, ShouldNotBeNil)
				So(got.Fixtures.Active, ShouldHaveLength, 1)
				So(got.Fixtures.Active[0].ID, ShouldEqual, 42)
			})
		})

		Convey("When the trigger fires twice with unchanged data", func() {
			_, err1 := h.BroadcastRefresh(ctx)
			_, err2 := h.BroadcastRefresh(ctx)

			Convey("Then each call causes one broadcast", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(source.calls, ShouldEqual, 2)

				first := <-sub.Events()
				second := <-sub.Events()
				So(first.Type, ShouldEqual, model.EventRefresh)
				So(second.Type, ShouldEqual, model.EventRefresh)
			})
		})

		Convey("When the store is unreachable", func() {
			source.err = errors.New("connection refused")
			notified, err := h.BroadcastRefresh(ctx)

			Convey("Then the trigger fails without dropping subscribers", func() {
				So(err, ShouldNotBeNil)
				So(notified, ShouldEqual, 0)
				So(h.Count(), ShouldEqual, 1)
			})
		})
	})
}

func TestBroadcastHealth(t *testing.T) {
	Convey("Given a hub with a subscriber", t, func() {
		ctx := context.Background()
		h := hub.New(&fakeSource{})
		sub, err := h.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("When a health snapshot is pushed", func() {
			h.BroadcastHealth(model.HealthSnapshot{Status: model.HealthDegraded})

			Convey("Then subscribers receive a health frame", func() {
				got := <-sub.Events()
				So(got.Type, ShouldEqual, model.EventHealth)
				So(got.Health, ShouldNotBeNil)
				So(got.Health.Status, ShouldEqual, model.HealthDegraded)
			})
		})
	})
}
