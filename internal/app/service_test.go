package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvoss/goalfeed/internal/adapters/objstore"
	service "github.com/nvoss/goalfeed/internal/app"
	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type fakeStore struct {
	snapshot model.FixtureSnapshot
	pingErr  error
	closed   bool
}

func (f *fakeStore) FetchAll(ctx context.Context) (model.FixtureSnapshot, error) {
	return f.snapshot, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeObjects struct {
	pingErr error
}

func (f *fakeObjects) Stat(ctx context.Context, bucket, path string) (objstore.ObjectInfo, error) {
	return objstore.ObjectInfo{}, objstore.ErrObjectNotFound
}

func (f *fakeObjects) Open(ctx context.Context, bucket, path string, offset, length int64) (io.ReadCloser, error) {
	return nil, objstore.ErrObjectNotFound
}

func (f *fakeObjects) Ping(ctx context.Context) error { return f.pingErr }

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service over fake stores", t, func() {
		ctx := context.Background()
		store := &fakeStore{
			snapshot: model.FixtureSnapshot{
				Active: []model.Fixture{{ID: 11, Status: model.StatusHalfTime}},
			},
		}
		svc := service.New(
			service.WithStore(store),
			service.WithObjectStore(&fakeObjects{}),
			service.WithProbeInterval(time.Hour),
		)

		Convey("When the service starts", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then fixture reads should pass through to the store", func() {
				snap, err := svc.FetchAll(ctx)
				So(err, ShouldBeNil)
				So(snap.Active[0].ID, ShouldEqual, 11)
			})

			Convey("Then subscribe, refresh and unsubscribe should work end to end", func() {
				sub, err := svc.Subscribe(ctx)
				So(err, ShouldBeNil)
				So(svc.ConnectedClients(), ShouldEqual, 1)

				notified, err := svc.Refresh(ctx)
				So(err, ShouldBeNil)
				So(notified, ShouldEqual, 1)

				ev := <-sub.Events()
				So(ev.Type, ShouldEqual, model.EventRefresh)

				svc.Unsubscribe(sub.ID())
				So(svc.ConnectedClients(), ShouldEqual, 0)
			})

			Convey("Then the prober should converge on a health snapshot", func() {
				ok := false
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					if svc.LatestHealth().Status == model.HealthHealthy {
						ok = true
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(ok, ShouldBeTrue)
			})

			Convey("Then stats should reflect the running state", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats, ShouldContainKey, "connectedClients")
			})

			Convey("Then starting twice should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When the service stops", func() {
			So(svc.Start(ctx), ShouldBeNil)
			sub, err := svc.Subscribe(ctx)
			So(err, ShouldBeNil)

			svc.Stop()

			Convey("Then subscribers are dropped and the store is closed", func() {
				_, open := <-sub.Events()
				So(open, ShouldBeFalse)
				So(store.closed, ShouldBeTrue)

				// Stopping again is harmless.
				svc.Stop()
			})
		})
	})
}
