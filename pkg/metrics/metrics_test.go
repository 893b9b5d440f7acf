package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "goalfeed")
				So(manager.subsystem, ShouldEqual, "stream")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording stream metrics", func() {
			So(func() {
				UpdateConnectedClients(3)
				RecordBroadcast("refresh")
				RecordDroppedSubscribers(1)
				RecordRefreshTrigger()
			}, ShouldNotPanic)
		})

		Convey("When recording store and proxy metrics", func() {
			So(func() {
				RecordStoreFetchLatency(12.5)
				RecordStoreError()
				RecordProxyRequest("inline", "206")
				RecordProxyBytes(1024)
			}, ShouldNotPanic)
		})

		Convey("When updating health gauges", func() {
			So(func() {
				UpdateDependencyUp("document_store", true)
				UpdateDependencyUp("object_store", false)
				UpdateOverallHealth("degraded")
			}, ShouldNotPanic)
		})

		Convey("Then the registry should be available", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
