package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording ingestion metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordReadingReceived("trough-1")
					RecordReadingRejected("trough-1", "stale")
					RecordReadingDropped()
					RecordRecordLatency(1.5)
					RecordDayRollover("trough-1")
					UpdateCumulativeConsumption("trough-1", 1250)
					UpdateSeriesLength("trough-1", 42)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording persistence and query metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordPersistWrite()
					RecordPersistError()
					RecordQuery("memory")
					RecordQuery("store")
					RecordQueryLatency(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording prediction metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordPrediction("Healthy")
					RecordPredictionError("client")
					RecordPredictionError("classifier")
					RecordArchiveError()
					RecordClassifyLatency(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					UpdateQueueSize(3)
					UpdateQueueCapacity(1024)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueFullDrop()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordHTTPRequest("predict", "POST", "200")
					RecordHTTPRequestDuration("predict", "POST", "200", 4.2)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When fetching it", func() {
			registry := GetRegistry()

			Convey("Then it should not be nil", func() {
				So(registry, ShouldNotBeNil)
			})
		})
	})
}
