package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("hrv"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithMetricsEnabled(false),
				WithPrometheusRegistry(registry),
			)

			Convey("Then nothing should be registered", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldBeEmpty)
			})
		})
	})
}

func TestRecordingHelpers(t *testing.T) {
	Convey("Given the default manager", t, func() {
		Convey("When recording through the package-level helpers", func() {
			Convey("Then none of them should panic", func() {
				So(func() {
					RecordSampleReceived("http")
					RecordSampleDropped("invalid_hr")
					RecordResultEmitted("Calm")
					RecordTickSkipped("throttled")
					RecordInferenceError()
					RecordInferenceLatency(1.2)
					UpdateBufferSamples(10)
					UpdateBufferRRTotal(120)
					UpdateQueueSize(3)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.03)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(2)
					UpdateHistorySize(5)
					RecordResultPublished()
					RecordPublishError()
					RecordHTTPRequest("samples", "POST", "202")
					RecordHTTPRequestDuration("samples", "POST", "202", 0.8)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering from the default registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then the emission counters should be present", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["synheart_emotion_results_emitted_total"], ShouldBeTrue)
				So(names["synheart_emotion_samples_dropped_total"], ShouldBeTrue)
			})
		})
	})
}
