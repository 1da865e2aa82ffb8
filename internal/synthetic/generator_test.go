package synthetic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	synthetic "github.com/synheart/emotion-go/internal/synthetic"
)

func TestScenarioByName(t *testing.T) {
	Convey("Given the predefined scenarios", t, func() {
		Convey("When resolving a known name", func() {
			s, ok := synthetic.ScenarioByName("Stressed")

			Convey("Then the scenario should match", func() {
				So(ok, ShouldBeTrue)
				So(s.HRMean, ShouldEqual, 85)
				So(s.RRMeanMS, ShouldEqual, 705)
			})
		})

		Convey("When resolving an unknown name", func() {
			_, ok := synthetic.ScenarioByName("Bored")

			Convey("Then the lookup should fail", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		gen := synthetic.NewGenerator(synthetic.Calm,
			synthetic.WithSeed(42),
			synthetic.WithSubject("test-subject"),
			synthetic.WithInterval(2*time.Second),
		)

		Convey("When generating samples", func() {
			first := gen.Next()
			second := gen.Next()

			Convey("Then samples should be physiologically plausible", func() {
				So(first.HR, ShouldBeGreaterThan, 30)
				So(first.HR, ShouldBeLessThan, 120)
				So(len(first.RRIntervalsMS), ShouldBeGreaterThanOrEqualTo, 1)
				for _, rr := range first.RRIntervalsMS {
					So(rr, ShouldBeBetweenOrEqual, 300, 2000)
				}
			})

			Convey("And samples should carry identity and motion", func() {
				So(first.SampleID, ShouldNotBeEmpty)
				So(first.SampleID, ShouldNotEqual, second.SampleID)
				So(first.SubjectID, ShouldEqual, "test-subject")
				So(first.Motion, ShouldContainKey, "acc_mag")
			})

			Convey("And a 2s interval at calm pace should carry two beats", func() {
				So(len(first.RRIntervalsMS), ShouldEqual, 2)
			})
		})

		Convey("When re-seeding with the same seed", func() {
			again := synthetic.NewGenerator(synthetic.Calm,
				synthetic.WithSeed(42),
				synthetic.WithSubject("test-subject"),
				synthetic.WithInterval(2*time.Second),
			)

			a := gen.Next()
			b := again.Next()

			Convey("Then the HR stream should be reproducible", func() {
				// Sample IDs differ (random UUIDs) but the signal repeats.
				So(b.HR, ShouldEqual, a.HR)
				So(b.RRIntervalsMS, ShouldResemble, a.RRIntervalsMS)
				So(again.Next().HR, ShouldEqual, gen.Next().HR)
			})
		})
	})
}

func TestStreamer(t *testing.T) {
	Convey("Given a streamer pointed at a test server", t, func() {
		var received int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			atomic.AddInt64(&received, 1)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		gen := synthetic.NewGenerator(synthetic.Amused, synthetic.WithSeed(7))
		streamer := synthetic.NewStreamer(srv.URL+"/samples", gen)

		Convey("When streaming for a short duration", func() {
			accepted, err := streamer.Run(context.Background(), 10*time.Millisecond, 100*time.Millisecond)

			Convey("Then samples should reach the server", func() {
				So(err, ShouldBeNil)
				So(accepted, ShouldBeGreaterThan, 0)
				So(atomic.LoadInt64(&received), ShouldEqual, int64(accepted))
			})
		})

		Convey("When the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := streamer.Run(ctx, 10*time.Millisecond, time.Second)

			Convey("Then the run should stop with the context error", func() {
				So(err, ShouldEqual, context.Canceled)
			})
		})
	})
}
