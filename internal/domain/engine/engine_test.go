package engine_test

import (
	"context"
	"testing"
	"time"

	engine "github.com/synheart/emotion-go/internal/domain/engine"
	inference "github.com/synheart/emotion-go/internal/domain/inference"
	model "github.com/synheart/emotion-go/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClock drives the engine's wall clock deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func sampleAt(ts time.Time, hr float64, rr []float64) model.Sample {
	return model.Sample{HR: hr, RRIntervalsMS: rr, Timestamp: ts}
}

// steadyRR returns n plausible RR intervals without artifacts.
func steadyRR(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 800 + float64(i%5)*10
	}
	return out
}

func newTestEngine(clk *fakeClock, opts ...engine.Option) *engine.Engine {
	base := []engine.Option{
		engine.WithClock(clk.now),
		engine.WithWindow(60 * time.Second),
		engine.WithStep(5 * time.Second),
		engine.WithMinRRCount(30),
	}
	e, err := engine.New(inference.DefaultModel(), append(base, opts...)...)
	So(err, ShouldBeNil)
	return e
}

func TestNew(t *testing.T) {
	Convey("Given engine construction", t, func() {
		Convey("When the model exposes the core HRV features", func() {
			e, err := engine.New(inference.DefaultModel())
			So(err, ShouldBeNil)
			So(e, ShouldNotBeNil)
		})

		Convey("When the model is nil", func() {
			_, err := engine.New(nil)
			So(err, ShouldNotBeNil)
		})

		Convey("When the model lacks a core feature", func() {
			m, err := inference.NewLinearModel(inference.Params{
				ModelID:      "partial",
				Version:      "1",
				Labels:       []string{"a", "b"},
				FeatureNames: []string{"hr_mean", "sdnn"},
				Weights:      [][]float64{{0, 0}, {0, 0}},
				Biases:       []float64{0, 0},
			})
			So(err, ShouldBeNil)

			_, err = engine.New(m)

			Convey("Then construction should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestPushValidation(t *testing.T) {
	Convey("Given an engine", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk)
		ctx := context.Background()

		Convey("When pushing a sample with out-of-range HR", func() {
			e.Push(ctx, sampleAt(clk.t, 0, steadyRR(5)))
			e.Push(ctx, sampleAt(clk.t, -10, steadyRR(5)))
			e.Push(ctx, sampleAt(clk.t, 350, steadyRR(5)))

			Convey("Then the samples should be dropped silently", func() {
				So(e.BufferStats(ctx).SampleCount, ShouldEqual, 0)
			})
		})

		Convey("When pushing a sample with empty RR intervals", func() {
			e.Push(ctx, sampleAt(clk.t, 72, nil))

			Convey("Then the sample should be dropped silently", func() {
				So(e.BufferStats(ctx).SampleCount, ShouldEqual, 0)
			})
		})

		Convey("When pushing a valid sample", func() {
			e.Push(ctx, sampleAt(clk.t, 72, steadyRR(3)))

			Convey("Then it should be buffered", func() {
				stats := e.BufferStats(ctx)
				So(stats.SampleCount, ShouldEqual, 1)
				So(stats.RRCount, ShouldEqual, 3)
			})
		})
	})
}

func TestWindowEviction(t *testing.T) {
	Convey("Given an engine with a 60s window", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk)
		ctx := context.Background()

		Convey("When a sample ages past the window", func() {
			e.Push(ctx, sampleAt(clk.t, 70, steadyRR(5)))
			So(e.BufferStats(ctx).SampleCount, ShouldEqual, 1)

			clk.advance(61 * time.Second)
			e.Push(ctx, sampleAt(clk.t, 75, steadyRR(5)))

			Convey("Then the stale sample should be evicted on the next push", func() {
				stats := e.BufferStats(ctx)
				So(stats.SampleCount, ShouldEqual, 1)
				So(stats.HRMin, ShouldEqual, 75)
			})
		})

		Convey("When eviction uses wall-clock time rather than sample time", func() {
			// Backdated pushes still get trimmed against the real clock.
			e.Push(ctx, sampleAt(clk.t.Add(-2*time.Minute), 70, steadyRR(5)))

			Convey("Then the stale sample never survives the push-time trim", func() {
				So(e.BufferStats(ctx).SampleCount, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an engine with a hard sample cap", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk, engine.WithMaxBufferSamples(3))
		ctx := context.Background()

		Convey("When pushing more samples than the cap", func() {
			for i := 0; i < 10; i++ {
				e.Push(ctx, sampleAt(clk.t, 70+float64(i), steadyRR(2)))
			}

			Convey("Then only the newest samples should be retained", func() {
				stats := e.BufferStats(ctx)
				So(stats.SampleCount, ShouldEqual, 3)
				So(stats.HRMin, ShouldEqual, 77)
			})
		})
	})
}

func TestConsumeReady(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine with buffered data", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk)

		push := func(n, rrPerSample int) {
			for i := 0; i < n; i++ {
				e.Push(ctx, sampleAt(clk.t, 70+float64(i%6), steadyRR(rrPerSample)))
				clk.advance(time.Second)
			}
		}

		Convey("When enough samples and RR intervals are buffered", func() {
			push(5, 10)
			results := e.ConsumeReady(ctx)

			Convey("Then exactly one result should be emitted", func() {
				So(len(results), ShouldEqual, 1)
				r := results[0]
				So(r.Emotion, ShouldBeIn, []string{"Amused", "Calm", "Stressed"})
				So(r.Confidence, ShouldBeGreaterThan, 0)
				So(r.ModelID, ShouldEqual, "wesad_emotion_v1_0")
				So(r.ID, ShouldNotBeEmpty)

				sum := 0.0
				for _, p := range r.Probabilities {
					sum += p
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-3)

				So(r.Features["hr_mean"], ShouldBeGreaterThan, 0)
				So(e.LastSkip(), ShouldEqual, engine.SkipNone)
			})

			Convey("And a second call inside the step interval should be throttled", func() {
				clk.advance(2 * time.Second)
				So(e.ConsumeReady(ctx), ShouldBeEmpty)
				So(e.LastSkip(), ShouldEqual, engine.SkipThrottled)
			})

			Convey("And a call after the step interval should emit again", func() {
				clk.advance(6 * time.Second)
				push(2, 10)
				So(len(e.ConsumeReady(ctx)), ShouldEqual, 1)
			})
		})

		Convey("When the buffer holds fewer than two samples", func() {
			push(1, 40)

			Convey("Then no result should be emitted", func() {
				So(e.ConsumeReady(ctx), ShouldBeEmpty)
				So(e.LastSkip(), ShouldEqual, engine.SkipTooFewSamples)
			})
		})

		Convey("When the aggregated RR count is below the minimum", func() {
			// A single interval per sample stays far below the default 30,
			// no matter how much time elapses.
			push(5, 1)
			clk.advance(time.Minute / 2)

			Convey("Then no result should be emitted regardless of elapsed time", func() {
				So(e.ConsumeReady(ctx), ShouldBeEmpty)
				So(e.LastSkip(), ShouldEqual, engine.SkipTooFewRR)
			})
		})
	})

	Convey("Given an engine with an HR baseline", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk, engine.WithHRBaseline(10))

		Convey("When a result is emitted", func() {
			for i := 0; i < 5; i++ {
				e.Push(ctx, sampleAt(clk.t, 70, steadyRR(10)))
				clk.advance(time.Second)
			}
			results := e.ConsumeReady(ctx)

			Convey("Then hr_mean should carry the baseline subtraction", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].Features["hr_mean"], ShouldAlmostEqual, 60.0, 1e-9)
			})
		})
	})

	Convey("Given an engine with label priors", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk, engine.WithPriors(map[string]float64{
			"Calm":     10.0,
			"Stressed": 0.01,
			"Amused":   0.01,
		}))

		Convey("When a result is emitted", func() {
			for i := 0; i < 5; i++ {
				e.Push(ctx, sampleAt(clk.t, 72, steadyRR(10)))
				clk.advance(time.Second)
			}
			results := e.ConsumeReady(ctx)

			Convey("Then a dominant prior should decide the label", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].Emotion, ShouldEqual, "Calm")
			})

			Convey("And the reweighted probabilities should still sum to one", func() {
				So(len(results), ShouldEqual, 1)
				sum := 0.0
				for _, p := range results[0].Probabilities {
					sum += p
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})
	})

	Convey("Given an engine whose model requires a feature the window never produces", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		m, err := inference.NewLinearModel(inference.Params{
			ModelID:      "eda_model",
			Version:      "1",
			Labels:       []string{"low", "high"},
			FeatureNames: []string{"hr_mean", "sdnn", "rmssd", "eda_mean"},
			Weights:      [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}},
			Biases:       []float64{0, 0},
		})
		So(err, ShouldBeNil)
		e, err := engine.New(m,
			engine.WithClock(clk.now),
			engine.WithMinRRCount(5),
		)
		So(err, ShouldBeNil)

		Convey("When enough data is buffered for an emission attempt", func() {
			for i := 0; i < 5; i++ {
				e.Push(ctx, sampleAt(clk.t, 72, steadyRR(10)))
				clk.advance(time.Second)
			}
			results := e.ConsumeReady(ctx)

			Convey("Then the classifier failure should degrade to an empty result", func() {
				So(results, ShouldBeEmpty)
				So(e.LastSkip(), ShouldEqual, engine.SkipInferenceFailed)
			})

			Convey("And a later tick with the missing feature supplied should recover", func() {
				clk.advance(10 * time.Second)
				s := sampleAt(clk.t, 72, steadyRR(10))
				s.Motion = map[string]float64{"eda_mean": 1.2}
				e.Push(ctx, s)
				clk.advance(time.Second)

				So(len(e.ConsumeReady(ctx)), ShouldEqual, 1)
				So(e.LastSkip(), ShouldEqual, engine.SkipNone)
			})
		})
	})

	Convey("Given an engine fed motion data", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk)

		Convey("When samples carry motion features", func() {
			for i := 0; i < 4; i++ {
				s := sampleAt(clk.t, 72, steadyRR(10))
				s.Motion = map[string]float64{"acc_mag": 0.5}
				e.Push(ctx, s)
				clk.advance(time.Second)
			}
			results := e.ConsumeReady(ctx)

			Convey("Then motion keys should be summed across the window", func() {
				So(len(results), ShouldEqual, 1)
				So(results[0].Features["acc_mag"], ShouldAlmostEqual, 2.0, 1e-9)
			})
		})
	})
}

func TestClear(t *testing.T) {
	Convey("Given an engine with buffered data and an emission", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			e.Push(ctx, sampleAt(clk.t, 72, steadyRR(10)))
			clk.advance(time.Second)
		}
		So(len(e.ConsumeReady(ctx)), ShouldEqual, 1)

		Convey("When clearing", func() {
			e.Clear(ctx)

			Convey("Then the buffer should be empty", func() {
				So(e.BufferStats(ctx), ShouldResemble, model.BufferStats{})
			})

			Convey("And the emission throttle should reset", func() {
				// Without the reset this emission would be throttled.
				for i := 0; i < 5; i++ {
					e.Push(ctx, sampleAt(clk.t, 72, steadyRR(10)))
					clk.advance(time.Second)
				}
				So(len(e.ConsumeReady(ctx)), ShouldEqual, 1)
			})

			Convey("And clearing again should be a no-op", func() {
				So(func() { e.Clear(ctx) }, ShouldNotPanic)
			})
		})
	})
}

func TestBufferStats(t *testing.T) {
	Convey("Given an engine", t, func() {
		clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
		e := newTestEngine(clk)
		ctx := context.Background()

		Convey("When the buffer is empty", func() {
			So(e.BufferStats(ctx), ShouldResemble, model.BufferStats{})
		})

		Convey("When samples span ten seconds", func() {
			e.Push(ctx, sampleAt(clk.t, 65, steadyRR(4)))
			clk.advance(10 * time.Second)
			e.Push(ctx, sampleAt(clk.t, 90, steadyRR(6)))

			stats := e.BufferStats(ctx)

			Convey("Then the snapshot should describe the window", func() {
				So(stats.SampleCount, ShouldEqual, 2)
				So(stats.Duration, ShouldEqual, 10*time.Second)
				So(stats.HRMin, ShouldEqual, 65)
				So(stats.HRMax, ShouldEqual, 90)
				So(stats.RRCount, ShouldEqual, 10)
			})

			Convey("And reading stats should not mutate state", func() {
				So(e.BufferStats(ctx), ShouldResemble, stats)
			})
		})
	})
}
