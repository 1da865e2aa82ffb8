package worker_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	queue "github.com/synheart/emotion-go/internal/adapters/mq/queue"
	worker "github.com/synheart/emotion-go/internal/adapters/mq/worker"
	model "github.com/synheart/emotion-go/internal/domain/model"
)

// recordingPusher collects pushed samples for assertions.
type recordingPusher struct {
	mu      sync.Mutex
	samples []model.Sample
}

func (p *recordingPusher) Push(ctx context.Context, s model.Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, s)
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples)
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func querySample(id string) model.Sample {
	return model.Sample{
		SampleID:      id,
		HR:            70,
		RRIntervalsMS: []float64{820, 830},
		Timestamp:     time.Now(),
	}
}

func TestIngestWorker(t *testing.T) {
	Convey("Given a worker wired to a queue and a pusher", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		p := &recordingPusher{}
		w := worker.NewIngestWorker(q, p, worker.WithName("test-worker"))

		go w.Run(ctx)

		Convey("When samples are enqueued", func() {
			So(q.Enqueue(ctx, querySample("s1")), ShouldBeTrue)
			So(q.Enqueue(ctx, querySample("s2")), ShouldBeTrue)

			Convey("Then the worker should push them to the engine", func() {
				So(waitFor(func() bool { return p.count() == 2 }, time.Second), ShouldBeTrue)
			})
		})

		Convey("When the worker is shut down", func() {
			err := w.Shutdown(ctx)

			Convey("Then shutdown should complete cleanly", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		p := &recordingPusher{}
		pool := worker.NewPool(4, q, p)
		pool.Start(ctx)

		Convey("When many samples are enqueued", func() {
			for i := 0; i < 50; i++ {
				So(q.Enqueue(ctx, querySample(fmt.Sprintf("s%d", i))), ShouldBeTrue)
			}

			Convey("Then all samples should be processed", func() {
				So(waitFor(func() bool { return p.count() == 50 }, 2*time.Second), ShouldBeTrue)
			})
		})

		Convey("When the pool is shut down", func() {
			err := pool.Shutdown(ctx)

			Convey("Then the queue should be closed", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
