package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/synheart/emotion-go/internal/config"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SYNHEART_ADDR", ":8080")
			_ = os.Setenv("SYNHEART_QUEUE_SIZE", "1000")
			_ = os.Setenv("SYNHEART_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("SYNHEART_ADDR")
				_ = os.Unsetenv("SYNHEART_QUEUE_SIZE")
				_ = os.Unsetenv("SYNHEART_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When converting configured seconds to durations", func() {
			convey.So(secondsToDuration(60), convey.ShouldEqual, time.Minute)
			convey.So(secondsToDuration(2.5), convey.ShouldEqual, 2500*time.Millisecond)
			convey.So(secondsToDuration(0), convey.ShouldEqual, time.Duration(0))
		})
	})
}
