package config_test

import (
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/synheart/emotion-go/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.WindowSeconds, convey.ShouldEqual, 60.0)
			convey.So(cfg.StepSeconds, convey.ShouldEqual, 5.0)
			convey.So(cfg.MinRRCount, convey.ShouldEqual, 30)
			convey.So(cfg.HRBaseline, convey.ShouldBeNil)
			convey.So(cfg.MaxBufferSamples, convey.ShouldEqual, 0)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.HistorySize, convey.ShouldEqual, 1_000)
			convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 1000)
			convey.So(cfg.MQTTBroker, convey.ShouldBeEmpty)
			convey.So(cfg.MQTTTopic, convey.ShouldEqual, "biosignal/+/hrv")
			convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
			convey.So(cfg.RedisStream, convey.ShouldEqual, "emotion:results")
		})
	})
}
