package config_test

import (
	"context"
	"testing"

	"github.com/okian/waterline/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Timezone, convey.ShouldEqual, "Asia/Jakarta")
			convey.So(cfg.WindowSize, convey.ShouldEqual, 10)
			convey.So(cfg.ThresholdML, convey.ShouldEqual, 100)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(len(cfg.Topics), convey.ShouldEqual, 2)
		})
	})
}
