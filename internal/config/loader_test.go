package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/nvoss/goalfeed/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		setCriticalEnvVars()

		convey.Convey("When loading config with criticals only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then defaults should fill the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":4100")
				convey.So(cfg.MongoURI, convey.ShouldEqual, "mongodb://localhost:27017")
				convey.So(cfg.CompletedLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with environment overrides", func() {
			_ = os.Setenv("GOALFEED_ADDR", ":4200")
			_ = os.Setenv("GOALFEED_COMPLETED_LIMIT", "50")
			_ = os.Setenv("GOALFEED_HEARTBEAT_INTERVAL_SECONDS", "10")
			_ = os.Setenv("GOALFEED_WORKFLOW_URL", "http://prefect:4200/api/health")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the overrides should take effect", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":4200")
				convey.So(cfg.CompletedLimit, convey.ShouldEqual, 50)
				convey.So(cfg.HeartbeatIntervalSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.WorkflowURL, convey.ShouldEqual, "http://prefect:4200/api/health")
			})
		})

		convey.Convey("When a critical variable is missing", func() {
			_ = os.Unsetenv("GOALFEED_MONGO_URI")

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail fast", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		clearConfigEnvVars()
	})
}

func setCriticalEnvVars() {
	_ = os.Setenv("GOALFEED_MONGO_URI", "mongodb://localhost:27017")
	_ = os.Setenv("GOALFEED_MINIO_ENDPOINT", "localhost:9000")
	_ = os.Setenv("GOALFEED_MINIO_ACCESS_KEY", "minio")
	_ = os.Setenv("GOALFEED_MINIO_SECRET_KEY", "miniosecret")
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"GOALFEED_CONFIG",
		"GOALFEED_ADDR",
		"GOALFEED_LOG_LEVEL",
		"GOALFEED_MONGO_URI",
		"GOALFEED_MINIO_ENDPOINT",
		"GOALFEED_MINIO_ACCESS_KEY",
		"GOALFEED_MINIO_SECRET_KEY",
		"GOALFEED_COMPLETED_LIMIT",
		"GOALFEED_HEARTBEAT_INTERVAL_SECONDS",
		"GOALFEED_WORKFLOW_URL",
	} {
		_ = os.Unsetenv(key)
	}
}
