package config_test

import (
	"testing"

	"github.com/nvoss/goalfeed/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigDefaults(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then defaults should be set", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":4100")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MongoDB, convey.ShouldEqual, "goalfeed")
			convey.So(cfg.StagingCollection, convey.ShouldEqual, "fixtures_staging")
			convey.So(cfg.ActiveCollection, convey.ShouldEqual, "fixtures_active")
			convey.So(cfg.CompletedCollection, convey.ShouldEqual, "fixtures_completed")
			convey.So(cfg.CompletedLimit, convey.ShouldEqual, 20)
			convey.So(cfg.ProbeIntervalSeconds, convey.ShouldEqual, 15)
			convey.So(cfg.HeartbeatIntervalSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.SubscriberBuffer, convey.ShouldEqual, 16)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		valid := func() *config.Config {
			cfg := config.New()
			cfg.MongoURI = "mongodb://localhost:27017"
			cfg.MinioEndpoint = "localhost:9000"
			cfg.MinioAccessKey = "minio"
			cfg.MinioSecretKey = "miniosecret"
			return cfg
		}

		convey.Convey("When all critical fields are set", func() {
			convey.So(valid().Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the document store URI is missing", func() {
			cfg := valid()
			cfg.MongoURI = ""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the object store endpoint is missing", func() {
			cfg := valid()
			cfg.MinioEndpoint = ""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When object store credentials are missing", func() {
			cfg := valid()
			cfg.MinioSecretKey = ""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When optional dependencies are missing", func() {
			cfg := valid()
			cfg.WorkflowURL = ""
			cfg.ExternalAPIKey = ""

			convey.Convey("Then validation should still pass", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
