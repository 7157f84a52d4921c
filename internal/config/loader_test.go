package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/abrezinsky/moviecup/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.DBPath, convey.ShouldEqual, "moviecup.db")
				convey.So(cfg.TMDBRegion, convey.ShouldEqual, "KR")
				convey.So(cfg.TMDBLanguage, convey.ShouldEqual, "ko-KR")
				convey.So(cfg.TMDBTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.TMDBRateLimit, convey.ShouldEqual, 40)
				convey.So(cfg.TMDBBurst, convey.ShouldEqual, 20)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 2*time.Hour)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MOVIECUP_ADDR", ":9000")
			_ = os.Setenv("MOVIECUP_TMDB_API_KEY", "secret")
			_ = os.Setenv("MOVIECUP_TMDB_BURST", "5")
			_ = os.Setenv("MOVIECUP_SESSION_TTL", "15m")
			_ = os.Setenv("MOVIECUP_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.TMDBAPIKey, convey.ShouldEqual, "secret")
				convey.So(cfg.TMDBBurst, convey.ShouldEqual, 5)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 15*time.Minute)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
db_path: "/tmp/cup.db"
tmdb_region: "US"
tmdb_rate_limit: 10
session_ttl: 30m
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MOVIECUP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/cup.db")
				convey.So(cfg.TMDBRegion, convey.ShouldEqual, "US")
				convey.So(cfg.TMDBRateLimit, convey.ShouldEqual, 10)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.TMDBBurst, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When env vars and YAML file both set a key", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MOVIECUP_CONFIG", tmpFile)
			_ = os.Setenv("MOVIECUP_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("MOVIECUP_CONFIG", "/nonexistent/moviecup.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("MOVIECUP_TMDB_BURST", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with an invalid config error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		cfg := config.New()

		convey.Convey("It validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("An empty addr is rejected", func() {
			cfg.Addr = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A non-positive rate limit is rejected", func() {
			cfg.TMDBRateLimit = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A non-positive session ttl is rejected", func() {
			cfg.SessionTTL = -time.Second
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"MOVIECUP_CONFIG",
		"MOVIECUP_ADDR",
		"MOVIECUP_DB_PATH",
		"MOVIECUP_LOG_FORMAT",
		"MOVIECUP_TMDB_API_KEY",
		"MOVIECUP_TMDB_BURST",
		"MOVIECUP_SESSION_TTL",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "moviecup-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
