package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/mlerank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MLERANK_CONFIG", "MLERANK_ADDR", "MLERANK_ROSTER", "MLERANK_MAX_ITERATIONS",
	"MLERANK_ABS_TOLERANCE", "MLERANK_ZERO_SCORE_POLICY", "MLERANK_GAMES_FILE",
	"MLERANK_WORKERS",
}

func clearConfigEnvVars(t *testing.T) {
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

const fileConfig = `addr: ":7000"
roster: [KC, NE, BUF]
games_file: /data/games.yaml
max_iterations: 500
margin_weight: 0.5
zero_score_policy: minimal
workers: 3
`

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxIterations, convey.ShouldEqual, 10_000)
				convey.So(cfg.AbsTolerance, convey.ShouldEqual, 1e-8)
				convey.So(cfg.RelTolerance, convey.ShouldEqual, 1e-5)
				convey.So(cfg.BaseWeight, convey.ShouldEqual, 0.6)
				convey.So(cfg.MarginWeight, convey.ShouldEqual, 0.4)
				convey.So(cfg.ZeroScorePolicy, convey.ShouldEqual, "reject")
				convey.So(cfg.SeasonKind, convey.ShouldEqual, "REG")
				convey.So(cfg.Roster, convey.ShouldBeEmpty)
				convey.So(cfg.Workers, convey.ShouldEqual, 0)
				convey.So(cfg.EstimationTimeout(), convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.HTTPTimeout(), convey.ShouldEqual, 10*time.Second)
			})
		})

		convey.Convey("When a config file is given", func() {
			path := filepath.Join(t.TempDir(), "mlerank.yaml")
			convey.So(os.WriteFile(path, []byte(fileConfig), 0o600), convey.ShouldBeNil)
			t.Setenv("MLERANK_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.Roster, convey.ShouldResemble, []string{"KC", "NE", "BUF"})
				convey.So(cfg.GamesFile, convey.ShouldEqual, "/data/games.yaml")
				convey.So(cfg.MaxIterations, convey.ShouldEqual, 500)
				convey.So(cfg.MarginWeight, convey.ShouldEqual, 0.5)
				convey.So(cfg.BaseWeight, convey.ShouldEqual, 0.6)
				convey.So(cfg.ZeroScorePolicy, convey.ShouldEqual, "minimal")
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
			})

			convey.Convey("And environment variables win over the file", func() {
				t.Setenv("MLERANK_ADDR", ":8080")
				t.Setenv("MLERANK_ROSTER", "SEA, SF ,LAR")
				t.Setenv("MLERANK_ABS_TOLERANCE", "1e-9")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Roster, convey.ShouldResemble, []string{"SEA", "SF", "LAR"})
				convey.So(cfg.AbsTolerance, convey.ShouldEqual, 1e-9)
				convey.So(cfg.MaxIterations, convey.ShouldEqual, 500)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When an env value does not parse", func() {
			t.Setenv("MLERANK_MAX_ITERATIONS", "many")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value fails validation", func() {
			t.Setenv("MLERANK_ZERO_SCORE_POLICY", "ignore")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		convey.So(config.New().Validate(), convey.ShouldBeNil)

		convey.Convey("When fields are out of range", func() {
			cases := []func(c *config.Config){
				func(c *config.Config) { c.Addr = "" },
				func(c *config.Config) { c.MaxIterations = 0 },
				func(c *config.Config) { c.AbsTolerance = 0 },
				func(c *config.Config) { c.MarginWeight = -1 },
				func(c *config.Config) { c.EstimationTimeoutMS = -5 },
				func(c *config.Config) { c.SeasonKind = "WILD" },
				func(c *config.Config) { c.Roster = []string{"KC", "KC"} },
				func(c *config.Config) { c.Workers = -1 },
			}

			convey.Convey("Then each is rejected", func() {
				for _, mutate := range cases {
					c := config.New()
					mutate(c)
					convey.So(errors.Is(c.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				}
			})
		})
	})
}
