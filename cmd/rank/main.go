// Command rank prints the ratings and ranking of a season selection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	app "github.com/okian/mlerank/internal/app"
	"github.com/okian/mlerank/internal/config"
	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/types"
	"github.com/okian/mlerank/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rank:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "rank",
		Usage: "rate a roster from a season of game results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file", EnvVars: []string{config.EnvPrefix + "CONFIG"}},
			&cli.IntFlag{Name: "season", Usage: "season year", Required: true},
			&cli.StringFlag{Name: "weeks", Usage: "weeks to include, e.g. 1-17 or 1,3,5 (default all)"},
			&cli.StringFlag{Name: "kind", Usage: "season kind: REG, POST or PRE"},
			&cli.StringFlag{Name: "roster", Usage: "comma separated competitor ids"},
			&cli.StringFlag{Name: "games-file", Usage: "YAML games file"},
			&cli.StringFlag{Name: "games-url", Usage: "base URL of a game data service"},
			&cli.IntFlag{Name: "max-iterations", Usage: "iteration cap"},
			&cli.StringFlag{Name: "zero-score-policy", Usage: "reject or minimal"},
			&cli.StringFlag{Name: "format", Usage: "text or json", Value: "text"},
			&cli.BoolFlag{Name: "progression", Usage: "print one cumulative ranking per week"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "warn"},
		},
		Action: func(c *cli.Context) error {
			return run(c, out)
		},
	}
}

func run(c *cli.Context, out io.Writer) error {
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		return err
	}
	if err := logger.SetLevelString(c.String("log-level")); err != nil {
		return err
	}

	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	weeks, err := model.ParseWeeks(c.String("weeks"))
	if err != nil {
		return err
	}
	sel := model.Selection{Season: c.Int("season"), Weeks: weeks, Kind: cfg.SeasonKind}

	svc, err := app.NewFromConfig(cfg, logger.Get())
	if err != nil {
		return err
	}
	if c.Bool("progression") {
		rankings, err := svc.Progression(c.Context, sel)
		if err != nil {
			return err
		}
		return renderProgression(out, c.String("format"), rankings)
	}
	ranking, err := svc.Ranking(c.Context, sel)
	if err != nil {
		return err
	}
	return render(out, c.String("format"), svc.Roster(), ranking)
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("roster") {
		cfg.Roster = nil
		for _, id := range strings.Split(c.String("roster"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Roster = append(cfg.Roster, id)
			}
		}
	}
	if c.IsSet("games-file") {
		cfg.GamesFile = c.String("games-file")
	}
	if c.IsSet("games-url") {
		cfg.GamesURL = c.String("games-url")
	}
	if c.IsSet("kind") {
		cfg.SeasonKind = c.String("kind")
	}
	if c.IsSet("max-iterations") {
		cfg.MaxIterations = c.Int("max-iterations")
	}
	if c.IsSet("zero-score-policy") {
		cfg.ZeroScorePolicy = c.String("zero-score-policy")
	}
}

// render writes the rating of every competitor in roster order, then the
// ids from strongest to weakest, then a ranked table.
func render(w io.Writer, format string, roster model.Roster, r types.Ranking) error {
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	ratings := r.Ratings()
	fmt.Fprintf(w, "season %d %s, %d games, %d iterations (run %s)\n\n", r.Season, r.Kind, r.Games, r.Iterations, r.RunID)
	fmt.Fprintln(w, "ratings:")
	for _, id := range roster.IDs() {
		fmt.Fprintf(w, "  %s: %g\n", id, ratings[id])
	}

	order := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		order[i] = e.Competitor
	}
	fmt.Fprintf(w, "\norder: %s\n\n", strings.Join(order, " "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPETITOR\tRATING")
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%.6g\n", e.Rank, e.Competitor, e.Rating)
	}
	return tw.Flush()
}

// renderProgression writes one line per cumulative week: the last week
// included followed by the ids from strongest to weakest.
func renderProgression(w io.Writer, format string, rankings []types.Ranking) error {
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rankings)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "THROUGH WEEK\tGAMES\tORDER")
	for _, r := range rankings {
		order := make([]string, len(r.Entries))
		for i, e := range r.Entries {
			order[i] = e.Competitor
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\n", r.Weeks[len(r.Weeks)-1], r.Games, strings.Join(order, " "))
	}
	return tw.Flush()
}
