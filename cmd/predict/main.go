// Command predict prints a player's predicted chance to win their next match.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	app "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/internal/domain/types"
	"github.com/okian/winrate/pkg/logger"
)

const predictTimeout = 2 * time.Minute

// ErrNoPlayerID is returned when no player id was given or typed.
var ErrNoPlayerID = errors.New("no player id given")

type flags struct {
	configFile string
	source     string
	dir        string
	url        string
	window     int
	explain    bool
	logLevel   string
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "predict [player-id]",
		Short: "Predict a player's chance to win their next match",
		Long: `Loads the player's match history from the configured source and prints
the predicted probability of winning the next match. When no player id is
given it is read from standard input.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID := ""
			if len(args) == 1 {
				playerID = args[0]
			} else {
				id, err := promptPlayerID(in, out)
				if err != nil {
					return err
				}
				playerID = id
			}
			return runPredict(cmd.Context(), cmd, f, playerID, out)
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(out)

	pf := cmd.Flags()
	pf.StringVarP(&f.configFile, "config", "c", os.Getenv(config.EnvConfigFile), "Path to a YAML configuration file")
	pf.StringVar(&f.source, "source", "", "History source: file or http")
	pf.StringVar(&f.dir, "dir", "", "Directory holding <player>_matches.csv files")
	pf.StringVar(&f.url, "url", "", "Base URL of the http history source")
	pf.IntVar(&f.window, "window", 0, "Number of recent matches the windowed features read")
	pf.BoolVar(&f.explain, "explain", false, "Print the intermediate feature values")
	pf.StringVar(&f.logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	return cmd
}

func promptPlayerID(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter player id: ")
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			return id, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read player id: %w", err)
	}
	return "", ErrNoPlayerID
}

func runPredict(ctx context.Context, cmd *cobra.Command, f flags, playerID string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, predictTimeout)
	defer cancel()

	if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(f.logLevel); err != nil {
		return err
	}
	log := logger.Get().With(logger.String("run_id", uuid.NewString()))

	cfg, err := config.LoadFile(ctx, f.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc := app.New(append(app.OptionsFromConfig(cfg), app.WithLogger(log))...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	p, err := svc.Predict(ctx, playerID)
	if err != nil {
		return err
	}
	printPrediction(out, p, f.explain)
	return nil
}

// applyFlags overrides configuration with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	fl := cmd.Flags()
	if fl.Changed("source") {
		cfg.HistorySource = f.source
	}
	if fl.Changed("dir") {
		cfg.HistoryDir = f.dir
	}
	if fl.Changed("url") {
		cfg.HistoryURL = f.url
	}
	if fl.Changed("window") {
		cfg.RecentWindow = f.window
	}
}

func printPrediction(out io.Writer, p types.Prediction, explain bool) {
	if explain && p.Breakdown != nil {
		b := p.Breakdown
		fmt.Fprintf(out, "Matches:                %d (window %d)\n", p.Matches, p.Window)
		fmt.Fprintf(out, "Weighted efficiency:    %.4f\n", b.WeightedEfficiency)
		fmt.Fprintf(out, "Normalized efficiency:  %.4f\n", b.NormalizedEfficiency)
		fmt.Fprintf(out, "Normalized streak:      %.4f\n", b.NormalizedStreak)
		fmt.Fprintf(out, "Recent streak:          %+d\n", b.RecentStreak)
		fmt.Fprintf(out, "Normalized duration:    %.4f\n", b.NormalizedDuration)
		fmt.Fprintf(out, "Raw score:              %.4f\n", b.RawScore)
	}
	fmt.Fprintf(out, "Predicted win chance: %.2f%%\n", p.Percent)
}
