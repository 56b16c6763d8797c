package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/noah-isme/defense-scheduler-core/internal/apirun"
	"github.com/noah-isme/defense-scheduler-core/internal/ioformat"
	"github.com/noah-isme/defense-scheduler-core/internal/progress"
	"github.com/noah-isme/defense-scheduler-core/internal/runner"
	"github.com/noah-isme/defense-scheduler-core/pkg/config"
	"github.com/noah-isme/defense-scheduler-core/pkg/logger"
)

func newRunCmd() *cobra.Command {
	var (
		inputPath   string
		strategyArg string
		timeLimit   int
		seedFlag    int64
		hasSeed     bool
		paramFlags  []string
		weightFlags []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one run of the scheduling core and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading input bundle: %w", err)
			}
			bundle, err := ioformat.UnmarshalInputBundle(data)
			if err != nil {
				return err
			}

			params, err := parseKeyValueFloats(paramFlags)
			if err != nil {
				return fmt.Errorf("parsing --param: %w", err)
			}
			weights, err := parseKeyValueFloats(weightFlags)
			if err != nil {
				return fmt.Errorf("parsing --weight: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck

			reg := prometheus.NewRegistry()
			metrics := progress.NewMetrics(reg)
			broker := progress.NewBroker()

			pool := runner.NewPool(cfg.Runner.Workers, cfg.Runner.BufferSize, log)
			rn := runner.New(pool, broker, metrics, log, cfg.Weights)

			ctx := context.Background()
			rn.Start(ctx)
			defer rn.Stop()

			svc := apirun.NewService(rn, nil)

			effectiveParams := cfg.Strategies.ParamsOverlay()
			for k, v := range params {
				effectiveParams[k] = v
			}

			req := apirun.RunRequest{
				StrategyName:     strategyArg,
				Params:           effectiveParams,
				InputBundle:      bundle,
				WeightsOverride:  weights,
				TimeLimitSeconds: timeLimit,
			}
			if hasSeed {
				req.Seed = &seedFlag
			}

			result, err := svc.Execute(ctx, req)
			if err != nil {
				return err
			}

			out, err := ioformat.MarshalRunResult(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to an input bundle JSON file")
	cmd.Flags().StringVar(&strategyArg, "strategy", "earliest_first", "strategy name or alias (ga, sa, dp, ...)")
	cmd.Flags().IntVar(&timeLimit, "time-limit", 0, "wall-clock budget in seconds (0 = unbounded)")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "fixed random seed (omit for derived-per-run seeding)")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "per-strategy parameter as key=value, repeatable")
	cmd.Flags().StringArrayVar(&weightFlags, "weight", nil, "scoring weight override as key=value, repeatable")
	_ = cmd.MarkFlagRequired("input")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		hasSeed = cmd.Flags().Changed("seed")
		return nil
	}

	return cmd
}

func parseKeyValueFloats(raw []string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected key=value, got %q", kv)
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("value for %q is not a number: %w", parts[0], err)
		}
		out[parts[0]] = v
	}
	return out, nil
}
