// Command errbench measures record creation and propagation across the
// errtrail storage strategies and dumps a sample record.
//
// Every flag can also be set from the environment with an ERRBENCH_
// prefix, e.g. ERRBENCH_ITERATIONS=100000.
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/olekukonko/errtrail"
	"github.com/olekukonko/errtrail/errmgr"
	"github.com/olekukonko/errtrail/sink"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := newCommand(log).Execute(); err != nil {
		log.Error().Err(err).Msg("errbench failed")
		os.Exit(1)
	}
}

// options are the resolved command settings.
type options struct {
	Strategies []string
	Iterations int
	Levels     int
	Capacity   int
	MaxLive    int
	Capture    int
	DumpDir    string
}

func newCommand(log zerolog.Logger) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "errbench",
		Short:         "Benchmark errtrail storage strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options{
				Strategies: v.GetStringSlice("strategies"),
				Iterations: v.GetInt("iterations"),
				Levels:     v.GetInt("levels"),
				Capacity:   v.GetInt("capacity"),
				MaxLive:    v.GetInt("max-live"),
				Capture:    v.GetInt("capture"),
				DumpDir:    v.GetString("dump-dir"),
			}
			return run(cmd.Context(), log, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringSlice("strategies", []string{"local", "ring", "heap"}, "storage strategies to benchmark")
	flags.Int("iterations", 1_000_000, "records created per benchmark")
	flags.Int("levels", 5, "call depth each record propagates through")
	flags.Int("capacity", 128, "ring capacity")
	flags.Int("max-live", 0, "heap live record limit, 0 for none")
	flags.Int("capture", 0, "raw program counters captured per record")
	flags.String("dump-dir", "", "directory to write sample dumps to")
	bind(v, flags)
	return cmd
}

// bind wires flags and ERRBENCH_* environment variables into v.
func bind(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix("errbench")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
}

// result is one benchmark measurement.
type result struct {
	Name    string
	Total   time.Duration
	PerIter time.Duration
	Sample  *errtrail.Record
}

func run(ctx context.Context, log zerolog.Logger, opts options) error {
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}

	var dump sink.Sink = &sink.Stream{W: os.Stdout}
	if opts.DumpDir != "" {
		st, err := sink.OpenDisk(opts.DumpDir)
		if err != nil {
			return err
		}
		dump = st
	}

	mon := errmgr.New(errmgr.Config{DisableMetrics: true})

	base := measureBaseline(opts)
	log.Info().
		Str("bench", base.Name).
		Dur("total", base.Total).
		Dur("per_iter", base.PerIter).
		Msg("baseline")

	for _, name := range opts.Strategies {
		cfg := errtrail.Config{
			Strategy:     errtrail.Strategy(name),
			Capacity:     opts.Capacity,
			MaxLive:      opts.MaxLive,
			CaptureDepth: opts.Capture,
		}
		for _, formatted := range []bool{false, true} {
			store, err := errtrail.Open(cfg, errtrail.WithObserver(mon))
			if err != nil {
				return err
			}

			res := measure(store, name, formatted, opts)
			log.Info().
				Str("bench", res.Name).
				Dur("total", res.Total).
				Dur("per_iter", res.PerIter).
				Object("sample", res.Sample).
				Msg("strategy")

			if err := sink.Write(ctx, dump, res.Name+".dump", res.Sample); err != nil {
				store.Teardown()
				return err
			}
			store.Destroy(res.Sample)
			store.Teardown()
		}
	}

	for _, code := range mon.Codes() {
		log.Info().
			Str("code", errmgr.Name(code)).
			Uint64("created", mon.Count(code)).
			Uint64("dropped", mon.DroppedCount(code)).
			Uint64("truncated", mon.TruncatedCount(code)).
			Msg("counts")
	}
	return nil
}

// measure creates opts.Iterations records levels deep, keeping the last one
// as a sample. Heap records other than the sample are destroyed as they
// come back, ring records are simply overwritten.
func measure(store *errtrail.Store, strategy string, formatted bool, opts options) result {
	name := strategy
	if formatted {
		name += "-formatted"
	}

	_, heap := store.Storage().(*errtrail.Heap)

	var last *errtrail.Record
	start := time.Now()
	for i := 0; i < opts.Iterations; i++ {
		_, rec := propagate(store, opts.Levels, formatted, i)
		if heap && last != nil {
			store.Destroy(last)
		}
		last = rec
	}
	total := time.Since(start)

	return result{
		Name:    name,
		Total:   total,
		PerIter: total / time.Duration(opts.Iterations),
		Sample:  last,
	}
}

// propagate fails at the bottom of a levels deep call chain and wraps
// the record once at every level on the way back up.
//
//go:noinline
func propagate(store *errtrail.Store, levels int, formatted bool, i int) (int, *errtrail.Record) {
	if levels <= 0 {
		if formatted {
			return -1, store.Newf(errmgr.CodeInvalid, "Error #%d occurred", i)
		}
		return -1, store.New(errmgr.CodePermission, "Some error")
	}
	n, rec := propagate(store, levels-1, formatted, i)
	if rec != nil {
		return errtrail.Return(n, rec)
	}
	return n, nil
}

// sinkInt keeps the baseline loop from being optimized away.
var sinkInt int

func measureBaseline(opts options) result {
	start := time.Now()
	for i := 0; i < opts.Iterations; i++ {
		sinkInt += plain(opts.Levels)
	}
	total := time.Since(start)
	return result{
		Name:    "int-return",
		Total:   total,
		PerIter: total / time.Duration(opts.Iterations),
	}
}

//go:noinline
func plain(levels int) int {
	if levels <= 0 {
		return -1
	}
	if r := plain(levels - 1); r < 0 {
		return r
	}
	return 0
}
