package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cognicore/taxoload/internal/logging"
	"github.com/cognicore/taxoload/pkg/taxoload/config"
	"github.com/cognicore/taxoload/pkg/taxoload/pipeline"
)

// options holds the command line. set records which flags were passed so
// that only explicit flags override the config.
type options struct {
	configPath string
	version    string
	languages  string
	store      string
	verify     bool
	step       int
	set        map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.configPath, "config", "", "Config file (optional, YAML)")
	fs.StringVar(&o.version, "version", "", "Taxonomy version to convert")
	fs.StringVar(&o.languages, "languages", "", "Comma separated target languages")
	fs.StringVar(&o.store, "store", "", "Table backend: csv, sqlite or memory")
	fs.BoolVar(&o.verify, "verify", true, "Check referential integrity after the run (-verify=false to skip)")
	fs.IntVar(&o.step, "step", 0, "Run only this step (1-14)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply overrides cfg with the flags that were passed.
func (o options) apply(cfg *config.Config) {
	if o.set["version"] {
		cfg.Version = o.version
	}
	if o.set["languages"] {
		cfg.Languages = config.SplitLanguages(o.languages)
	}
	if o.set["store"] {
		cfg.Store.Driver = strings.ToLower(o.store)
	}
	if o.set["verify"] {
		cfg.Verify = o.verify
	}
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	config.LoadDotenv()
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to load config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	opts.apply(&cfg)

	logger := logging.Stderr(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, st, err := pipeline.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up pipeline", "err", err)
	}
	defer st.Close()

	if opts.step > 0 {
		if err := p.Step(ctx, opts.step); err != nil {
			st.Close()
			logger.Fatal("Step failed", "step", opts.step, "err", err)
		}
		return
	}

	logger.Info("Converting taxonomy", "version", cfg.Version, "languages", strings.Join(cfg.Languages, ","), "store", cfg.Store.Driver)
	sum, err := p.Run(ctx)
	if err != nil {
		st.Close()
		logger.Fatal("Conversion failed", "err", err)
	}

	for _, c := range sum.Coverage {
		logger.Info("Translations", "entity", c.Entity, "found", c.Found, "expected", c.Expected)
	}
	logger.Info("Done", "run_id", sum.RunID, "tables", len(sum.Tables), "elapsed", sum.Finished.Sub(sum.Started))
}
