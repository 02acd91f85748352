package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/taxoload/internal/logging"
	"github.com/cognicore/taxoload/pkg/taxoload/config"
	"github.com/cognicore/taxoload/pkg/taxoload/integrity"
	"github.com/cognicore/taxoload/pkg/taxoload/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (optional, YAML)")
		version    = flag.String("version", "", "Taxonomy version whose output to check")
		storeFlag  = flag.String("store", "", "Table backend: csv or sqlite")
	)
	flag.Parse()

	config.LoadDotenv()
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to load config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if *version != "" {
		cfg.Version = *version
	}
	if *storeFlag != "" {
		cfg.Store.Driver = strings.ToLower(*storeFlag)
	}

	logger := logging.Stderr(cfg.LogLevel)
	if cfg.Store.Driver == config.DriverMemory {
		logger.Fatal("Nothing to verify in a memory store")
	}

	ctx := context.Background()
	st, err := pipeline.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", "err", err)
	}
	defer st.Close()

	report, err := integrity.Check(ctx, st)
	if err != nil {
		st.Close()
		logger.Fatal("Verification failed", "err", err)
	}

	for _, v := range report.Violations {
		fmt.Println(v.String())
	}
	logger.Info("Checked", "tables", report.Tables, "rows", report.Rows, "violations", len(report.Violations))
	if !report.OK() {
		st.Close()
		os.Exit(1)
	}
}
