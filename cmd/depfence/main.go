// Command depfence scans a dependency manifest for maintainer abandonment
// risk and optionally gates CI on a score threshold.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/depfence/depfence"
	"github.com/depfence/depfence/client"
	"github.com/depfence/depfence/internal/config"
	"github.com/depfence/depfence/internal/slogger"
	"github.com/depfence/depfence/manifest"
	"github.com/depfence/depfence/report"
	"github.com/depfence/depfence/scan"
	"github.com/depfence/depfence/store"

	_ "github.com/depfence/depfence/all"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("depfence", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "output JSON")
	sarifOut := fs.Bool("sarif", false, "output SARIF 2.1.0")
	cdxOut := fs.Bool("cyclonedx", false, "output CycloneDX 1.5 SBOM")
	failOver := fs.Int("fail-over", 0, "exit 1 if any dependency risk score >= N (CI gate)")
	noColor := fs.Bool("no-color", false, "disable colored output")
	concurrency := fs.Int("concurrency", 0, "max concurrent registry fetches")
	trend := fs.Bool("trend", false, "compare against the previous snapshot (requires DEPFENCE_VALKEY_ADDR)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: depfence [flags] <requirements.txt | package.json>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	_ = godotenv.Load()
	slogger.Init()
	cfg := config.Load()
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}

	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", path)
		return 2
	}

	ids, err := manifest.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []scan.Option{
		scan.WithClient(client.NewClient(client.WithTimeout(cfg.FetchTimeout))),
		scan.WithConcurrency(cfg.Concurrency),
		scan.WithThreshold(*failOver),
	}

	var snapshots *store.SnapshotStore
	if cfg.ValkeyAddr != "" {
		kv, err := store.NewValkeyStore(cfg.ValkeyAddr)
		if err != nil {
			slog.Warn("valkey unavailable, continuing without cross-run cache", "err", err)
		} else {
			defer kv.Close()
			opts = append(opts, scan.WithCacheBackend(store.NewMetadataCache(kv), cfg.CacheTTL))
			snapshots = store.NewSnapshotStore(kv, cfg.TrendTTL)
		}
	}

	result, err := scan.NewRunner(opts...).Run(ctx, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		return 2
	}

	switch {
	case *jsonOut:
		err = report.WriteJSON(os.Stdout, result, 0)
	case *sarifOut:
		err = report.WriteSARIF(os.Stdout, result)
	case *cdxOut:
		err = report.WriteCycloneDX(os.Stdout, result)
	default:
		err = report.WriteText(os.Stdout, result, report.TextOptions{
			Color:      !*noColor && isTerminal(os.Stdout),
			SortByRisk: true,
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: rendering report: %v\n", err)
		return 2
	}

	if *trend && snapshots != nil {
		printTrend(ctx, snapshots, path, result)
	}

	if result.GateTriggered {
		return 1
	}
	return 0
}

func printTrend(ctx context.Context, snapshots *store.SnapshotStore, path string, result *depfence.Report) {
	prev, err := snapshots.Latest(ctx, path)
	if err != nil {
		slog.Warn("reading previous snapshot", "err", err)
	}
	for _, d := range store.Diff(prev, result) {
		direction := "improved"
		if d.Change > 0 {
			direction = "worsened"
		}
		fmt.Printf("trend: %s %s %d -> %d\n", d.Identifier.Name, direction, d.Previous, d.Current)
	}
	if err := snapshots.Save(ctx, path, result); err != nil {
		slog.Warn("saving snapshot", "err", err)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
