// Command raven-perft counts the legal move tree of a position.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/board"
	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/fen"
	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/perft"
	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/store"
)

// autoCache selects the platform data directory for -cache.
const autoCache = "auto"

type config struct {
	fen        string
	depth      int
	divide     bool
	threads    int
	cache      string
	cpuprofile string
	verbose    bool
}

// parseConfig reads the command line. Options left unset on the command
// line fall back to their environment variables.
func parseConfig(args []string, getenv func(string) string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("raven-perft", flag.ContinueOnError)
	fs.StringVar(&cfg.fen, "fen", fen.StartFEN, "position to search")
	fs.IntVar(&cfg.depth, "depth", 5, "search depth in plies")
	fs.BoolVar(&cfg.divide, "divide", false, "print the node count of every root move")
	fs.IntVar(&cfg.threads, "threads", 0, "worker count, 0 for one per CPU (env RAVEN_THREADS)")
	fs.StringVar(&cfg.cache, "cache", "", `perft cache directory, "auto" for the default location (env RAVEN_PERFT_CACHE)`)
	fs.StringVar(&cfg.cpuprofile, "cpuprofile", "", "write cpu profile to file (env CPUPROFILE)")
	fs.BoolVar(&cfg.verbose, "verbose", false, "log cache database messages")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if v := getenv("RAVEN_THREADS"); v != "" && !set["threads"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return config{}, fmt.Errorf("RAVEN_THREADS: %w", err)
		}
		cfg.threads = n
	}
	if v := getenv("RAVEN_PERFT_CACHE"); v != "" && !set["cache"] {
		cfg.cache = v
	}
	if cfg.cpuprofile == "" {
		cfg.cpuprofile = getenv("CPUPROFILE")
	}

	if cfg.depth < 1 {
		return config{}, fmt.Errorf("depth must be at least 1, got %d", cfg.depth)
	}
	if cfg.threads < 0 {
		return config{}, fmt.Errorf("threads must not be negative, got %d", cfg.threads)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config, w io.Writer) error {
	if cfg.cpuprofile != "" {
		f, err := os.Create(cfg.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", cfg.cpuprofile)
	}

	board.Init()

	pos, err := fen.Parse(cfg.fen)
	if err != nil {
		return err
	}

	opts := []perft.Option{perft.WithThreads(cfg.threads)}
	if cfg.cache != "" {
		s, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		opts = append(opts, perft.WithCache(s))
	}

	start := time.Now()
	res, err := perft.NewRunner(opts...).Run(ctx, pos, cfg.depth)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if cfg.divide {
		for _, mc := range res.Moves {
			fmt.Fprintln(w, mc)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Nodes searched: %d\n", res.Nodes)

	nps := float64(res.Nodes) / max(elapsed.Seconds(), 1e-9)
	log.Printf("depth %d: %d nodes in %v (%.0f nps, %d/%d root moves cached)",
		cfg.depth, res.Nodes, elapsed.Round(time.Millisecond), nps, res.CacheHits, len(res.Moves))
	return nil
}

func openCache(cfg config) (*store.Store, error) {
	dir := cfg.cache
	if dir == autoCache {
		var err error
		if dir, err = store.DefaultDir(); err != nil {
			return nil, err
		}
	}

	var opts []store.Option
	if cfg.verbose {
		opts = append(opts, store.WithLogger(log.Default()))
	}
	log.Printf("Perft cache: %s", dir)
	return store.Open(dir, opts...)
}
