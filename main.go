package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"brcstream/internal/brc"
	"brcstream/internal/parallel"
	"brcstream/internal/source"
)

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	nworkers := flag.Int("n", 1, "number of workers, 1 streams through a single tokenizer")
	chunkSize := flag.Int("chunksize", 256*1024, "size of the chunks read from the input")
	chunkerChannelCap := flag.Int("channel-cap", 256, "capacity of the chunk channel")
	hasher := flag.String("hash", brc.HasherRolling, "station key hasher: rolling, xxhash, xxh3 or murmur3")
	buckets := flag.Uint64("buckets", brc.DefaultBuckets, "initial number of buckets of the station table, a power of 2")
	useMmap := flag.Bool("mmap", false, "mmap the input file")
	sections := flag.Bool("sections", false, "with -mmap and -n > 1, split the file in one section per worker instead of chunking it")
	verify := flag.Bool("verify", false, "check the result against the line based baseline")
	inputFile := flag.String("f", "data/10m.txt", "input file")
	var loglevel slog.Level
	flag.TextVar(&loglevel, "loglevel", slog.LevelInfo, "loglevel")

	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loglevel,
	})))

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := parallel.Config{
		Config: brc.Config{
			Hasher:  *hasher,
			Buckets: *buckets,
		},
		Workers:    *nworkers,
		ChunkSize:  *chunkSize,
		ChannelCap: *chunkerChannelCap,
	}

	start := time.Now()
	res, err := run(ctx, *inputFile, cfg, *useMmap, *sections)
	if err != nil && !errors.Is(err, brc.ErrTruncatedStream) {
		log.Fatal(err)
	}
	if err != nil {
		slog.Warn("input is truncated, last record ignored", "err", err)
	}

	stats := res.Stats()
	slog.Info("done",
		"elapsed", time.Since(start),
		"bytes", stats.Bytes,
		"records", stats.Records,
		"stations", stats.Stations,
		"collisions", stats.Collisions,
	)

	out := res.String()
	if *verify {
		if err := verifyBaseline(*inputFile, out); err != nil {
			log.Fatal(err)
		}
		slog.Info("baseline agrees")
	}
	fmt.Println(out)
}

func run(ctx context.Context, inputFile string, cfg parallel.Config, useMmap, sections bool) (*brc.Result, error) {
	if useMmap {
		m, err := source.Mmap(inputFile)
		if err != nil {
			return nil, err
		}
		defer m.Close()

		switch {
		case cfg.Workers <= 1:
			return brc.Aggregate(ctx, m.Chunks(cfg.ChunkSize), cfg.Config)
		case sections:
			return parallel.RunSections(ctx, m.Sections(cfg.Workers), cfg)
		default:
			return parallel.Run(ctx, m.Reader(), cfg)
		}
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if cfg.Workers <= 1 {
		return brc.Aggregate(ctx, source.Reader(f, cfg.ChunkSize), cfg.Config)
	}
	return parallel.Run(ctx, f, cfg)
}

func verifyBaseline(inputFile, out string) error {
	f, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := brc.Baseline(f)
	if err != nil && !errors.Is(err, brc.ErrTruncatedStream) {
		return fmt.Errorf("baseline: %w", err)
	}
	if expected := brc.Format(table.All()); expected != out {
		return fmt.Errorf("result differs from baseline:\n got: %s\nwant: %s", out, expected)
	}
	return nil
}
