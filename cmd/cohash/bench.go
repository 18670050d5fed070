package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/llxisdsh/cohash"
	"github.com/llxisdsh/cohash/internal/benchcfg"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "measure bulk insert and find throughput of a static map",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "keys", Usage: "override bench.keys"},
			&cli.IntFlag{Name: "workers", Usage: "override bench.workers"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c).Bench
			if n := c.Int("keys"); n > 0 {
				cfg.Keys = n
			}
			if n := c.Int("workers"); n > 0 {
				cfg.Workers = n
			}
			return runBench(c.Context, loggerFrom(c), cfg, c.App.Writer)
		},
	}
}

func benchOptions(cfg benchcfg.BenchConfig, log hclog.Logger) []cohash.Option[uint64] {
	var probing cohash.ProbingScheme = cohash.LinearProbing{GroupSize: cfg.Group, WindowSize: cfg.Window}
	if cfg.Probing == "double" {
		probing = cohash.DoubleHashing{GroupSize: cfg.Group, WindowSize: cfg.Window}
	}
	opts := []cohash.Option[uint64]{
		cohash.WithProbing[uint64](probing),
		cohash.WithLogger[uint64](log),
	}
	if cfg.Workers > 0 {
		opts = append(opts, cohash.WithWorkers[uint64](cfg.Workers))
	}
	if cfg.Allocator == "mmap" {
		opts = append(opts, cohash.WithAllocator[uint64](cohash.MmapAllocator{}))
	}
	return opts
}

func runBench(ctx context.Context, log hclog.Logger, cfg benchcfg.BenchConfig, w io.Writer) error {
	capacity := int(float64(cfg.Keys) / cfg.LoadFactor)
	m, err := cohash.NewStaticMap[uint64, uint64](capacity, ^uint64(0), ^uint64(0), benchOptions(cfg, log)...)
	if err != nil {
		return err
	}
	defer m.Close()

	keys := make([]uint64, cfg.Keys)
	for i := range keys {
		keys[i] = uint64(i) * 0x9E3779B97F4A7C15
	}

	start := time.Now()
	n, err := m.Insert(ctx, keys, keys)
	if err != nil {
		return err
	}
	insertTime := time.Since(start)

	start = time.Now()
	values, err := m.Find(ctx, keys)
	if err != nil {
		return err
	}
	findTime := time.Since(start)
	for i, v := range values {
		if v != keys[i] {
			return fmt.Errorf("find(%d) = %d", keys[i], v)
		}
	}

	log.Info("bench done",
		"keys", cfg.Keys, "inserted", n, "capacity", m.Capacity(),
		"insert_mkeys_per_s", mops(cfg.Keys, insertTime),
		"find_mkeys_per_s", mops(cfg.Keys, findTime))

	reg := prometheus.NewRegistry()
	if err := reg.Register(cohash.NewCollector("bench", m)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func mops(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds() / 1e6
}
