package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/llxisdsh/cohash"
	"github.com/llxisdsh/cohash/internal/benchcfg"
)

func scenarioCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenario",
		Usage: "run the reference scenarios and verify their outcome",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "initial", Usage: "override scenario.initial"},
			&cli.IntFlag{Name: "keys", Usage: "override scenario.keys"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c).Scenario
			if n := c.Int("initial"); n > 0 {
				cfg.Initial = n
			}
			if n := c.Int("keys"); n > 0 {
				cfg.Keys = n
			}
			return runScenarios(c.Context, loggerFrom(c), cfg)
		},
	}
}

func runScenarios(ctx context.Context, log hclog.Logger, cfg benchcfg.ScenarioConfig) error {
	steps := []struct {
		name string
		run  func(context.Context, hclog.Logger) error
	}{
		{"set", setScenario},
		{"map", mapScenario},
		{"multimap", multimapScenario},
		{"dynamic_map", func(ctx context.Context, log hclog.Logger) error {
			return dynamicMapScenario(ctx, log, cfg.Initial, cfg.Keys)
		}},
	}
	for _, s := range steps {
		if err := s.run(ctx, log.Named(s.name)); err != nil {
			return fmt.Errorf("scenario %s: %w", s.name, err)
		}
		log.Info("scenario passed", "name", s.name)
	}
	return nil
}

func setScenario(ctx context.Context, log hclog.Logger) error {
	set, err := cohash.NewStaticSet[int32](400, -1, cohash.WithLogger[int32](log))
	if err != nil {
		return err
	}
	defer set.Close()

	keys := make([]int32, 400)
	for i := range keys {
		keys[i] = int32(i)
	}
	n, err := set.Insert(ctx, keys)
	if err != nil {
		return err
	}
	if n != 400 || set.Size() != 400 {
		return fmt.Errorf("inserted %d, size %d, want 400", n, set.Size())
	}
	if err := set.Clear(ctx); err != nil {
		return err
	}
	if set.Size() != 0 {
		return fmt.Errorf("size %d after clear", set.Size())
	}
	return nil
}

func mapScenario(ctx context.Context, log hclog.Logger) error {
	m, err := cohash.NewStaticMap[int32, int32](16, -1, 0, cohash.WithLogger[int32](log))
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := m.Insert(ctx, []int32{7}, []int32{42}); err != nil {
		return err
	}
	got, err := m.Find(ctx, []int32{7, 8})
	if err != nil {
		return err
	}
	if got[0] != 42 || got[1] != 0 {
		return fmt.Errorf("find(7, 8) = %v, want [42 0]", got)
	}
	return nil
}

func multimapScenario(ctx context.Context, log hclog.Logger) error {
	m, err := cohash.NewStaticMultimap[int64, int64](64, -1, -1, cohash.WithLogger[int64](log))
	if err != nil {
		return err
	}
	defer m.Close()

	keys := []int64{5, 1, 5, 2, 5, 3}
	values := []int64{100, 10, 200, 20, 300, 30}
	if _, err := m.Insert(ctx, keys, values); err != nil {
		return err
	}
	count, err := m.Count(ctx, []int64{5})
	if err != nil {
		return err
	}
	if count != 3 {
		return fmt.Errorf("count(5) = %d, want 3", count)
	}
	pairs, err := m.FindAll(ctx, []int64{5})
	if err != nil {
		return err
	}
	got := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		got = append(got, p.Value)
	}
	slices.Sort(got)
	if !slices.Equal(got, []int64{100, 200, 300}) {
		return fmt.Errorf("find_all(5) = %v", got)
	}
	if absent, err := m.Count(ctx, []int64{42}); err != nil || absent != 0 {
		return fmt.Errorf("count(42) = %d, %v", absent, err)
	}
	return nil
}

func dynamicMapScenario(ctx context.Context, log hclog.Logger, initial, keys int) error {
	m, err := cohash.NewDynamicMap[int64, int64](initial, -1, -1, cohash.WithLogger[int64](log))
	if err != nil {
		return err
	}
	defer m.Close()

	ks := make([]int64, keys)
	vs := make([]int64, keys)
	for i := range ks {
		ks[i] = int64(i)
		vs[i] = int64(i) * 2
	}
	n, err := m.Insert(ctx, ks, vs)
	if err != nil {
		return err
	}
	if n != keys {
		return fmt.Errorf("inserted %d of %d keys", n, keys)
	}
	if initial*2 < keys && m.Stats().Growths == 0 {
		return fmt.Errorf("no growth after %d keys into %d slots", keys, initial)
	}
	found, err := m.Find(ctx, ks)
	if err != nil {
		return err
	}
	for i, v := range found {
		if v != vs[i] {
			return fmt.Errorf("find(%d) = %d, want %d", ks[i], v, vs[i])
		}
	}
	absent := make([]int64, 1024)
	for i := range absent {
		absent[i] = int64(keys + i)
	}
	hits, err := m.Contains(ctx, absent)
	if err != nil {
		return err
	}
	if i := slices.Index(hits, true); i >= 0 {
		return fmt.Errorf("contains(%d) for a key never inserted", absent[i])
	}
	log.Info("dynamic map done", "submaps", m.Submaps(), "capacity", m.Capacity())
	return nil
}
