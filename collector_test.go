package cohash

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	s, err := NewStaticSet[int](100, -1, WithProbing[int](LinearProbing{1, 1}))
	require.NoError(t, err)
	_, err = s.Insert(ctx(t), sequence[int](25))
	require.NoError(t, err)

	c := NewCollector("ids", s)
	assert.Equal(t, 5, testutil.CollectAndCount(c))

	expected := `
# HELP cohash_capacity_slots Total number of slots.
# TYPE cohash_capacity_slots gauge
cohash_capacity_slots{container="ids"} 100
# HELP cohash_load_factor Occupied slots divided by capacity.
# TYPE cohash_load_factor gauge
cohash_load_factor{container="ids"} 0.25
# HELP cohash_size Number of occupied slots.
# TYPE cohash_size gauge
cohash_size{container="ids"} 25
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"cohash_size", "cohash_capacity_slots", "cohash_load_factor"))
}

func TestCollector_DynamicMap(t *testing.T) {
	m, err := NewDynamicMap[int, int](64, -1, -1, WithMinInsertSize[int](4))
	require.NoError(t, err)
	keys := sequence[int](200)
	_, err = m.Insert(ctx(t), keys, keys)
	require.NoError(t, err)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector("sessions", m)))

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := make(map[string]float64)
	for _, mf := range families {
		metric := mf.GetMetric()[0]
		if g := metric.GetGauge(); g != nil {
			byName[mf.GetName()] = g.GetValue()
		} else {
			byName[mf.GetName()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 200.0, byName["cohash_size"])
	assert.Greater(t, byName["cohash_submaps"], 1.0)
	assert.Equal(t, byName["cohash_submaps"]-1, byName["cohash_growths_total"])
}
