package cohash

import "github.com/prometheus/client_golang/prometheus"

// Collector exports the Stats of one container as Prometheus gauges.
type Collector struct {
	src StatsSource

	size       *prometheus.Desc
	capacity   *prometheus.Desc
	loadFactor *prometheus.Desc
	submaps    *prometheus.Desc
	growths    *prometheus.Desc
}

// NewCollector creates a collector for src, labelled container=name.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"container": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("cohash", "", metric), help, nil, labels)
	}
	return &Collector{
		src:        src,
		size:       desc("size", "Number of occupied slots."),
		capacity:   desc("capacity_slots", "Total number of slots."),
		loadFactor: desc("load_factor", "Occupied slots divided by capacity."),
		submaps:    desc("submaps", "Number of slot arrays."),
		growths:    desc("growths_total", "Grow transitions since creation."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.capacity
	ch <- c.loadFactor
	ch <- c.submaps
	ch <- c.growths
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, s.LoadFactor)
	ch <- prometheus.MustNewConstMetric(c.submaps, prometheus.GaugeValue, float64(s.Submaps))
	ch <- prometheus.MustNewConstMetric(c.growths, prometheus.CounterValue, float64(s.Growths))
}
