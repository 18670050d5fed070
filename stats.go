package cohash

// Stats is a point-in-time snapshot of a container.
type Stats struct {
	// Size is the number of occupied slots.
	Size int
	// Capacity is the total number of slots.
	Capacity int
	// LoadFactor is Size divided by Capacity.
	LoadFactor float64
	// Submaps is the number of slot arrays; 1 for fixed-capacity containers.
	Submaps int
	// Growths counts DynamicMap grow transitions.
	Growths int
	Probing string
}

// StatsSource is implemented by every container.
type StatsSource interface {
	Stats() Stats
}

func loadFactor(size, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return float64(size) / float64(capacity)
}
