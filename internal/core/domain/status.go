package domain

import "time"

// ToolPresence describes one tool's detected storage on this machine.
type ToolPresence struct {
	Tool      Tool
	Locations []SourceLocation
}

// Installed reports whether any storage was found for the tool.
func (p ToolPresence) Installed() bool {
	return len(p.Locations) > 0
}

// CacheUsage is one cache's occupancy, for status reporting.
type CacheUsage struct {
	Name      string
	Items     int
	Bytes     int64
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}

// PoolUsage is one database path's connection usage, for status reporting.
type PoolUsage struct {
	Path  string
	Live  int
	Idle  int
	Opens uint64
}

// StatusReport snapshots the runtime for diagnostic surfaces.
type StatusReport struct {
	Version      string
	ConfigPath   string
	GitAvailable bool
	Tools        []ToolPresence
	Caches       []CacheUsage
	Pools        []PoolUsage
	GeneratedAt  time.Time
}
