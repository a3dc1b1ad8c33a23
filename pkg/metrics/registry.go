// Package metrics defines the observability interfaces of the name
// server and owns the process-wide Prometheus registry. Subsystems take
// these interfaces as optional dependencies; passing nil disables
// collection with zero overhead. The prometheus subpackage provides the
// real implementations.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	mu  sync.RWMutex
	reg *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry with the
// standard Go runtime and process collectors. Constructors in the
// prometheus subpackage return disabled collectors until this has been
// called. Calling it twice is a no-op.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	if reg != nil {
		return
	}
	reg = prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether the registry has been initialized.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()

	return reg != nil
}

// GetRegistry returns the process registry, nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()

	return reg
}
