// Package registry tracks the storage node fleet. Nodes announce
// themselves over the HTTP API; the registry remembers every host ever
// seen and answers liveness and capacity questions about them through a
// pluggable Prober.
package registry

import (
	"context"
	"sync"
)

// Registry is the thread-safe record of known storage node hosts.
// Registration order is preserved: placement and fan-out iterate hosts in
// the order they first announced themselves, so replica lists stay stable
// across calls.
//
// Example usage:
//
//	reg := registry.NewRegistry(registry.NewHTTPProber(proberCfg))
//	reg.Add("10.0.0.7")
//	for _, host := range reg.Live(ctx) {
//	    ...
//	}
type Registry struct {
	mu     sync.RWMutex
	hosts  []string
	seen   map[string]struct{}
	prober Prober
}

// NewRegistry creates an empty registry probing through prober.
func NewRegistry(prober Prober) *Registry {
	return &Registry{
		seen:   make(map[string]struct{}),
		prober: prober,
	}
}

// Add registers a host, returning false when it was already known.
func (r *Registry) Add(host string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seen[host]; exists {
		return false
	}
	r.seen[host] = struct{}{}
	r.hosts = append(r.hosts, host)
	return true
}

// Hosts returns a snapshot of every registered host in registration
// order.
func (r *Registry) Hosts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.hosts...)
}

// Count returns the number of registered hosts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.hosts)
}

// Live returns the subset of hosts currently answering health probes, in
// registration order. Probes run concurrently, so a dead node costs at
// most one probe timeout regardless of fleet size.
func (r *Registry) Live(ctx context.Context) []string {
	hosts := r.Hosts()

	alive := make([]bool, len(hosts))
	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			alive[i] = r.prober.Ping(ctx, host)
		}()
	}
	wg.Wait()

	live := make([]string, 0, len(hosts))
	for i, host := range hosts {
		if alive[i] {
			live = append(live, host)
		}
	}
	return live
}

// SpaceAvailable reports the free bytes a single host advertises, zero
// when the host is unreachable.
func (r *Registry) SpaceAvailable(ctx context.Context, host string) uint64 {
	return r.prober.SpaceAvailable(ctx, host)
}
