package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/driftfs/driftfs/pkg/metrics"
)

// coordinatorMetrics is the Prometheus implementation of metrics.CoordinatorMetrics.
type coordinatorMetrics struct {
	nodeOperations   *prometheus.CounterVec
	registeredNodes  prometheus.Gauge
	liveNodes        prometheus.Gauge
	clusterFreeSpace prometheus.Gauge
}

// NewCoordinatorMetrics creates a new Prometheus-backed CoordinatorMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewCoordinatorMetrics() metrics.CoordinatorMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &coordinatorMetrics{
		nodeOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftfs_node_operations_total",
				Help: "Total number of storage node operations by operation, host and status",
			},
			[]string{"op", "host", "status"}, // status: "ok", "error"
		),
		registeredNodes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "driftfs_registered_nodes",
				Help: "Number of storage nodes registered since startup",
			},
		),
		liveNodes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "driftfs_live_nodes",
				Help: "Number of storage nodes that answered the last liveness sweep",
			},
		),
		clusterFreeSpace: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "driftfs_cluster_free_bytes",
				Help: "Usable cluster capacity in bytes, free space across live nodes divided by the replica count",
			},
		),
	}
}

func (m *coordinatorMetrics) RecordNodeOperation(op string, host string, success bool) {
	if m == nil {
		return
	}

	status := "ok"
	if !success {
		status = "error"
	}
	m.nodeOperations.WithLabelValues(op, host, status).Inc()
}

func (m *coordinatorMetrics) SetRegisteredNodes(count int) {
	if m == nil {
		return
	}

	m.registeredNodes.Set(float64(count))
}

func (m *coordinatorMetrics) SetLiveNodes(count int) {
	if m == nil {
		return
	}

	m.liveNodes.Set(float64(count))
}

func (m *coordinatorMetrics) SetClusterFreeSpace(bytes uint64) {
	if m == nil {
		return
	}

	m.clusterFreeSpace.Set(float64(bytes))
}
