package metrics

// CoordinatorMetrics provides observability for placement and
// storage-node fan-out.
//
// This interface is optional - pass nil to disable metrics collection
// with zero overhead.
type CoordinatorMetrics interface {
	// RecordNodeOperation records one storage node interaction.
	//
	// Parameters:
	//   - op: operation name (e.g., "write file", "clear")
	//   - host: node the operation targeted
	//   - success: whether the node accepted the operation
	RecordNodeOperation(op string, host string, success bool)

	// SetRegisteredNodes updates the registered node count.
	SetRegisteredNodes(count int)

	// SetLiveNodes updates the live node count observed by the most
	// recent placement or capacity query.
	SetLiveNodes(count int)

	// SetClusterFreeSpace updates the usable cluster capacity in bytes,
	// as computed by the most recent capacity query.
	SetClusterFreeSpace(bytes uint64)
}
