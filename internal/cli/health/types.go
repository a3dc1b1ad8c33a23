// Package health declares the wire shapes of the server's health
// endpoints for CLI consumption. They are kept separate from the api
// package so the CLI does not pull in the server stack.
package health

// Response is the envelope of GET /health.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service   string `json:"service"`
		StartedAt string `json:"started_at"`
		Uptime    string `json:"uptime"`
		UptimeSec int64  `json:"uptime_sec"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// ReadyResponse is the envelope of GET /health/ready.
type ReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		MetadataStore string `json:"metadata_store"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// NodesResponse is the envelope of GET /health/nodes.
type NodesResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Nodes          []NodeStatus `json:"nodes"`
		Count          int          `json:"count"`
		AvailableSpace uint64       `json:"available_space"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// NodeStatus is one storage node entry in NodesResponse.
type NodeStatus struct {
	Host  string `json:"host"`
	Live  bool   `json:"live"`
	Space uint64 `json:"space"`
}
