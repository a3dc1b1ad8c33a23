package storagenode

import "time"

// DefaultPort is the FTP control port nodes listen on.
const DefaultPort = 21

// DefaultDialTimeout bounds the TCP connect plus server greeting.
const DefaultDialTimeout = 5 * time.Second

// Config controls how node sessions are opened. One Config is shared by
// every session the Dialer produces; all nodes in a deployment run the
// same FTP credentials and port.
type Config struct {
	// Username and Password authenticate every session.
	Username string
	Password string

	// Port is the FTP control port, DefaultPort when zero.
	Port int

	// TLS upgrades the control and data connections with AUTH TLS.
	// TLSInsecure additionally skips certificate verification, for nodes
	// running self-signed certificates.
	TLS         bool
	TLSInsecure bool

	// StorageRoot is the remote directory all payloads live under.
	StorageRoot string

	// DialTimeout bounds connection establishment. Transfers themselves
	// carry no deadline.
	DialTimeout time.Duration
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.StorageRoot == "" {
		c.StorageRoot = "/"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
}
