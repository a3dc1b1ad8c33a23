// Package storagenode speaks the bulk-transfer protocol of the storage
// fleet. Nodes expose plain FTP, so this package is a thin veneer over
// github.com/jlaffaye/ftp: the coordinator dials per operation and closes
// the session on return rather than pooling connections.
package storagenode

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"path"
	"strconv"

	"github.com/jlaffaye/ftp"

	"github.com/driftfs/driftfs/internal/fspath"
	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/pkg/payload"
)

// Dialer opens node sessions with shared credentials and TLS settings.
type Dialer struct {
	config Config
}

// NewDialer builds a Dialer, filling config defaults.
func NewDialer(cfg Config) *Dialer {
	cfg.ApplyDefaults()
	return &Dialer{config: cfg}
}

// Dial connects to the node's FTP endpoint and logs in. The context
// bounds connection establishment only; once a transfer starts it runs
// to completion or protocol failure.
func (d *Dialer) Dial(ctx context.Context, host string) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(d.config.Port))
	logger.DebugCtx(ctx, "connecting to storage node", logger.Node(host), "addr", addr)

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(d.config.DialTimeout),
	}
	if d.config.TLS {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         host,
			InsecureSkipVerify: d.config.TLSInsecure,
		}))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, &TransportError{Host: host, Op: "dial", Err: err}
	}
	if err := conn.Login(d.config.Username, d.config.Password); err != nil {
		_ = conn.Quit()
		return nil, &TransportError{Host: host, Op: "login", Err: err}
	}

	return &Client{
		host: host,
		root: fspath.Clean(d.config.StorageRoot),
		conn: conn,
	}, nil
}

// Client is one logged-in session with one storage node. It is not safe
// for concurrent use; FTP multiplexes nothing on the control connection.
type Client struct {
	host string
	root string
	conn *ftp.ServerConn
}

// Host returns the node this session is connected to.
func (c *Client) Host() string {
	return c.host
}

// Close ends the session.
func (c *Client) Close() error {
	if err := c.conn.Quit(); err != nil {
		return c.wrap("quit", err)
	}
	return nil
}

// CreateFile places an empty file, reserving the name on the node.
func (c *Client) CreateFile(dir, name string) error {
	if err := c.conn.Stor(c.remotePath(dir, name), bytes.NewReader(nil)); err != nil {
		return c.wrap("create file", err)
	}
	return nil
}

// WriteFile uploads the reader's bytes, replacing any previous payload.
func (c *Client) WriteFile(dir, name string, src io.Reader) error {
	if err := c.conn.Stor(c.remotePath(dir, name), src); err != nil {
		return c.wrap("write file", err)
	}
	return nil
}

// ReadFile downloads the payload into sink. A failure mid-transfer can
// leave sink partially written; callers decide whether to reset it.
func (c *Client) ReadFile(dir, name string, sink io.Writer) error {
	resp, err := c.conn.Retr(c.remotePath(dir, name))
	if err != nil {
		return c.wrap("read file", err)
	}

	_, copyErr := io.Copy(sink, resp)
	closeErr := resp.Close()
	if copyErr != nil {
		return c.wrap("read file", copyErr)
	}
	if closeErr != nil {
		return c.wrap("read file", closeErr)
	}
	return nil
}

// DeleteFile removes the payload from the node.
func (c *Client) DeleteFile(dir, name string) error {
	if err := c.conn.Delete(c.remotePath(dir, name)); err != nil {
		return c.wrap("delete file", err)
	}
	return nil
}

// FileSize reports the payload size in bytes.
func (c *Client) FileSize(dir, name string) (int64, error) {
	size, err := c.conn.FileSize(c.remotePath(dir, name))
	if err != nil {
		return 0, c.wrap("file size", err)
	}
	return size, nil
}

// CopyFile duplicates a payload on the node by spooling it through local
// disk; the protocol has no server-side copy. An empty newName keeps the
// source name.
func (c *Client) CopyFile(dir, name, newDir, newName string) error {
	if newName == "" {
		newName = name
	}

	spool, err := payload.NewSpool("")
	if err != nil {
		return c.wrap("copy file", err)
	}
	defer spool.Close()

	if err := c.ReadFile(dir, name, spool); err != nil {
		return err
	}
	if err := spool.Rewind(); err != nil {
		return c.wrap("copy file", err)
	}
	return c.WriteFile(newDir, newName, spool)
}

// MoveFile copies the payload to its new location, then deletes the
// original.
func (c *Client) MoveFile(dir, name, newDir, newName string) error {
	if err := c.CopyFile(dir, name, newDir, newName); err != nil {
		return err
	}
	return c.DeleteFile(dir, name)
}

// MakeDir creates a directory on the node.
func (c *Client) MakeDir(dir, name string) error {
	if err := c.conn.MakeDir(c.remotePath(dir, name)); err != nil {
		return c.wrap("make dir", err)
	}
	return nil
}

// ReadDir lists the entries of a directory as bare names.
func (c *Client) ReadDir(dir string) ([]string, error) {
	return c.listNames("read dir", c.remoteDir(dir))
}

// DeleteDir removes the named directory and everything below it.
func (c *Client) DeleteDir(dir, name string) error {
	return c.removeTree("delete dir", c.remotePath(dir, name))
}

// Clear removes every entry under the storage root, leaving the root
// directory itself in place.
func (c *Client) Clear() error {
	names, err := c.listNames("clear", c.root)
	if err != nil {
		return err
	}
	for _, name := range names {
		child := fspath.Join(c.root, name)
		if err := c.conn.ChangeDir(child); err == nil {
			if err := c.conn.ChangeDir(c.root); err != nil {
				return c.wrap("clear", err)
			}
			if err := c.removeTree("clear", child); err != nil {
				return err
			}
			continue
		}
		if err := c.conn.Delete(child); err != nil {
			return c.wrap("clear", err)
		}
	}
	return nil
}

// removeTree deletes the directory at p and everything below it, children
// before parents. The protocol has no type query, so each entry is probed
// with CWD: success means directory, failure means file. A concurrent
// upload into the subtree can leave a stray entry behind; the server then
// refuses the final RMD and the caller sees a TransportError.
func (c *Client) removeTree(op, p string) error {
	names, err := c.listNames(op, p)
	if err != nil {
		return err
	}
	for _, name := range names {
		child := fspath.Join(p, name)
		if err := c.conn.ChangeDir(child); err == nil {
			// Step back out so the server never has to remove its own
			// working directory.
			if err := c.conn.ChangeDir(c.root); err != nil {
				return c.wrap(op, err)
			}
			if err := c.removeTree(op, child); err != nil {
				return err
			}
			continue
		}
		if err := c.conn.Delete(child); err != nil {
			return c.wrap(op, err)
		}
	}
	if err := c.conn.RemoveDir(p); err != nil {
		return c.wrap(op, err)
	}
	return nil
}

// listNames lists remote directory p. Servers disagree on NLST output,
// some return absolute paths, so entries are normalized with path.Base.
func (c *Client) listNames(op, p string) ([]string, error) {
	entries, err := c.conn.NameList(p)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := path.Base(entry)
		if name == "." || name == ".." || name == "/" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// remoteDir maps a namespace directory path onto the node's filesystem.
func (c *Client) remoteDir(dir string) string {
	return fspath.Clean(c.root + "/" + dir)
}

func (c *Client) remotePath(dir, name string) string {
	return fspath.Join(c.remoteDir(dir), name)
}

func (c *Client) wrap(op string, err error) error {
	return &TransportError{Host: c.host, Op: op, Err: err}
}
