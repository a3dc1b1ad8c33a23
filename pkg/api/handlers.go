package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/internal/telemetry"
	"github.com/driftfs/driftfs/pkg/coordinator"
	"github.com/driftfs/driftfs/pkg/metrics"
	"github.com/driftfs/driftfs/pkg/payload"
)

// commandHandler serves the legacy /command/ surface: a single endpoint
// taking positional arguments in the query string and answering plain
// text. The shape is frozen by the deployed client fleet.
type commandHandler struct {
	coordinator *coordinator.Coordinator
	metrics     metrics.APIMetrics
}

func newCommandHandler(coord *coordinator.Coordinator, m metrics.APIMetrics) *commandHandler {
	return &commandHandler{coordinator: coord, metrics: m}
}

// Handle decodes and executes one command. Requests that cannot be
// decoded answer 400; commands that decode but fail to execute answer
// 200 with the legacy failure body, which is what old clients parse.
func (h *commandHandler) Handle(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r.URL.Query())
	if err != nil {
		logger.DebugCtx(r.Context(), "Rejected malformed command", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, args)
}

func (h *commandHandler) dispatch(w http.ResponseWriter, r *http.Request, args []string) {
	tag := args[0]
	start := time.Now()

	// The span covers the whole command including payload streaming.
	ctx, span := telemetry.StartCommandSpan(r.Context(), tag,
		telemetry.ClientAddr(r.RemoteAddr),
		telemetry.Arity(len(args)))
	defer span.End()
	ctx = telemetry.InjectTraceContext(ctx)

	arity := func(want ...int) bool {
		if slices.Contains(want, len(args)) {
			return true
		}
		http.Error(w, fmt.Sprintf("wrong number of arguments for %q", tag), http.StatusBadRequest)
		return false
	}

	var err error
	switch tag {
	case "init":
		if !arity(1) {
			return
		}
		err = h.coordinator.Init(ctx)

	case "create":
		if !arity(3) {
			return
		}
		err = h.coordinator.CreateFile(ctx, args[1], args[2])

	case "delete":
		if !arity(3) {
			return
		}
		err = h.coordinator.DeleteFile(ctx, args[1], args[2])

	case "makedir":
		if !arity(3) {
			return
		}
		err = h.coordinator.MakeDir(ctx, args[1], args[2])

	case "deletedir":
		if !arity(3) {
			return
		}
		err = h.coordinator.DeleteDir(ctx, args[1], args[2])

	case "copy", "move":
		// The fifth argument renames the file at its destination and
		// may be left off.
		if !arity(4, 5) {
			return
		}
		var newName string
		if len(args) == 5 {
			newName = args[4]
		}
		if tag == "copy" {
			err = h.coordinator.CopyFile(ctx, args[1], args[2], args[3], newName)
		} else {
			err = h.coordinator.MoveFile(ctx, args[1], args[2], args[3], newName)
		}

	case "info":
		if !arity(3) {
			return
		}
		h.fileSize(ctx, w, start, args[1], args[2])
		return

	case "readdir":
		if !arity(2) {
			return
		}
		h.readDir(ctx, w, start, args[1])
		return

	case "read":
		if !arity(3) {
			return
		}
		h.readFile(ctx, w, start, args[1], args[2])
		return

	case "write":
		if !arity(3) {
			return
		}
		h.writeFile(ctx, w, r, start, args[1], args[2])
		return

	default:
		http.Error(w, fmt.Sprintf("unknown command %q", tag), http.StatusBadRequest)
		return
	}

	if err != nil {
		h.fail(ctx, w, tag, start, err)
		return
	}
	h.record(tag, start, true)
	fmt.Fprint(w, commandOKBody)
}

// fail answers an executed-but-failed command. The legacy protocol
// reports these as 200 with a fixed body, so the status code carries no
// information; the log line has the real reason.
func (h *commandHandler) fail(ctx context.Context, w http.ResponseWriter, tag string, start time.Time, err error) {
	logger.WarnCtx(ctx, "Command failed", "command", tag, "error", err)
	telemetry.RecordError(ctx, err)
	h.record(tag, start, false)
	fmt.Fprint(w, commandFailedBody)
}

func (h *commandHandler) record(tag string, start time.Time, ok bool) {
	if h.metrics != nil {
		h.metrics.RecordCommand(tag, time.Since(start), ok)
	}
}

// fileSize answers the info command with the size in bytes as decimal
// text. When every replica fails to answer, the size is unknown and
// the body is -1 rather than a failure; that is the protocol.
func (h *commandHandler) fileSize(ctx context.Context, w http.ResponseWriter, start time.Time, dir, name string) {
	size, err := h.coordinator.FileSize(ctx, dir, name)
	if err != nil {
		h.fail(ctx, w, "info", start, err)
		return
	}
	h.record("info", start, true)
	fmt.Fprint(w, strconv.FormatInt(size, 10))
}

// readDir answers with a bare JSON array of entries, not the Response
// envelope: the legacy client parses the body directly.
func (h *commandHandler) readDir(ctx context.Context, w http.ResponseWriter, start time.Time, dir string) {
	entries, err := h.coordinator.ReadDir(ctx, dir)
	if err != nil {
		h.fail(ctx, w, "readdir", start, err)
		return
	}
	h.record("readdir", start, true)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		logger.DebugCtx(ctx, "Client went away during listing", "error", err)
	}
}

// readFile spools the file off a replica and streams it back as an
// attachment. Spooling first means a replica dying mid-transfer turns
// into a fall-through to the next one instead of a truncated download.
func (h *commandHandler) readFile(ctx context.Context, w http.ResponseWriter, start time.Time, dir, name string) {
	sink, err := payload.NewSpool("")
	if err != nil {
		h.fail(ctx, w, "read", start, err)
		return
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.DebugCtx(ctx, "Failed to remove download spool", "error", err)
		}
	}()

	if err := h.coordinator.ReadFile(ctx, dir, name, sink); err != nil {
		h.fail(ctx, w, "read", start, err)
		return
	}
	h.record("read", start, true)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if size, err := sink.Size(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	n, err := io.Copy(w, sink)
	if err != nil {
		logger.DebugCtx(ctx, "Client went away during download", "error", err)
	}
	telemetry.SetAttributes(ctx, telemetry.BytesRead(n))
	if h.metrics != nil {
		h.metrics.RecordBytesTransferred("download", uint64(n))
	}
}

// writeFile spools the uploaded bytes and hands them to the
// coordinator, which replays the spool once per replica. The request
// body itself can only be read once.
func (h *commandHandler) writeFile(ctx context.Context, w http.ResponseWriter, r *http.Request, start time.Time, dir, name string) {
	src, err := payload.NewSpool("")
	if err != nil {
		h.fail(ctx, w, "write", start, err)
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.DebugCtx(ctx, "Failed to remove upload spool", "error", err)
		}
	}()

	if err := fillFromMultipart(src, r); err != nil {
		logger.DebugCtx(ctx, "Rejected upload body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := src.Rewind(); err != nil {
		h.fail(ctx, w, "write", start, err)
		return
	}

	if err := h.coordinator.WriteFile(ctx, dir, name, src); err != nil {
		h.fail(ctx, w, "write", start, err)
		return
	}
	h.record("write", start, true)
	if size, err := src.Size(); err == nil {
		telemetry.SetAttributes(ctx, telemetry.BytesWritten(size))
		if h.metrics != nil {
			h.metrics.RecordBytesTransferred("upload", uint64(size))
		}
	}
	fmt.Fprint(w, commandOKBody)
}

// fillFromMultipart drains the multipart "file" field into dst. Parts
// under other names are skipped, matching how the old server read its
// uploads.
func fillFromMultipart(dst io.Writer, r *http.Request) error {
	mr, err := r.MultipartReader()
	if err != nil {
		return fmt.Errorf("multipart body required: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return errors.New(`multipart field "file" missing`)
		}
		if err != nil {
			return fmt.Errorf("malformed multipart body: %w", err)
		}
		if part.FormName() != "file" {
			continue
		}
		if _, err := io.Copy(dst, part); err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		return nil
	}
}

// connectHandler serves /connect/: storage nodes announcing themselves.
type connectHandler struct {
	coordinator *coordinator.Coordinator
}

// Handle registers the caller as a storage node and replays the
// directory skeleton onto it. The answer is 202 with no body no matter
// how the bootstrap went: the node is registered either way, and the
// probe loop decides whether it serves traffic.
func (h *connectHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Bootstrap failures are logged by the coordinator.
	_ = h.coordinator.AddStorageServer(r.Context(), clientHost(r))
	w.WriteHeader(http.StatusAccepted)
}

// clientHost works out which address to dial the announcing node on:
// the first X-Forwarded-For entry when a proxy added one, otherwise the
// socket peer, with any port stripped.
func clientHost(r *http.Request) string {
	host := r.RemoteAddr
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		host = strings.TrimSpace(first)
	}
	// SplitHostPort refuses bare hosts; those pass through unchanged.
	if bare, _, err := net.SplitHostPort(host); err == nil {
		host = bare
	}
	return host
}
