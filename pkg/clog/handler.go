package clog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
)

// Handler writes one line per entry:
//
//	LEVEL 2006-01-02 15:04:05 [ctx] message key=value ...
//
// Fields are written sorted by name so lines are stable for grepping.
// Entries below the handler's level are dropped here rather than by the apex
// logger, so the level can change while other goroutines log.
type Handler struct {
	mu     sync.Mutex
	level  atomic.Int32
	Writer io.WriteCloser
}

var levelToStrings = [...]string{
	log.DebugLevel: "DEBUG",
	log.InfoLevel:  "INFO",
	log.WarnLevel:  "WARN",
	log.ErrorLevel: "ERROR",
	log.FatalLevel: "FATAL",
}

func NewHandler(w io.WriteCloser) *Handler {
	h := &Handler{Writer: w}
	h.SetLevel(log.InfoLevel)
	return h
}

func (h *Handler) SetLevel(level log.Level) {
	h.level.Store(int32(level))
}

func (h *Handler) Level() log.Level {
	return log.Level(h.level.Load())
}

// SetOutput swaps the writer, closing the previous one unless it is stdout or stderr.
func (h *Handler) SetOutput(w io.WriteCloser) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeWriter()
	h.Writer = w
}

func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeWriter()
}

func (h *Handler) closeWriter() {
	if h.Writer == nil || h.Writer == os.Stdout || h.Writer == os.Stderr {
		return
	}

	_ = h.Writer.Close()
}

func (h *Handler) HandleLog(e *log.Entry) error {
	if e.Level < h.Level() {
		return nil
	}

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, "%5s %s", levelToStrings[e.Level], time.Now().Format(time.DateTime))

	if ctx, ok := e.Fields[CtxField]; ok {
		_, _ = fmt.Fprintf(&b, " [%v]", ctx)
	}

	_, _ = fmt.Fprintf(&b, " %s", e.Message)

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		if name != CtxField {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		_, _ = fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, b.String())

	return err
}
