package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxBodyLogSize = 1024

// DebugLogger dumps requests and responses in verbose mode.
// A nil *DebugLogger is valid and logs nothing.
type DebugLogger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewDebugLogger(out io.Writer) *DebugLogger {
	return &DebugLogger{out: out}
}

// LogRequest prints the request line, headers and body. Multipart bodies are
// summarised by size because they carry binary uploads.
func (d *DebugLogger) LogRequest(actorID int, target string, req *http.Request) {
	if d == nil {
		return
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "\n[Actor %d] >>> REQUEST: %s\n", actorID, target)
	fmt.Fprintf(&buf, "  %s %s\n", req.Method, req.URL.String())
	writeHeaders(&buf, req.Header)

	if req.Body != nil && req.Body != http.NoBody {
		if isMultipart(req.Header.Get("Content-Type")) {
			fmt.Fprintf(&buf, "  Body: <multipart, %d bytes>\n", req.ContentLength)
		} else if body, err := io.ReadAll(req.Body); err == nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > 0 {
				fmt.Fprintf(&buf, "  Body: %s\n", truncateBody(body))
			}
		}
	}

	d.write(buf.Bytes())
}

func (d *DebugLogger) LogResponse(actorID int, target string, resp *http.Response, body []byte, duration time.Duration) {
	if d == nil {
		return
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[Actor %d] <<< RESPONSE: %s (%s)\n", actorID, target, duration.Round(time.Millisecond))
	fmt.Fprintf(&buf, "  Status: %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	writeHeaders(&buf, resp.Header)

	if len(body) > 0 {
		fmt.Fprintf(&buf, "  Body: %s\n", truncateBody(body))
	}
	d.write(buf.Bytes())
}

func (d *DebugLogger) LogError(actorID int, target string, errMsg string, duration time.Duration) {
	if d == nil {
		return
	}
	d.write([]byte(fmt.Sprintf("[Actor %d] !!! ERROR: %s (%s)\n  %s\n",
		actorID, target, duration.Round(time.Millisecond), errMsg)))
}

func (d *DebugLogger) write(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = d.out.Write(p)
}

// writeHeaders prints headers sorted by name, masking bearer tokens.
func writeHeaders(buf *bytes.Buffer, h http.Header) {
	if len(h) == 0 {
		return
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	buf.WriteString("  Headers:\n")
	for _, name := range names {
		value := strings.Join(h[name], ", ")
		if strings.EqualFold(name, "Authorization") {
			value = maskAuthorization(value)
		}
		fmt.Fprintf(buf, "    %s: %s\n", name, value)
	}
}

func maskAuthorization(v string) string {
	scheme, token, ok := strings.Cut(v, " ")
	if !ok {
		return "***"
	}
	if len(token) > 8 {
		token = token[:8]
	}
	return scheme + " " + token + "***"
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

func truncateBody(body []byte) string {
	if len(body) <= maxBodyLogSize {
		return string(body)
	}
	return string(body[:maxBodyLogSize]) + fmt.Sprintf("... (truncated, %d bytes total)", len(body))
}
