package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const esBodyLimit = 1000

// ESTransport 记录资料索引的请求；慢请求与非 2xx 响应提升为 Warn
type ESTransport struct {
	Transport     http.RoundTripper
	SlowThreshold time.Duration
}

func NewESTransport(next http.RoundTripper, slowThreshold time.Duration) *ESTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if slowThreshold <= 0 {
		slowThreshold = 500 * time.Millisecond
	}
	return &ESTransport{Transport: next, SlowThreshold: slowThreshold}
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	reqBody := peekBody(&req.Body)

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	u := *req.URL
	u.User = nil
	fields := []any{
		log.String("method", req.Method),
		log.String("url", u.String()),
		log.Duration("latency", elapsed),
		log.String("req_body", truncate(reqBody)),
	}
	if err != nil {
		log.ErrorContext(req.Context(), "ES_QUERY_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	fields = append(fields, log.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= http.StatusBadRequest:
		fields = append(fields, log.String("res_body", truncate(peekBody(&resp.Body))))
		log.WarnContext(req.Context(), "ES_QUERY_FAILED", fields...)
	case elapsed >= t.SlowThreshold:
		log.WarnContext(req.Context(), "ES_QUERY_SLOW", fields...)
	default:
		log.DebugContext(req.Context(), "ES_QUERY", fields...)
	}
	return resp, nil
}

// peekBody 读取完整 body 后放回，供后续处理继续读取
func peekBody(body *io.ReadCloser) []byte {
	if *body == nil || *body == http.NoBody {
		return nil
	}
	b, _ := io.ReadAll(*body)
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(b))
	return b
}

func truncate(b []byte) string {
	if len(b) > esBodyLimit {
		return string(b[:esBodyLimit]) + "...[truncated]"
	}
	return string(b)
}
