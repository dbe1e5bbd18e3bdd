package logger

import (
	"Novii/internal/api/config"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type accessEntry struct {
	Time        string `json:"time"`
	Level       string `json:"level"`
	Msg         string `json:"msg"`
	TraceID     string `json:"trace_id,omitempty"`
	ProfileID   string `json:"profile_id,omitempty"`
	LogToken    string `json:"log_token,omitempty"`
	TargetIndex string `json:"target_index,omitempty"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	ClientIP    string `json:"client_ip"`
	Status      int    `json:"status"`
	Latency     string `json:"latency"`
	Error       string `json:"error,omitempty"`
}

// SetupGin 注册访问日志与 panic 恢复中间件
func SetupGin(r *gin.Engine, cfg config.LogConfig) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output: LogWriter,
		Formatter: func(p gin.LogFormatterParams) string {
			return formatAccess(p, cfg)
		},
	}))
	r.Use(gin.Recovery())
}

func formatAccess(p gin.LogFormatterParams, cfg config.LogConfig) string {
	entry := accessEntry{
		Time:        p.TimeStamp.Format(time.RFC3339),
		Level:       "INFO",
		Msg:         "GIN_ACCESS",
		TraceID:     lookupString(p, TraceIDKey),
		LogToken:    cfg.RemoteToken,
		TargetIndex: cfg.RemoteIndex,
		Method:      p.Method,
		Path:        p.Path,
		ClientIP:    p.ClientIP,
		Status:      p.StatusCode,
		Latency:     p.Latency.String(),
		Error:       p.ErrorMessage,
	}
	if p.StatusCode >= 500 {
		entry.Level = "ERROR"
	}
	if p.Request != nil {
		if id, ok := p.Request.Context().Value(ProfileIDKey).(uuid.UUID); ok && id != uuid.Nil {
			entry.ProfileID = id.String()
		}
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return ""
	}
	return string(b) + "\n"
}

func lookupString(p gin.LogFormatterParams, key string) string {
	if id, ok := p.Keys[key].(string); ok && id != "" {
		return id
	}
	if p.Request != nil {
		if id, ok := p.Request.Context().Value(key).(string); ok {
			return id
		}
	}
	return ""
}
