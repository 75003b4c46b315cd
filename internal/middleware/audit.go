package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Nina932/nyx/internal/services"
	"github.com/gin-gonic/gin"
)

const maxAuditBody = 2000

var sensitiveKeys = []string{"password", "token", "secret", "api_key", "apikey"}

// AuditLog records write operations (POST/PUT/DELETE) to system_logs once
// the handler has finished.
func AuditLog(logs *services.SystemLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		c.Next()

		status := c.Writer.Status()
		level := services.LogLevelInfo
		switch {
		case status >= 500:
			level = services.LogLevelError
		case status >= 400:
			level = services.LogLevelWarning
		}

		actor := GetUserID(c)
		if id := GetIdentity(c); id != nil && id.Email != "" {
			actor = id.Email
		}
		if actor == "" {
			actor = "anonymous"
		}

		module, action := parseRouteInfo(c.FullPath(), method)
		logs.Write(c.Request.Context(), services.LogEntry{
			Level:     level,
			Module:    module,
			Action:    action,
			Message:   formatAuditMessage(actor, method, c.Request.URL.Path, status),
			UserID:    GetUserID(c),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Extra: map[string]interface{}{
				"method": method,
				"path":   c.Request.URL.Path,
				"status": status,
				"body":   auditBody(body),
			},
		})
	}
}

// parseRouteInfo maps "/api/employees/:id" + PUT to ("employees", "update").
// Routes with a fixed verb segment such as "/api/auth/login" use it as the
// action.
func parseRouteInfo(fullPath, method string) (module, action string) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(fullPath, "/api"), "/"), "/")
	module = parts[0]
	if module == "" {
		module = "unknown"
	}
	if len(parts) > 1 && !strings.HasPrefix(parts[len(parts)-1], ":") {
		return module, parts[len(parts)-1]
	}

	switch method {
	case http.MethodPost:
		action = "create"
	case http.MethodPut:
		action = "update"
	case http.MethodDelete:
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return module, action
}

func formatAuditMessage(actor, method, path string, status int) string {
	outcome := "failed"
	if status >= 200 && status < 300 {
		outcome = "ok"
	}
	return "[audit] " + actor + " " + method + " " + path + " " + outcome
}

// auditBody returns the request body with sensitive fields masked, cut to
// maxAuditBody characters. Bodies that are not JSON are dropped entirely.
func auditBody(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return "[non-json body omitted]"
	}
	masked, err := json.Marshal(maskSensitive(v))
	if err != nil {
		return ""
	}
	s := string(masked)
	if len(s) > maxAuditBody {
		s = s[:maxAuditBody] + "...[truncated]"
	}
	return s
}

func maskSensitive(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if isSensitive(k) {
				t[k] = "***"
				continue
			}
			t[k] = maskSensitive(val)
		}
	case []interface{}:
		for i := range t {
			t[i] = maskSensitive(t[i])
		}
	}
	return v
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
