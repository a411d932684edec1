package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs the method, path, status and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the hijacker underneath, which
// websocket upgrades need.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LogWebSocketConnect logs a websocket upgrade.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, path string) {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"path":   path,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs a websocket teardown.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, path string, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"path":   path,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
