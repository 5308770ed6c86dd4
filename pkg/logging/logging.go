package logging

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/openHPI/namestore/pkg/dto"
	"github.com/sirupsen/logrus"
)

const (
	TimestampFormat        = "2006-01-02T15:04:05.000000Z"
	GracefulSentryShutdown = 5 * time.Second
	// RequestIDHeader is the response header carrying the id the logging middleware assigned to a request.
	RequestIDHeader = "X-Request-Id"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(formatterFor(dto.FormatterText))
	return logger
}

func formatterFor(formatter dto.Formatter) logrus.Formatter {
	if formatter == dto.FormatterJSON {
		return &logrus.JSONFormatter{TimestampFormat: TimestampFormat}
	}
	return &logrus.TextFormatter{TimestampFormat: TimestampFormat, DisableColors: true, FullTimestamp: true}
}

// InitializeLogging applies the configured level and formatter and registers the context and Sentry hooks.
// Fatal entries flush Sentry before the process exits.
func InitializeLogging(logLevel string, formatter dto.Formatter) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.WithError(err).WithField("level", logLevel).Fatal("Unknown log level")
		return
	}
	log.SetLevel(level)
	log.SetFormatter(formatterFor(formatter))
	log.AddHook(&ContextHook{})
	log.AddHook(&SentryHook{})
	log.ExitFunc = func(code int) {
		sentry.Flush(GracefulSentryShutdown)
		os.Exit(code)
	}
}

// GetLogger returns an entry tagged with the name of the calling package.
func GetLogger(pkg string) *logrus.Entry {
	return log.WithField("package", pkg)
}

// StatusWriter remembers the status code a handler responded with.
type StatusWriter struct {
	http.ResponseWriter
	StatusCode int
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (w *StatusWriter) WriteHeader(code int) {
	w.StatusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T cannot be hijacked", w.ResponseWriter)
	}
	conn, rw, err := hijacker.Hijack()
	if err != nil {
		return nil, nil, fmt.Errorf("hijacking connection failed: %w", err)
	}
	return conn, rw, nil
}

// requestDetails collects what the handlers learn about a request while serving it.
type requestDetails struct {
	sync.Mutex
	fullName string
}

const requestDetailsKey dto.ContextKey = "request details"

// AddFullName records the full name the request operates on so that the access log contains it.
func AddFullName(ctx context.Context, fullName string) {
	details, ok := ctx.Value(requestDetailsKey).(*requestDetails)
	if !ok {
		return
	}
	details.Lock()
	defer details.Unlock()
	details.fullName = RemoveNewlineSymbol(fullName)
}

// HTTPLoggingMiddleware writes one access log entry per request. It assigns each request an id,
// stores it in the request context and echoes it in the RequestIDHeader.
// Server errors are logged as errors, everything else as debug entries.
func HTTPLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		details := &requestDetails{}
		ctx := context.WithValue(r.Context(), dto.ContextKey(dto.KeyRequestID), requestID)
		ctx = context.WithValue(ctx, requestDetailsKey, details)
		w.Header().Set(RequestIDHeader, requestID)

		sw := NewStatusWriter(w)
		next.ServeHTTP(sw, r.WithContext(ctx))

		fields := logrus.Fields{
			"code":     sw.StatusCode,
			"method":   r.Method,
			"route":    RouteName(r),
			"duration": time.Since(start),
		}
		details.Lock()
		if details.fullName != "" {
			fields[dto.KeyFullName] = details.fullName
		}
		details.Unlock()

		entry := log.WithContext(ctx).WithFields(fields)
		if sw.StatusCode >= http.StatusInternalServerError {
			entry.WithField("path", RemoveNewlineSymbol(r.URL.Path)).Error("Request failed")
		} else {
			entry.Debug("Request served")
		}
	})
}

// RouteName returns the name of the matched mux route or "unknown".
func RouteName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unknown"
}

// RemoveNewlineSymbol strips line breaks from user controlled input before it is logged.
func RemoveNewlineSymbol(data string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(data)
}
