package httpx

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level  int // Compression level (1-9, where 6 is default)
	Logger *slog.Logger
}

//nolint:gochecknoglobals // read-only lookup of media types worth compressing
var compressibleTypes = map[string]bool{
	"text/html":              true,
	"text/css":               true,
	"text/plain":             true,
	"text/javascript":        true,
	"application/javascript": true,
	"application/json":       true,
	"image/svg+xml":          true,
}

// Compression returns a middleware that compresses HTTP responses using gzip.
// It compresses responses only when:
// - Client accepts gzip encoding (via Accept-Encoding header).
// - Content-Type is compressible (text/html, text/css, application/json, etc.).
// - Response status is not 1xx, 204, or 304.
// - Request method is not HEAD.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	if cfg.Level < gzip.BestSpeed || cfg.Level > gzip.BestCompression {
		cfg.Level = gzip.DefaultCompression
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	pool := &sync.Pool{New: func() any { return newGzipWriter(cfg.Level) }}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsGzip(r.Header.Get("Accept-Encoding")) || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{ResponseWriter: w, request: r, pool: pool, logger: cfg.Logger}
			w.Header().Add("Vary", "Accept-Encoding")

			next.ServeHTTP(gzw, r)

			if gzw.gzipWriter != nil {
				if err := gzw.gzipWriter.Close(); err != nil {
					cfg.Logger.ErrorContext(r.Context(), "closing gzip writer failed", "error", err)
				}
				gzw.gzipWriter.Reset(io.Discard)
				pool.Put(gzw.gzipWriter)
			}
		})
	}
}

// acceptsGzip checks if the client accepts gzip encoding, respecting q=0.
func acceptsGzip(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		part = strings.TrimSpace(part)
		encoding, params, _ := strings.Cut(part, ";")
		if !strings.EqualFold(strings.TrimSpace(encoding), "gzip") {
			continue
		}
		q := strings.ReplaceAll(params, " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}

// isCompressibleContentType checks if the content type should be compressed.
func isCompressibleContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return compressibleTypes[strings.TrimSpace(strings.ToLower(mediaType))]
}

func newGzipWriter(level int) *gzip.Writer {
	w, err := gzip.NewWriterLevel(io.Discard, level)
	if err != nil {
		return gzip.NewWriter(io.Discard)
	}
	return w
}

// gzipResponseWriter wraps http.ResponseWriter to compress response body.
type gzipResponseWriter struct {
	http.ResponseWriter
	request       *http.Request
	pool          *sync.Pool
	logger        *slog.Logger
	gzipWriter    *gzip.Writer
	headerWritten bool
}

// WriteHeader decides whether to compress based on status code, content-type, and existing encoding.
func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.headerWritten = true

	compress := statusCode >= http.StatusOK &&
		statusCode != http.StatusNoContent &&
		statusCode != http.StatusNotModified &&
		w.Header().Get("Content-Encoding") == "" &&
		isCompressibleContentType(w.Header().Get("Content-Type"))

	if compress {
		gz, ok := w.pool.Get().(*gzip.Writer)
		if !ok {
			gz = newGzipWriter(gzip.DefaultCompression)
		}
		gz.Reset(w.ResponseWriter)
		w.gzipWriter = gz
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

// Write compresses data if compression is enabled.
func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gzipWriter != nil {
		return w.gzipWriter.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming support.
func (w *gzipResponseWriter) Flush() {
	if w.gzipWriter != nil {
		if err := w.gzipWriter.Flush(); err != nil {
			w.logger.ErrorContext(w.request.Context(), "flushing gzip writer failed", "error", err)
		}
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("http.Hijacker not supported")
}
