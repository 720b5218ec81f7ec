package streamserver

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/forestrock/webtv/pkg/logger"

	"github.com/klauspost/compress/gzip"
)

// gzipWriterPool reuses gzip writers across responses. BestSpeed favors
// latency over ratio; the JSON payloads here are small.
var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	},
}

type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.Writer.Write(b)
}

// gzipMiddleware compresses the response when the client advertises gzip
// support, passing it through unchanged otherwise.
func gzipMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")

		gz := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			if err := gz.Close(); err != nil {
				logger.Errorf("closing gzip writer for %s %s: %v", r.Method, r.URL.Path, err)
			}
			gzipWriterPool.Put(gz)
		}()

		next(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	}
}
