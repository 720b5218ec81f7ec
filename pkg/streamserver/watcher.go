package streamserver

import (
	"sync"
	"time"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/m3uparser"
	"github.com/forestrock/webtv/pkg/metrics"

	"github.com/panjf2000/ants/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/ratelimit"
)

// probesPerSecond paces liveness probes so a sweep over a large lineup
// does not hammer upstreams all at once.
const probesPerSecond = 10

// Watcher sweeps the channel lineup for reachability. Probes run on a
// bounded worker pool and are rate limited; results land in a concurrent
// map the API reads without locking.
type Watcher struct {
	pool    *ants.Pool
	limiter ratelimit.Limiter
	timeout time.Duration
	client  *fasthttp.Client
	status  *xsync.MapOf[string, bool]

	// probe is replaceable in tests.
	probe func(url string) bool
}

func NewWatcher(numWorkers int, timeout time.Duration) *Watcher {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	pool, err := ants.NewPool(numWorkers, ants.WithPreAlloc(true))
	if err != nil {
		panic(err)
	}

	w := &Watcher{
		pool:    pool,
		limiter: ratelimit.New(probesPerSecond),
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout: timeout,
		},
		status: xsync.NewMapOf[string, bool](),
	}
	w.probe = w.headProbe
	return w
}

// Sweep probes every channel once and replaces its status. Blocks until
// the sweep finishes.
func (w *Watcher) Sweep(channels []m3uparser.ChannelEntry) {

	var wg sync.WaitGroup
	for _, channel := range channels {
		url := channel.StreamURL
		if url == "" {
			continue
		}

		w.limiter.Take()
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			w.status.Store(url, w.probe(url))
		})
		if err != nil {
			wg.Done()
			logger.Warnf("watcher: probe not scheduled for %s: %v", url, err)
		}
	}
	wg.Wait()

	online := 0
	w.status.Range(func(_ string, up bool) bool {
		if up {
			online++
		}
		return true
	})
	metrics.ChannelsOnline.Set(float64(online))
	logger.Infof("watcher: %d of %d channels reachable", online, len(channels))
}

// Online reports the last sweep's verdict for a stream URL. Unknown URLs
// count as online until a sweep says otherwise.
func (w *Watcher) Online(url string) bool {
	up, ok := w.status.Load(url)
	if !ok {
		return true
	}
	return up
}

// Close releases the worker pool.
func (w *Watcher) Close() {
	w.pool.Release()
}

func (w *Watcher) headProbe(url string) bool {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodHead)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := w.client.DoTimeout(req, resp, w.timeout); err != nil {
		return false
	}

	code := resp.StatusCode() / 100
	return code == 2 || code == 3
}
