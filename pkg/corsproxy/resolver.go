package corsproxy

import (
	"net/url"
	"strings"
	"time"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/metrics"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/valyala/fasthttp"
)

// DefaultProbeTimeout bounds every proxy probe so an unreachable proxy
// cannot stall resolution.
const DefaultProbeTimeout = 3 * time.Second

// lastGoodTTL is how long a probe-confirmed proxy is reused before the
// full priority list is consulted again.
const lastGoodTTL = 90 * time.Second

const lastGoodKey = "proxy:last-good"

// DefaultProxies is the fixed priority order of CORS relay endpoints.
// The last one is query-style, the others path-style.
var DefaultProxies = []string{
	"https://tonis-proxy.onrender.com",
	"https://cors-anywhere-production-d9b6.up.railway.app",
	"https://corsproxy.io/?",
}

// Resolver probes CORS proxies for a target URL and returns the first
// rewritten URL that answers. The last working proxy is cached with a
// short TTL and revalidated before reuse; a failed revalidation falls
// back to the full probe sequence.
type Resolver struct {
	proxies  []string
	timeout  time.Duration
	client   *fasthttp.Client
	lastGood *ristretto.Cache[string, string]

	// probe is replaceable in tests.
	probe func(candidate string) bool
}

// NewResolver builds a resolver over the given proxy bases, or
// DefaultProxies when none are given.
func NewResolver(proxies []string) *Resolver {
	if len(proxies) == 0 {
		proxies = DefaultProxies
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 100,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}

	r := &Resolver{
		proxies: proxies,
		timeout: DefaultProbeTimeout,
		client: &fasthttp.Client{
			ReadTimeout: DefaultProbeTimeout,
		},
		lastGood: cache,
	}
	r.probe = r.headProbe
	return r
}

// Rewrite builds the proxied candidate URL for one proxy base: plain
// concatenation for path-style proxies, percent-encoding for query-style
// ones.
func Rewrite(proxy, target string) string {
	if strings.Contains(proxy, "?") {
		return proxy + url.QueryEscape(target)
	}
	return strings.TrimSuffix(proxy, "/") + "/" + target
}

// Resolve returns the first reachable proxied URL for the target, in
// proxy priority order. The boolean is false when no proxy answered; the
// caller then falls back to the unproxied URL.
func (r *Resolver) Resolve(target string) (string, bool) {
	if proxy, ok := r.lastGood.Get(lastGoodKey); ok {
		candidate := Rewrite(proxy, target)
		if r.probe(candidate) {
			metrics.ProxyProbes.WithLabelValues("cached").Inc()
			return candidate, true
		}
		r.lastGood.Del(lastGoodKey)
	}

	for _, proxy := range r.proxies {
		candidate := Rewrite(proxy, target)
		if r.probe(candidate) {
			logger.Debugf("corsproxy: proxy working: %s", proxy)
			metrics.ProxyProbes.WithLabelValues("hit").Inc()
			r.lastGood.SetWithTTL(lastGoodKey, proxy, 1, lastGoodTTL)
			r.lastGood.Wait()
			return candidate, true
		}
		metrics.ProxyProbes.WithLabelValues("miss").Inc()
	}

	logger.Debugf("corsproxy: no working proxy for %s", target)
	return "", false
}

// headProbe issues a lightweight existence check against the candidate
// URL. Timeouts, transport errors and non-2xx/3xx statuses all mean the
// same thing: this proxy is unusable for the target.
func (r *Resolver) headProbe(candidate string) bool {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(candidate)
	req.Header.SetMethod(fasthttp.MethodHead)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := r.client.DoTimeout(req, resp, r.timeout); err != nil {
		return false
	}

	code := resp.StatusCode() / 100
	return code == 2 || code == 3
}
