package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PlaybackDispatches counts Play invocations by the stream kind they were
// classified as.
var PlaybackDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webtv_playback_dispatches",
	Help: "Number of playback dispatches",
}, []string{"kind"})

// PlaybackErrors counts dispatches that ended in an error, by backend.
var PlaybackErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webtv_playback_errors",
	Help: "Number of failed playback dispatches",
}, []string{"backend"})

// ProxyProbes counts CORS proxy probe outcomes.
var ProxyProbes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webtv_proxy_probes",
	Help: "Number of CORS proxy probes",
}, []string{"outcome"})

// ChannelsOnline tracks how many playlist channels answered the last
// liveness sweep.
var ChannelsOnline = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "webtv_channels_online",
	Help: "Number of channels currently reachable",
})

// GuideProgrammes tracks the number of programme intervals in the loaded
// EPG store.
var GuideProgrammes = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "webtv_guide_programmes",
	Help: "Number of programmes in the loaded guide",
})
