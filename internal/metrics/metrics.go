package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Generations        prometheus.Counter
	GenerationFailures prometheus.Counter
	Degradations       prometheus.Counter
	KeyCacheHits       prometheus.Counter
	KeyCacheMisses     prometheus.Counter
}

var (
	once   sync.Once
	global *Metrics
)

func Global() *Metrics {
	once.Do(func() {
		global = &Metrics{
			Generations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "codeforge",
				Name:      "generations_total",
				Help:      "Total generation requests that reached the provider",
			}),
			GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "codeforge",
				Name:      "generation_failures_total",
				Help:      "Total generation requests that failed upstream",
			}),
			Degradations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "codeforge",
				Name:      "generation_degradations_total",
				Help:      "Total generations whose output could not be parsed as files",
			}),
			KeyCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "codeforge",
				Name:      "key_cache_hits_total",
				Help:      "Total credential lookups served from the in-process cache",
			}),
			KeyCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "codeforge",
				Name:      "key_cache_misses_total",
				Help:      "Total credential lookups that went to the store",
			}),
		}
		prometheus.MustRegister(
			global.Generations,
			global.GenerationFailures,
			global.Degradations,
			global.KeyCacheHits,
			global.KeyCacheMisses,
		)
	})
	return global
}
