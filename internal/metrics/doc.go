// Package metrics provides observability hooks for the rendering pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks at call sites:
//
//	c := cache.New(cache.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics are enabled, swap in a PrometheusRecorder backed by a registry
// and expose the registry with HTTPHandler.
package metrics
