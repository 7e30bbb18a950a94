// Package metrics reports container activity through hashicorp/go-metrics.
//
// Keys are prefixed with "statesub" and labelled with the container name:
//
//	statesub.container.updates     counter, one per state mutation
//	statesub.container.notified    counter, listeners invoked per mutation
//	statesub.container.listeners   gauge, registered listeners
package metrics

import (
	"fmt"
	"io"
	"slices"
	"time"

	gometrics "github.com/hashicorp/go-metrics"
)

var (
	keyUpdates   = []string{"statesub", "container", "updates"}
	keyNotified  = []string{"statesub", "container", "notified"}
	keyListeners = []string{"statesub", "container", "listeners"}
)

// Recorder emits container metrics to a go-metrics instance.
// A nil *Recorder, or one built with a nil instance, reports to the
// go-metrics global instance.
type Recorder struct {
	m *gometrics.Metrics
}

// NewRecorder creates a Recorder bound to m.
func NewRecorder(m *gometrics.Metrics) *Recorder {
	return &Recorder{m: m}
}

func (r *Recorder) sink() *gometrics.Metrics {
	if r == nil || r.m == nil {
		return gometrics.Default()
	}
	return r.m
}

func labels(name string) []gometrics.Label {
	if name == "" {
		name = "unnamed"
	}
	return []gometrics.Label{{Name: "container", Value: name}}
}

// Updated records one state mutation of the named container.
func (r *Recorder) Updated(name string) {
	r.sink().IncrCounterWithLabels(keyUpdates, 1, labels(name))
}

// Notified records that n listeners were invoked for one mutation.
func (r *Recorder) Notified(name string, n int) {
	if n == 0 {
		return
	}
	r.sink().IncrCounterWithLabels(keyNotified, float32(n), labels(name))
}

// Listeners records the current number of registered listeners.
func (r *Recorder) Listeners(name string, n int) {
	r.sink().SetGaugeWithLabels(keyListeners, float32(n), labels(name))
}

// NewInmem creates a metrics instance backed by an in-memory sink, for
// tools that print their own counters. Runtime and hostname metrics are
// disabled and keys carry no service prefix.
func NewInmem(interval, retain time.Duration) (*gometrics.Metrics, *gometrics.InmemSink, error) {
	sink := gometrics.NewInmemSink(interval, retain)
	cfg := gometrics.DefaultConfig("")
	cfg.EnableHostname = false
	cfg.EnableHostnameLabel = false
	cfg.EnableRuntimeMetrics = false
	m, err := gometrics.New(cfg, sink)
	if err != nil {
		return nil, nil, err
	}
	return m, sink, nil
}

// WriteSummary prints the counters and gauges of the sink's most recent
// interval, one per line, sorted by key.
func WriteSummary(w io.Writer, sink *gometrics.InmemSink) {
	data := sink.Data()
	if len(data) == 0 {
		return
	}
	cur := data[len(data)-1]

	counters := make([]string, 0, len(cur.Counters))
	for k := range cur.Counters {
		counters = append(counters, k)
	}
	slices.Sort(counters)

	gauges := make([]string, 0, len(cur.Gauges))
	for k := range cur.Gauges {
		gauges = append(gauges, k)
	}
	slices.Sort(gauges)

	if len(counters) == 0 && len(gauges) == 0 {
		fmt.Fprintln(w, "no metrics recorded")
		return
	}
	for _, k := range counters {
		fmt.Fprintf(w, "counter %-50s sum=%g count=%d\n", k, cur.Counters[k].Sum, cur.Counters[k].Count)
	}
	for _, k := range gauges {
		fmt.Fprintf(w, "gauge   %-50s %g\n", k, cur.Gauges[k].Value)
	}
}
