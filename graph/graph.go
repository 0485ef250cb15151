// Package graph implements the signal graph: the fixed processing topology
// between a bound source and the destination.
//
//	source → input-meter → pre-gain → auto-gain → compressor → makeup-gain → limiter → output-meter → destination
//
// In bypass the source feeds the destination directly and none of the stages
// see audio. The Graph is a beep.Streamer; the destination pulls processed
// audio by calling Stream from its own goroutine while the session changes
// parameters and routing from another. A mutex makes every parameter or
// routing change atomic with respect to audio blocks.
package graph

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/opd-ai/leveler/audio"
	"github.com/opd-ai/leveler/interfaces"
	"github.com/opd-ai/leveler/settings"
	"github.com/sirupsen/logrus"
)

// Route selects how the source reaches the destination.
type Route int

const (
	// RouteBypass wires the source straight to the destination.
	RouteBypass Route = iota
	// RouteProcessing wires the source through every stage.
	RouteProcessing
)

// String returns the route name.
func (r Route) String() string {
	switch r {
	case RouteProcessing:
		return "processing"
	default:
		return "bypass"
	}
}

// Graph owns the stage chain and its wiring for one bound source at a time.
type Graph struct {
	mu sync.Mutex

	source interfaces.Source
	input  beep.Streamer
	format beep.Format

	chain  *chain
	route  Route
	wiring []audio.Stage

	generation uint64
	pulled     uint64
}

// New creates an unbound graph.
func New() *Graph {
	return &Graph{}
}

// Bind attaches src and builds a fresh chain configured from s.
//
// Binding the source that is already bound is a no-op. Otherwise the
// previous chain is released first; if src cannot be tapped the graph stays
// unbound and the error wraps ErrBindFailed. The new chain starts with every
// gain stage already at its target, and the route follows s.Enabled.
//
// Parameters:
//   - src: Source to tap; its ID decides whether this is a rebind
//   - s: Settings the new chain is configured from
//
// Returns:
//   - error: ErrNilSource for a nil src, or an ErrBindFailed wrap of the
//     Tap error (typically interfaces.ErrSourceClaimed)
func (g *Graph) Bind(src interfaces.Source, s settings.Settings) error {
	if src == nil {
		return ErrNilSource
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.source != nil && g.source.ID() == src.ID() {
		logrus.WithFields(logrus.Fields{
			"function":   "Graph.Bind",
			"source_id":  src.ID(),
			"generation": g.generation,
		}).Debug("Source already bound")
		return nil
	}

	g.release()

	input, err := src.Tap()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "Graph.Bind",
			"source_id": src.ID(),
			"error":     err.Error(),
		}).Warn("Failed to tap source")
		return fmt.Errorf("%w: source %s: %w", ErrBindFailed, src.ID(), err)
	}

	format := src.Format()
	g.source = src
	g.input = input
	g.format = format
	g.chain = newChain(float64(format.SampleRate))
	g.chain.apply(s, 0)
	g.generation++
	g.pulled = 0
	g.rewire(s.Enabled)

	logrus.WithFields(logrus.Fields{
		"function":    "Graph.Bind",
		"source_id":   src.ID(),
		"sample_rate": int(format.SampleRate),
		"route":       g.route.String(),
		"generation":  g.generation,
	}).Info("Source bound to signal graph")

	return nil
}

// Unbind releases the current source and chain.
func (g *Graph) Unbind() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.source == nil {
		return
	}
	id := g.source.ID()
	g.release()

	logrus.WithFields(logrus.Fields{
		"function":  "Graph.Unbind",
		"source_id": id,
	}).Info("Source unbound from signal graph")
}

// release drops every connection. Callers hold g.mu.
func (g *Graph) release() {
	g.wiring = nil
	g.chain = nil
	g.input = nil
	g.source = nil
	g.route = RouteBypass
}

// ApplyParameters pushes s onto the live stages without touching the wiring.
func (g *Graph) ApplyParameters(s settings.Settings) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return
	}
	g.chain.apply(s, GainTimeConstant)
}

// Route switches between processing and bypass wiring.
func (g *Graph) Route(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return
	}
	g.rewire(enabled)

	logrus.WithFields(logrus.Fields{
		"function": "Graph.Route",
		"route":    g.route.String(),
	}).Info("Signal graph rerouted")
}

// rewire tears the current wiring down completely and builds the new one.
// Callers hold g.mu.
func (g *Graph) rewire(enabled bool) {
	g.wiring = nil
	g.route = RouteBypass
	if enabled {
		g.wiring = g.chain.processing()
		g.route = RouteProcessing
	}
}

// SetAutoGain steers the auto-gain stage toward dB with the auto-gain ramp.
func (g *Graph) SetAutoGain(dB float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return
	}
	g.chain.autoGain.SetGainDB(dB, AutoGainTimeConstant)
}

// ResetAutoGain glides the auto-gain stage back to unity.
func (g *Graph) ResetAutoGain() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return
	}
	g.chain.autoGain.SetLinear(1, AutoGainResetTimeConstant)
}

// AutoGainTarget returns the linear gain the auto-gain stage is heading to.
func (g *Graph) AutoGainTarget() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return 1
	}
	return g.chain.autoGain.Target()
}

// CurrentReduction returns the compressor's gain reduction in dB (<= 0).
func (g *Graph) CurrentReduction() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return 0
	}
	return g.chain.compressor.Reduction()
}

// InputSamples returns the last n samples seen by the input meter. An
// unbound graph returns silence.
func (g *Graph) InputSamples(n int) []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return make([]float64, n)
	}
	return g.chain.inputTap.Samples(n)
}

// OutputSamples returns the last n samples seen by the output meter.
func (g *Graph) OutputSamples(n int) []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chain == nil {
		return make([]float64, n)
	}
	return g.chain.outputTap.Samples(n)
}

// Topology lists the stage names currently wired, in signal order.
func (g *Graph) Topology() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.wiring))
	for _, st := range g.wiring {
		names = append(names, st.Name())
	}
	return names
}

// CurrentRoute returns the active route.
func (g *Graph) CurrentRoute() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.route
}

// IsBound reports whether a source is attached.
func (g *Graph) IsBound() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.source != nil
}

// Source returns the bound source, or nil.
func (g *Graph) Source() interfaces.Source {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.source
}

// Format returns the format of the bound source.
func (g *Graph) Format() beep.Format {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.format
}

// Generation increments every time a new chain is built.
func (g *Graph) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation
}

// FramesPulled returns how many frames the destination has pulled since the
// current source was bound.
func (g *Graph) FramesPulled() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pulled
}

// Stream fills samples with the next block of destination audio. An unbound
// graph produces silence so the destination keeps running.
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.input == nil {
		clear(samples)
		return len(samples), true
	}

	n, ok := g.input.Stream(samples)
	block := samples[:n]
	for _, st := range g.wiring {
		st.Process(block)
	}
	g.pulled += uint64(n)
	return n, ok
}

// Err reports the bound source's stream error.
func (g *Graph) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.input == nil {
		return nil
	}
	return g.input.Err()
}
