package graph

import (
	"github.com/opd-ai/leveler/audio"
	"github.com/opd-ai/leveler/settings"
)

// Time constants, in seconds, for gain changes reaching the signal.
const (
	// GainTimeConstant smooths pre-gain and makeup gain edits.
	GainTimeConstant = 0.01

	// AutoGainTimeConstant smooths auto-gain steering from the controller.
	AutoGainTimeConstant = 0.3

	// AutoGainResetTimeConstant smooths the return to unity when auto-gain
	// is switched off.
	AutoGainResetTimeConstant = 0.05
)

// chain is one allocated set of processing stages. A chain lives exactly as
// long as the source binding it was built for.
type chain struct {
	inputTap   *audio.Tap
	preGain    *audio.GainStage
	autoGain   *audio.GainStage
	compressor *audio.Compressor
	makeup     *audio.GainStage
	limiter    *audio.Compressor
	outputTap  *audio.Tap
}

func newChain(sampleRate float64) *chain {
	return &chain{
		inputTap:   audio.NewTap("input-meter", audio.AnalysisWindow),
		preGain:    audio.NewGainStage("pre-gain", sampleRate),
		autoGain:   audio.NewGainStage("auto-gain", sampleRate),
		compressor: audio.NewCompressor("compressor", sampleRate),
		makeup:     audio.NewGainStage("makeup-gain", sampleRate),
		limiter:    audio.NewLimiter(sampleRate),
		outputTap:  audio.NewTap("output-meter", audio.AnalysisWindow),
	}
}

// processing returns the stages in signal order for the processing route.
func (c *chain) processing() []audio.Stage {
	return []audio.Stage{
		c.inputTap,
		c.preGain,
		c.autoGain,
		c.compressor,
		c.makeup,
		c.limiter,
		c.outputTap,
	}
}

// apply pushes parameters onto the live stages. gainTime is the glide used
// for static gain stages; binding passes 0 so a fresh chain starts on target.
func (c *chain) apply(s settings.Settings, gainTime float64) {
	c.preGain.SetGainDB(s.PreGain, gainTime)
	c.compressor.SetParameters(s.Threshold, s.Ratio, s.Knee, s.Attack/1000, s.Release/1000)
	c.makeup.SetGainDB(s.MakeupGain, gainTime)
	c.limiter.SetThreshold(s.LimiterThreshold)

	if !s.AutoGain {
		c.autoGain.SetLinear(1, AutoGainResetTimeConstant)
	}
}
