package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/opd-ai/leveler/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2E86DE"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2E86DE")).
			Padding(0, 1).
			Width(64)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(12)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Bold(true)
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA")).Bold(true)
)

const meterWidth = 36

func renderMonitor(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Leveler"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(m.title))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(renderMeters(m.State)))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(renderSettings(m.State)))
	b.WriteString("\n")

	if m.LastErr != "" {
		b.WriteString(errStyle.Render("Error: " + m.LastErr))
		b.WriteString("\n")
	}
	if m.Ended {
		msg := "Source finished"
		if m.EndErr != nil {
			msg = fmt.Sprintf("Source failed: %v", m.EndErr)
		}
		b.WriteString(warnStyle.Render(msg))
		b.WriteString("\n")
	}

	b.WriteString(renderHelp())
	return b.String()
}

func renderMeters(s session.Snapshot) string {
	var b strings.Builder

	status := okStyle.Render("● " + string(s.ContextState))
	if !s.IsActive {
		status = warnStyle.Render("○ waiting for source")
	}
	fmt.Fprintf(&b, "%s %s  %s\n\n", labelStyle.Render("Status"), status, subtitleStyle.Render(s.Route))

	fmt.Fprintf(&b, "%s %s %6.1f dB\n", labelStyle.Render("Input"), levelBar(s.Levels.Input, -60, 0), s.Levels.Input)
	fmt.Fprintf(&b, "%s %s %6.1f dB\n", labelStyle.Render("Output"), levelBar(s.Levels.Output, -60, 0), s.Levels.Output)
	fmt.Fprintf(&b, "%s %s %6.1f dB\n", labelStyle.Render("Reduction"), levelBar(-s.Levels.GainReduction, 0, 24), s.Levels.GainReduction)
	fmt.Fprintf(&b, "%s %s %+6.1f dB", labelStyle.Render("Auto-gain"), levelBar(s.AutoGainValue, -24, 24), s.AutoGainValue)

	return b.String()
}

func renderSettings(s session.Snapshot) string {
	st := s.Settings

	onOff := func(v bool) string {
		if v {
			return okStyle.Render("on")
		}
		return warnStyle.Render("off")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("Preset"), keyStyle.Render(string(st.Preset)),
		"Processing", onOff(st.Enabled),
		"Auto-gain", onOff(st.AutoGain))
	fmt.Fprintf(&b, "%s %.0f dB  ratio %.1f:1  knee %.0f dB\n",
		labelStyle.Render("Compressor"), st.Threshold, st.Ratio, st.Knee)
	fmt.Fprintf(&b, "%s attack %.0f ms  release %.0f ms\n",
		labelStyle.Render(""), st.Attack, st.Release)
	fmt.Fprintf(&b, "%s pre %+.1f dB  makeup %+.1f dB  target %.0f dB  limit %.1f dB",
		labelStyle.Render("Gain"), st.PreGain, st.MakeupGain, st.TargetLevel, st.LimiterThreshold)

	return b.String()
}

func renderHelp() string {
	keys := []struct{ key, desc string }{
		{"1/2/3", "light/medium/heavy"},
		{"e", "processing"},
		{"a", "auto-gain"},
		{"+/-", "target"},
		{"r", "reset"},
		{"q", "quit"},
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyStyle.Render(k.key)+" "+subtitleStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}

// levelBar renders v on a lo..hi scale.
func levelBar(v, lo, hi float64) string {
	if math.IsNaN(v) {
		v = lo
	}
	frac := (v - lo) / (hi - lo)
	frac = math.Max(0, math.Min(1, frac))
	filled := int(frac * meterWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
}
