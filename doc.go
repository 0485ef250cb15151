// Package leveler continuously reshapes the loudness of a live audio stream.
//
// A Leveler compresses dynamic range, tracks long-term loudness to steer an
// auto-gain stage toward a target and brick-wall limits peaks, all on a
// stream whose samples arrive continuously from a playing source. It ties
// together the settings bank, the signal graph, the auto-gain controller and
// persistent settings storage behind one facade.
//
// # Getting Started
//
//	options := leveler.NewOptions()
//	options.SettingsPath = "leveler.json"
//
//	lv, err := leveler.New(ctx, options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lv.Close()
//
//	src, err := source.OpenWAV("programme.wav", 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := lv.Bind(src); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Pull processed audio at real-time rate.
//	err = lv.Play(ctx, func(block [][2]float64) error {
//	    return device.Write(block)
//	})
//
// # Signal Flow
//
//	source → input-meter → pre-gain → auto-gain → compressor → makeup-gain → limiter → output-meter → destination
//
// Setting enabled=false reroutes the source straight to the destination
// without reattaching it. Every 100 ms the session reads both meters,
// updates the auto-gain controller and republishes a [session.Snapshot].
//
// # Control Surface
//
// Settings are changed through commands, either in process with
// [Leveler.Handle] or as newline-delimited JSON with
// [session.Manager.ServeCommands]:
//
//	{"type":"applyPreset","preset":"heavy"}
//	{"type":"updateSettings","settings":{"ratio":6}}
//	{"type":"getState"}
//	{"type":"resetSettings"}
//
// # Offline Rendering
//
// With Options.Offline set the tick loop is driven by the audio itself
// rather than the wall clock, so [Leveler.Render] can process a file faster
// than real time while the auto-gain loop sees the same 100 ms cadence it
// would during playback.
package leveler
