// Package source provides the audio sources a session can bind: any
// beep.Streamer, WAV files, and Opus packet streams (raw or in an Ogg
// container). Every source hands out its stream at most once, mirroring a
// media element that can only be captured by a single graph.
//
// Notifier implements interfaces.SourceNotifier for code that discovers
// sources over time and publishes them to a session.
package source
