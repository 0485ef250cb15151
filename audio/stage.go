package audio

// Stage is one processing node of the chain.
//
// Process transforms stereo frames in place. Stages are not safe for
// concurrent use; the chain owner serializes calls.
type Stage interface {
	// Name returns a short identifier used in topology listings and logs.
	Name() string

	// Process applies the stage to the frames.
	Process(samples [][2]float64)
}
