package app

import (
	"time"

	"sen/internal/console"
)

// Emulator runs the console a frame at a time and keeps timing figures.
type Emulator struct {
	console *console.Console

	targetFrameTime time.Duration
	throttle        bool
	nextFrame       time.Time

	frameCount    uint64
	emulationTime time.Duration
	frameTimes    *CircularTimingBuffer
	startTime     time.Time
}

// EmulatorStats is a snapshot of the emulator's timing figures
type EmulatorStats struct {
	FrameCount       uint64
	EmulationTime    time.Duration
	AverageFrameTime time.Duration
	TargetFrameTime  time.Duration
	EmulationSpeed   float64
	Uptime           time.Duration
}

// NewEmulator creates an emulator targeting frameRate frames per second.
func NewEmulator(c *console.Console, frameRate float64) *Emulator {
	e := &Emulator{
		console:    c,
		frameTimes: NewCircularTimingBuffer(180),
	}
	e.SetTargetFrameRate(frameRate)
	e.Reset()
	return e
}

// Reset clears the timing figures
func (e *Emulator) Reset() {
	e.frameCount = 0
	e.emulationTime = 0
	e.frameTimes.Reset()
	e.startTime = time.Now()
	e.nextFrame = time.Time{}
}

// SetThrottle makes Update sleep so frames are produced at the target rate.
// Backends that pace their own loop leave it off.
func (e *Emulator) SetThrottle(throttle bool) {
	e.throttle = throttle
}

// SetTargetFrameRate sets the target frame rate
func (e *Emulator) SetTargetFrameRate(fps float64) {
	if fps > 0 {
		e.targetFrameTime = time.Duration(float64(time.Second) / fps)
	}
}

// Update emulates exactly one frame.
func (e *Emulator) Update() error {
	start := time.Now()
	if err := e.console.StepFrame(); err != nil {
		return err
	}
	e.emulationTime = time.Since(start)
	e.frameTimes.Add(e.emulationTime)
	e.frameCount++

	if e.throttle {
		e.wait(start)
	}
	return nil
}

func (e *Emulator) wait(start time.Time) {
	if e.nextFrame.IsZero() {
		e.nextFrame = start
	}
	e.nextFrame = e.nextFrame.Add(e.targetFrameTime)

	d := time.Until(e.nextFrame)
	switch {
	case d > 0:
		time.Sleep(d)
	case d < -e.targetFrameTime:
		// too far behind to catch up
		e.nextFrame = time.Now()
	}
}

// GetFrameCount returns the number of frames emulated since Reset
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetEmulationSpeed returns how much faster than real time frames are
// emulated, as a percentage
func (e *Emulator) GetEmulationSpeed() float64 {
	avg := e.frameTimes.GetAverage()
	if avg == 0 {
		return 0.0
	}
	return float64(e.targetFrameTime) / float64(avg) * 100.0
}

// GetPerformanceStats returns the current timing figures
func (e *Emulator) GetPerformanceStats() EmulatorStats {
	return EmulatorStats{
		FrameCount:       e.frameCount,
		EmulationTime:    e.emulationTime,
		AverageFrameTime: e.frameTimes.GetAverage(),
		TargetFrameTime:  e.targetFrameTime,
		EmulationSpeed:   e.GetEmulationSpeed(),
		Uptime:           time.Since(e.startTime),
	}
}

// CircularTimingBuffer keeps the most recent durations
type CircularTimingBuffer struct {
	buffer   []time.Duration
	capacity int
	index    int
	size     int
}

// NewCircularTimingBuffer creates a new circular timing buffer
func NewCircularTimingBuffer(capacity int) *CircularTimingBuffer {
	return &CircularTimingBuffer{
		buffer:   make([]time.Duration, capacity),
		capacity: capacity,
	}
}

// Add adds a timing measurement to the buffer
func (ctb *CircularTimingBuffer) Add(duration time.Duration) {
	ctb.buffer[ctb.index] = duration
	ctb.index = (ctb.index + 1) % ctb.capacity
	if ctb.size < ctb.capacity {
		ctb.size++
	}
}

// GetAverage calculates the average of stored durations
func (ctb *CircularTimingBuffer) GetAverage() time.Duration {
	if ctb.size == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		total += ctb.buffer[i]
	}
	return total / time.Duration(ctb.size)
}

// Reset clears the buffer
func (ctb *CircularTimingBuffer) Reset() {
	ctb.index = 0
	ctb.size = 0
}
