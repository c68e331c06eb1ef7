package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/rig-go/logger"
)

// Phase names a stage of the frame whose duration is tracked separately.
type Phase int

const (
	// PhaseUpdate covers keyframe sampling, world matrix propagation and
	// joint palette computation for every model.
	PhaseUpdate Phase = iota

	// PhaseRender covers draw assembly, buffer writes and submission.
	PhaseRender

	phaseCount
)

var phaseNames = [phaseCount]string{
	"update",
	"render",
}

// Profiler tracks frame rate, per-phase frame time and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	phaseTotals [phaseCount]time.Duration
	phaseStart  [phaseCount]time.Time
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// BeginPhase marks the start of a frame phase. Must be paired with EndPhase
// for the same phase within the same frame.
//
// Parameters:
//   - phase: the phase being entered
func (p *Profiler) BeginPhase(phase Phase) {
	if phase < 0 || phase >= phaseCount {
		return
	}
	p.phaseStart[phase] = time.Now()
}

// EndPhase accumulates the elapsed time of a phase started with BeginPhase.
//
// Parameters:
//   - phase: the phase being left
func (p *Profiler) EndPhase(phase Phase) {
	if phase < 0 || phase >= phaseCount {
		return
	}
	if p.phaseStart[phase].IsZero() {
		return
	}
	p.phaseTotals[phase] += time.Since(p.phaseStart[phase])
	p.phaseStart[phase] = time.Time{}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, average per-phase frame time, heap usage,
// allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: bytes of live heap objects. Sys: total bytes obtained from the
	// OS. TotalAlloc only ever grows and tracks churn.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	fields := []any{
		"fps", fps,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	}
	for i := Phase(0); i < phaseCount; i++ {
		avg := time.Duration(0)
		if p.frameCount > 0 {
			avg = p.phaseTotals[i] / time.Duration(p.frameCount)
		}
		fields = append(fields, phaseNames[i]+"_avg", avg.String())
		p.phaseTotals[i] = 0
	}

	logger.Sugar.Infow("frame stats", fields...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
