package util

import "time"

// Timer measures a pipeline run and the stages inside it.
type Timer struct {
	start  time.Time
	last   time.Time
	stages []Stage
}

// Stage is one named slice of a Timer's run.
type Stage struct {
	Name string `json:"name"`
	Ms   int64  `json:"ms"`
}

// StartTimer creates a new timer starting at current time.
func StartTimer() *Timer {
	now := time.Now()
	return &Timer{start: now, last: now}
}

// Mark closes the current stage under name and starts the next one.
func (t *Timer) Mark(name string) int64 {
	if t == nil || t.start.IsZero() {
		return 0
	}
	now := time.Now()
	ms := now.Sub(t.last).Milliseconds()
	t.stages = append(t.stages, Stage{Name: name, Ms: ms})
	t.last = now
	return ms
}

// Stages returns the stages marked so far, in order.
func (t *Timer) Stages() []Stage {
	if t == nil {
		return nil
	}
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Fields flattens stage timings into log fields keyed "<name>_ms".
func (t *Timer) Fields() map[string]interface{} {
	fields := map[string]interface{}{"elapsed_ms": t.ElapsedMs()}
	for _, stage := range t.Stages() {
		fields[stage.Name+"_ms"] = stage.Ms
	}
	return fields
}

// ElapsedMs returns the elapsed milliseconds since start.
func (t *Timer) ElapsedMs() int64 {
	if t == nil || t.start.IsZero() {
		return 0
	}
	return time.Since(t.start).Milliseconds()
}
