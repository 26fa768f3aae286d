package util

import "testing"

func TestTimerStages(t *testing.T) {
	timer := StartTimer()
	timer.Mark("translate")
	timer.Mark("resolve")

	stages := timer.Stages()
	if len(stages) != 2 || stages[0].Name != "translate" || stages[1].Name != "resolve" {
		t.Fatalf("unexpected stages %+v", stages)
	}
	fields := timer.Fields()
	if _, ok := fields["resolve_ms"]; !ok {
		t.Fatalf("expected resolve_ms in %v", fields)
	}
	if _, ok := fields["elapsed_ms"]; !ok {
		t.Fatalf("expected elapsed_ms in %v", fields)
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	if timer.ElapsedMs() != 0 || timer.Mark("x") != 0 || timer.Stages() != nil {
		t.Fatal("expected zero values from nil timer")
	}
}
