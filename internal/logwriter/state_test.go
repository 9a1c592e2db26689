package logwriter

import "testing"

func TestTransitionHappyPath(t *testing.T) {
	steps := []struct {
		ev   Event
		want State
	}{
		{EventMediaReady, StateOpenLog},
		{EventOpened, StateCalcFlushSize},
		{EventWindowComputed, StateWaitForData},
		{EventNoData, StateWaitForData},
		{EventDataReady, StateWriteData},
		{EventWindowSynced, StateCalcFlushSize},
	}
	s := StateUnmounted
	for _, step := range steps {
		s = Transition(s, step.ev)
		if s != step.want {
			t.Fatalf("after %v: state %v, want %v", step.ev, s, step.want)
		}
	}
}

func TestTransitionMediaGoneWinsFromEveryState(t *testing.T) {
	states := []State{
		StateUnmounted, StateOpenLog, StateCalcFlushSize,
		StateWaitForData, StateWriteData, StateWriteFailure,
	}
	for _, s := range states {
		if got := Transition(s, EventMediaGone); got != StateUnmounted {
			t.Fatalf("Transition(%v, MediaGone) = %v, want Unmounted", s, got)
		}
	}
}

func TestTransitionFailurePath(t *testing.T) {
	s := Transition(StateWriteData, EventWriteFailed)
	if s != StateWriteFailure {
		t.Fatalf("write failure: got %v", s)
	}
	s = Transition(s, EventFileAbandoned)
	if s != StateOpenLog {
		t.Fatalf("abandon: got %v", s)
	}
}

func TestTransitionOpenFailureReturnsToUnmounted(t *testing.T) {
	if got := Transition(StateOpenLog, EventOpenFailed); got != StateUnmounted {
		t.Fatalf("open failure: got %v", got)
	}
}

func TestTransitionHoldsOnUnrecognizedEvents(t *testing.T) {
	if got := Transition(StateWaitForData, EventOpened); got != StateWaitForData {
		t.Fatalf("unexpected transition to %v", got)
	}
	if got := Transition(StateUnmounted, EventNone); got != StateUnmounted {
		t.Fatalf("unexpected transition to %v", got)
	}
}
