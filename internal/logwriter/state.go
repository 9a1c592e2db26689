package logwriter

// State identifies one stage of the writer task's supervisory loop. There is
// no terminal state.
type State int

const (
	StateUnmounted State = iota
	StateOpenLog
	StateCalcFlushSize
	StateWaitForData
	StateWriteData
	StateWriteFailure
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "Unmounted"
	case StateOpenLog:
		return "OpenLog"
	case StateCalcFlushSize:
		return "CalcFlushSize"
	case StateWaitForData:
		return "WaitForData"
	case StateWriteData:
		return "WriteData"
	case StateWriteFailure:
		return "WriteFailure"
	default:
		return "Unknown"
	}
}

// Event is an observation the task derived from its environment during one
// loop iteration.
type Event int

const (
	// EventNone reports nothing of interest; the state holds.
	EventNone Event = iota
	// EventMediaGone reports the device handle has disappeared.
	EventMediaGone
	// EventMediaReady reports a device handle is available.
	EventMediaReady
	// EventOpened reports a new log file was created.
	EventOpened
	// EventOpenFailed reports log file creation failed.
	EventOpenFailed
	// EventWindowComputed reports the next flush window is known.
	EventWindowComputed
	// EventDataReady reports buffered bytes reached the flush window.
	EventDataReady
	// EventNoData reports buffered bytes are still below the window.
	EventNoData
	// EventWindowSynced reports a full window was written and synced.
	EventWindowSynced
	// EventWriteFailed reports a write or sync error.
	EventWriteFailed
	// EventFileAbandoned reports the failed file's handle was dropped.
	EventFileAbandoned
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventNone:
		return "None"
	case EventMediaGone:
		return "MediaGone"
	case EventMediaReady:
		return "MediaReady"
	case EventOpened:
		return "Opened"
	case EventOpenFailed:
		return "OpenFailed"
	case EventWindowComputed:
		return "WindowComputed"
	case EventDataReady:
		return "DataReady"
	case EventNoData:
		return "NoData"
	case EventWindowSynced:
		return "WindowSynced"
	case EventWriteFailed:
		return "WriteFailed"
	case EventFileAbandoned:
		return "FileAbandoned"
	default:
		return "Unknown"
	}
}

// Transition is the writer's pure state function. Unrecognized pairs hold the
// current state. EventMediaGone wins from any state.
func Transition(s State, e Event) State {
	if e == EventMediaGone {
		return StateUnmounted
	}
	switch s {
	case StateUnmounted:
		if e == EventMediaReady {
			return StateOpenLog
		}
	case StateOpenLog:
		switch e {
		case EventOpened:
			return StateCalcFlushSize
		case EventOpenFailed:
			return StateUnmounted
		}
	case StateCalcFlushSize:
		if e == EventWindowComputed {
			return StateWaitForData
		}
	case StateWaitForData:
		if e == EventDataReady {
			return StateWriteData
		}
	case StateWriteData:
		switch e {
		case EventWindowSynced:
			return StateCalcFlushSize
		case EventWriteFailed:
			return StateWriteFailure
		}
	case StateWriteFailure:
		if e == EventFileAbandoned {
			return StateOpenLog
		}
	}
	return s
}
