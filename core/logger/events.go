package logger

// Event is one interpreter activity record. The name keys the "event"
// field of the emitted JSON line; the implementation is the payload.
type Event interface {
	eventName() string
}

// SessionStarted records a driver loop starting up.
type SessionStarted struct {
	// Mode is the line source: interactive, script, stdin, or command.
	Mode string `json:"mode"`
}

func (*SessionStarted) eventName() string { return "session_started" }

// SessionEnded records the interpreter's final status.
type SessionEnded struct {
	ExitCode int `json:"exit_code"`
}

func (*SessionEnded) eventName() string { return "session_ended" }

// CommandRun records one executed line and its exit status.
type CommandRun struct {
	Line   string `json:"line"`
	Status int    `json:"status"`
}

func (*CommandRun) eventName() string { return "command_run" }

// ParseFailed records a line the parser rejected.
type ParseFailed struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

func (*ParseFailed) eventName() string { return "parse_failed" }

// JobStarted records a pipeline sent to the background.
type JobStarted struct {
	JobID int   `json:"job_id"`
	PGID  int   `json:"pgid"`
	PIDs  []int `json:"pids"`
}

func (*JobStarted) eventName() string { return "job_started" }

// JobCompleted records a background job whose members have all exited.
type JobCompleted struct {
	JobID int `json:"job_id"`
}

func (*JobCompleted) eventName() string { return "job_completed" }

// InterruptRouted records an interactive interrupt forwarded to the
// foreground process groups.
type InterruptRouted struct {
	PGIDs []int `json:"pgids"`
}

func (*InterruptRouted) eventName() string { return "interrupt_routed" }
