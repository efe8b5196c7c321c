package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
)

// RawEntry mirrors Entry with the payload left undecoded so readers can
// dispatch on the event name.
type RawEntry struct {
	TimestampMicros int64           `json:"timestamp_micros"`
	SessionID       string          `json:"session_id"`
	Name            string          `json:"event"`
	Payload         json.RawMessage `json:"payload"`
}

// ReadJSONLinesLog parses a newline delimited JSON event log.
func ReadJSONLinesLog(r io.Reader, handler func(re *RawEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry RawEntry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}
		handler(&entry)
	}
	return nil
}

func NewReport() *Report {
	return &Report{
		ParseFailure: ParseFailureReport{
			Failures: NewPathCounter("line", "error"),
		},
	}
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Session      SessionReport      `json:"session_report"`
	Command      CommandReport      `json:"command_report"`
	ParseFailure ParseFailureReport `json:"parse_failure_report"`
	Job          JobReport          `json:"job_report"`
	Interrupt    InterruptReport    `json:"interrupt_report"`
}

func (r *Report) Update(re *RawEntry) {
	r.LogEntries++

	switch re.Name {
	case "session_started":
		var event SessionStarted
		if json.Unmarshal(re.Payload, &event) == nil {
			r.Session.update(&event)
		}
	case "session_ended":
		var event SessionEnded
		if json.Unmarshal(re.Payload, &event) == nil {
			r.Session.updateEnded(&event)
		}
	case "command_run":
		var event CommandRun
		if json.Unmarshal(re.Payload, &event) == nil {
			r.Command.update(&event)
		}
	case "parse_failed":
		var event ParseFailed
		if json.Unmarshal(re.Payload, &event) == nil {
			r.ParseFailure.update(&event)
		}
	case "job_started":
		var event JobStarted
		if json.Unmarshal(re.Payload, &event) == nil {
			r.Job.update(&event)
		}
	case "job_completed":
		r.Job.Completed++
	case "interrupt_routed":
		r.Interrupt.Count++
	default:
		r.InvalidEntries.Increment(re.Name)
	}
}

type SessionReport struct {
	Count int `json:"count"`
	// Line sources sessions started with and their counts.
	Modes StrCounter `json:"modes"`
	// Final statuses sessions ended with and their counts.
	ExitCodes StrCounter `json:"exit_codes"`
}

func (r *SessionReport) update(event *SessionStarted) {
	r.Count++
	r.Modes.Increment(event.Mode)
}

func (r *SessionReport) updateEnded(event *SessionEnded) {
	r.ExitCodes.Increment(strconv.Itoa(event.ExitCode))
}

type CommandReport struct {
	// First word of each executed line and its count.
	CommandNames StrCounter `json:"command_names"`
	// Exit statuses and their counts.
	Statuses StrCounter `json:"statuses"`
}

func (r *CommandReport) update(event *CommandRun) {
	if fields := strings.Fields(event.Line); len(fields) > 0 {
		r.CommandNames.Increment(fields[0])
	}
	r.Statuses.Increment(strconv.Itoa(event.Status))
}

type ParseFailureReport struct {
	Failures *PathCounter `json:"failures"`
}

func (r *ParseFailureReport) update(event *ParseFailed) {
	r.Failures.Increment(event.Line, event.Error)
}

type JobReport struct {
	Started   int `json:"started"`
	Completed int `json:"completed"`
	// Stage counts of backgrounded pipelines.
	PipelineWidths StrCounter `json:"pipeline_widths"`
}

func (r *JobReport) update(event *JobStarted) {
	r.Started++
	r.PipelineWidths.Increment(strconv.Itoa(len(event.PIDs)))
}

type InterruptReport struct {
	Count int `json:"count"`
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given tuple.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements a custom JSON marshaler sorted by descending
// count.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
