package shell

import (
	"sync"
)

// JobState tracks whether a background pipeline still has live members.
type JobState int

const (
	JobRunning JobState = iota
	JobCompleted
)

// Job records one backgrounded pipeline: its tracking number, the
// process group shared by its stages, and the member pids in stage
// order.
type Job struct {
	ID    int
	PGID  int
	PIDs  []int
	State JobState
}

// JobTable tracks every backgrounded pipeline for the life of the
// interpreter. Numbers come from a counter rather than the table length
// so they stay stable even if reaping is added later. Entries are never
// removed; a watcher goroutine flips completed jobs to JobCompleted.
type JobTable struct {
	mu     sync.Mutex
	nextID int
	jobs   []*Job
}

func NewJobTable() *JobTable {
	return &JobTable{}
}

// Add registers a new running job and assigns its number.
func (t *JobTable) Add(pgid int, pids []int) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	job := &Job{
		ID:    t.nextID,
		PGID:  pgid,
		PIDs:  append([]int(nil), pids...),
		State: JobRunning,
	}
	t.jobs = append(t.jobs, job)
	return job
}

// Complete marks the job as done. The entry stays in the table.
func (t *JobTable) Complete(job *Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job.State = JobCompleted
}

// Jobs returns a snapshot of all entries in creation order.
func (t *JobTable) Jobs() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, *job)
	}
	return out
}

// foregroundSet tracks the pids the driver is synchronously waiting on,
// keyed to their process groups. The signal router reads it from its own
// goroutine, so every access is locked.
type foregroundSet struct {
	mu   sync.Mutex
	pids map[int]int // pid -> pgid
}

func newForegroundSet() *foregroundSet {
	return &foregroundSet{pids: make(map[int]int)}
}

func (f *foregroundSet) add(pid, pgid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pids[pid] = pgid
}

func (f *foregroundSet) remove(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pids, pid)
}

func (f *foregroundSet) empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pids) == 0
}

// snapshot returns the current members as pid -> pgid pairs.
func (f *foregroundSet) snapshot() map[int]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[int]int, len(f.pids))
	for pid, pgid := range f.pids {
		out[pid] = pgid
	}
	return out
}
