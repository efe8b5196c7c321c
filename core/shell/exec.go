package shell

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/mish-shell/mish/core/logger"
)

// Run executes one parsed pipeline and returns its exit status.
//
// A builtin runs in-process only as the sole command of a
// non-backgrounded pipeline; inside a multi-stage or backgrounded
// pipeline the name resolves as an external program. A background
// pipeline registers a job and returns 0 without waiting.
func (s *Shell) Run(p *Pipeline) int {
	if len(p.Commands) == 1 && !p.Background {
		if builtin, ok := AllBuiltins[p.Commands[0].Argv[0]]; ok {
			return s.runBuiltin(builtin, p.Commands[0])
		}
	}
	return s.runPipeline(p)
}

// runBuiltin dispatches to an in-process handler with the command's
// redirections bound to the shell's streams for the duration of the
// call.
func (s *Shell) runBuiltin(builtin Builtin, cmd *Command) int {
	files, err := s.openRedirections(&Pipeline{Commands: []*Command{cmd}})
	if err != nil {
		fmt.Fprintf(s.stderr, "mish: %v\n", err)
		return 1
	}
	defer files.closeAll()

	stage := files.stages[0]
	origIn, origOut, origErr := s.stdin, s.stdout, s.stderr
	defer func() {
		s.stdin, s.stdout, s.stderr = origIn, origOut, origErr
	}()
	if stage.in != nil {
		s.stdin = stage.in
	}
	if stage.out != nil {
		s.stdout = stage.out
	}
	if stage.err != nil {
		s.stderr = stage.err
	}

	return builtin.Main(s, cmd.Argv)
}

// stageFiles holds the opened redirection targets for one stage.
type stageFiles struct {
	in, out, err *os.File
}

// pipelineFiles owns every redirection descriptor for one pipeline until
// the stages that use them have spawned.
type pipelineFiles struct {
	stages []stageFiles
	opened []*os.File
}

func (p *pipelineFiles) closeAll() {
	for _, fd := range p.opened {
		fd.Close()
	}
	p.opened = nil
}

// openRedirections resolves every stage's redirection targets before any
// process spawns, so an unopenable target abandons the whole pipeline.
// When a stage's stdout and stderr name the same target with the same
// mode, as `&>` produces, one descriptor is shared so the truncation
// happens once.
func (s *Shell) openRedirections(p *Pipeline) (*pipelineFiles, error) {
	files := &pipelineFiles{stages: make([]stageFiles, len(p.Commands))}
	for i, cmd := range p.Commands {
		stage := &files.stages[i]
		if cmd.Stdin != nil {
			fd, err := os.Open(cmd.Stdin.Target)
			if err != nil {
				files.closeAll()
				return nil, err
			}
			files.opened = append(files.opened, fd)
			stage.in = fd
		}
		if cmd.Stdout != nil {
			fd, err := openOutput(cmd.Stdout)
			if err != nil {
				files.closeAll()
				return nil, err
			}
			files.opened = append(files.opened, fd)
			stage.out = fd
		}
		if cmd.Stderr != nil {
			if stage.out != nil && sameTarget(cmd.Stdout, cmd.Stderr) {
				stage.err = stage.out
				continue
			}
			fd, err := openOutput(cmd.Stderr)
			if err != nil {
				files.closeAll()
				return nil, err
			}
			files.opened = append(files.opened, fd)
			stage.err = fd
		}
	}
	return files, nil
}

func openOutput(r *Redir) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if r.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return os.OpenFile(r.Target, flags, 0644)
}

func sameTarget(a, b *Redir) bool {
	return a != nil && b != nil && a.Target == b.Target && a.Append == b.Append
}

// runPipeline spawns every stage as an external process and either waits
// for the set (foreground) or registers a job (background).
//
// All stages join a single process group, led by stage 0, so an
// interrupt reaches the whole pipeline at once. The parent closes its
// copy of each pipe end immediately after the stage holding it spawns;
// a pipe end left open here would keep end-of-stream from ever reaching
// the downstream reader.
func (s *Shell) runPipeline(p *Pipeline) int {
	files, err := s.openRedirections(p)
	if err != nil {
		fmt.Fprintf(s.stderr, "mish: %v\n", err)
		return 1
	}
	defer files.closeAll()

	var (
		procs    []*exec.Cmd
		pgid     int
		prevRead *os.File
		status   int
		aborted  bool
	)

	for i, cmd := range p.Commands {
		path, err := LookPath(s.Env, cmd.Argv[0])
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				fmt.Fprintf(s.stderr, "%s: command not found\n", cmd.Argv[0])
				status = 127
			} else {
				fmt.Fprintf(s.stderr, "%s: %v\n", cmd.Argv[0], err)
				status = 1
			}
			aborted = true
			closeFile(prevRead)
			break
		}

		var nextRead, pipeWrite *os.File
		if i < len(p.Commands)-1 {
			nextRead, pipeWrite, err = os.Pipe()
			if err != nil {
				fmt.Fprintf(s.stderr, "mish: %v\n", err)
				status = 1
				aborted = true
				closeFile(prevRead)
				break
			}
		}

		execCmd := exec.Command(path, cmd.Argv[1:]...)
		execCmd.Env = s.Env.Environ()
		execCmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}

		stage := files.stages[i]
		switch {
		case stage.in != nil:
			execCmd.Stdin = stage.in
		case prevRead != nil:
			execCmd.Stdin = prevRead
		default:
			execCmd.Stdin = s.stdin
		}
		switch {
		case stage.out != nil:
			execCmd.Stdout = stage.out
		case pipeWrite != nil:
			execCmd.Stdout = pipeWrite
		default:
			execCmd.Stdout = s.stdout
		}
		if stage.err != nil {
			execCmd.Stderr = stage.err
		} else {
			execCmd.Stderr = s.stderr
		}

		if err := execCmd.Start(); err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", cmd.Argv[0], err)
			status = 1
			aborted = true
			closeFile(prevRead)
			closeFile(nextRead)
			closeFile(pipeWrite)
			break
		}
		if i == 0 {
			// Stage 0 became the group leader; later stages join it.
			pgid = execCmd.Process.Pid
		}
		procs = append(procs, execCmd)

		// Descriptor ownership moved to the child.
		closeFile(prevRead)
		closeFile(pipeWrite)
		prevRead = nextRead
	}

	if len(procs) == 0 {
		return status
	}

	pids := make([]int, 0, len(procs))
	for _, proc := range procs {
		pids = append(pids, proc.Process.Pid)
	}

	if p.Background {
		job := s.Jobs.Add(pgid, pids)
		fmt.Fprintf(s.stderr, "[%d] %d\n", job.ID, pids[len(pids)-1])
		s.Log.Record(&logger.JobStarted{JobID: job.ID, PGID: pgid, PIDs: pids})
		go s.reapJob(job, procs)
		if aborted {
			return status
		}
		return 0
	}

	for _, pid := range pids {
		s.fg.add(pid, pgid)
	}
	last := len(procs) - 1
	for i, proc := range procs {
		st := waitStatus(proc.Wait())
		s.fg.remove(proc.Process.Pid)
		if i == last && !aborted {
			status = st
		}
	}
	return status
}

// reapJob waits each member so the OS releases it, then flips the job to
// completed. Entries stay in the table either way.
func (s *Shell) reapJob(job *Job, procs []*exec.Cmd) {
	for _, proc := range procs {
		_ = proc.Wait()
	}
	s.Jobs.Complete(job)
	s.Log.Record(&logger.JobCompleted{JobID: job.ID})
}

// waitStatus converts a Wait result into a shell exit status: the exit
// code, or 128 plus the signal number for a signal-terminated process.
func waitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}

func closeFile(fd *os.File) {
	if fd != nil {
		fd.Close()
	}
}
