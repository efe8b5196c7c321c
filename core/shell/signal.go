package shell

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/mish-shell/mish/core/logger"
)

// signalRouter forwards interactive interrupts to whatever process
// groups are in the foreground. With nothing in the foreground it prints
// a bare newline so the prompt redraws on a fresh line.
//
// The router never waits on processes and never mutates the foreground
// set; the executor's wait loop observes the terminations it causes.
type signalRouter struct {
	fg     *foregroundSet
	out    io.Writer
	log    *logger.SessionLogger
	notify chan os.Signal
	done   chan struct{}
}

func newSignalRouter(fg *foregroundSet, out io.Writer, log *logger.SessionLogger) *signalRouter {
	return &signalRouter{
		fg:     fg,
		out:    out,
		log:    log,
		notify: make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}
}

// install starts routing SIGINT until uninstall is called.
func (r *signalRouter) install() {
	signal.Notify(r.notify, os.Interrupt)
	go func() {
		for {
			select {
			case <-r.done:
				return
			case <-r.notify:
				r.route()
			}
		}
	}()
}

func (r *signalRouter) uninstall() {
	signal.Stop(r.notify)
	close(r.done)
}

// route delivers one interrupt. Group delivery reaches every member of a
// pipeline at once; the per-pid fallback covers a group that dissolved
// between snapshot and kill.
func (r *signalRouter) route() {
	members := r.fg.snapshot()
	if len(members) == 0 {
		fmt.Fprintln(r.out)
		return
	}

	groups := make(map[int][]int)
	for pid, pgid := range members {
		groups[pgid] = append(groups[pgid], pid)
	}

	pgids := make([]int, 0, len(groups))
	for pgid, pids := range groups {
		pgids = append(pgids, pgid)
		if err := syscall.Kill(-pgid, syscall.SIGINT); err == nil {
			continue
		}
		for _, pid := range pids {
			_ = syscall.Kill(pid, syscall.SIGINT)
		}
	}

	sort.Ints(pgids)
	r.log.Record(&logger.InterruptRouted{PGIDs: pgids})
}
