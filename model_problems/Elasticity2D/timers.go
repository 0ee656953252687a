package Elasticity2D

import (
	"fmt"
	"io"
	"time"
)

type Phase uint8

const (
	T_ASSEMBLE Phase = iota
	T_SOLVE
	T_PRECOND
	T_IO
	T_INIT
	T_UPDATE
	numPhases
)

func (p Phase) String() string {
	return [...]string{"T_assemble", "T_solve", "T_precond", "T_IO", "T_init", "T_update"}[p]
}

// Timers accumulates wall clock time per phase of a run
type Timers struct {
	start  time.Time
	phases [numPhases]time.Duration
}

func NewTimers() *Timers {
	return &Timers{start: time.Now()}
}

// Time runs fn and charges its duration to phase
func (tm *Timers) Time(phase Phase, fn func() error) error {
	t := time.Now()
	err := fn()
	tm.phases[phase] += time.Since(t)
	return err
}

func (tm *Timers) Elapsed(phase Phase) time.Duration { return tm.phases[phase] }

func (tm *Timers) Print(w io.Writer) {
	fmt.Fprintf(w, "\n+=========================\n")
	for _, p := range []Phase{T_ASSEMBLE, T_PRECOND, T_SOLVE, T_IO, T_UPDATE, T_INIT} {
		fmt.Fprintf(w, "| %-10s = %f\n", p, tm.phases[p].Seconds())
	}
	fmt.Fprintf(w, "+-------------------------\n")
	fmt.Fprintf(w, "| %-10s = %f\n", "T_total", time.Since(tm.start).Seconds())
	fmt.Fprintf(w, "+=========================\n")
}
