package riscv

import (
	"context"
	"errors"
	"io"

	"github.com/go-rv32/rv32i/pkg/elfimage"
	"github.com/go-rv32/rv32i/pkg/rvlog"
)

// Reason classifies why Run stopped.
type Reason int

const (
	// ReasonSuccess means the program performed the tohost CSR write.
	ReasonSuccess Reason = iota
	// ReasonError means a fatal error (decode, memory, or harness
	// failure) stopped the run.
	ReasonError
	// ReasonCancelled means the caller's context was cancelled.
	ReasonCancelled
)

// RunResult summarizes a completed (or aborted) run.
type RunResult struct {
	Reason    Reason
	Err       error
	Retired   uint64
	FinalPC   uint32
}

// Machine owns one Executor and drives its Step loop. It is a value-owning
// type: every Machine instance is independent and safe to use from a
// single goroutine at a time, with no process-wide globals.
type Machine struct {
	exec *Executor
	cfg  Config
	log  *rvlog.Logger
}

// NewMachine allocates memory and registers per cfg and returns a Machine
// ready to load an image.
func NewMachine(cfg Config, log *rvlog.Logger) *Machine {
	if log == nil {
		log = rvlog.Default()
	}
	m := &Machine{exec: NewExecutor(cfg), cfg: cfg, log: log}
	m.exec.Regs.SetPC(cfg.Base)
	return m
}

// LoadELF reads a statically linked ELF32 little-endian image from r and
// copies every PT_LOAD segment into the machine's memory at
// p_paddr - Base. PC is set to Base, the riscv-tests convention of
// entry == Base.
func (m *Machine) LoadELF(r io.ReaderAt) error {
	img, err := elfimage.Load(r)
	if err != nil {
		return err
	}
	for i, seg := range img.Segments {
		addr := seg.Paddr - m.cfg.Base
		if err := m.exec.Mem.Write(seg.Paddr, seg.Data); err != nil {
			return &elfimage.LoadError{Segment: i, Addr: addr, Len: len(seg.Data), Err: err}
		}
	}
	m.exec.Regs.SetPC(m.cfg.Base)
	return nil
}

// Registers exposes the machine's register file for inspection (used by
// tests and the CLI's --trace mode).
func (m *Machine) Registers() *Registers { return &m.exec.Regs }

// Memory exposes the machine's memory for inspection.
func (m *Machine) Memory() *Memory { return m.exec.Mem }

// Run repeatedly steps the executor until termination, a fatal error, or
// ctx cancellation. Cancellation is checked between Step calls only: a
// single Step always completes, so instructions commit atomically from
// the caller's perspective.
func (m *Machine) Run(ctx context.Context) RunResult {
	var retired uint64
	for {
		select {
		case <-ctx.Done():
			return RunResult{Reason: ReasonCancelled, Err: ctx.Err(), Retired: retired, FinalPC: m.exec.Regs.PC()}
		default:
		}

		pc := m.exec.Regs.PC()
		err := m.exec.Step()
		if m.cfg.Trace {
			m.log.Debug("step", "pc", pc, "retired", retired)
		}
		if err == nil {
			retired++
			continue
		}
		if errors.Is(err, ErrHalted) {
			retired++
			return RunResult{Reason: ReasonSuccess, Retired: retired, FinalPC: m.exec.Regs.PC()}
		}
		return RunResult{Reason: ReasonError, Err: err, Retired: retired, FinalPC: pc}
	}
}
