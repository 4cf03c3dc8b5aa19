package riscv

import (
	"errors"
	"fmt"
)

// The following sentinel errors classify every fatal condition the
// emulator can produce. All of them are terminal: the driver never
// retries or recovers, it reports the first one and stops.
var (
	// ErrDecode indicates an unknown opcode/funct3/funct7 combination.
	ErrDecode = errors.New("riscv: decode error")

	// ErrMemory indicates an effective address outside [Base, Base+MemSize).
	ErrMemory = errors.New("riscv: memory out of range")

	// ErrHarnessFailure indicates an ecall with gp > 1.
	ErrHarnessFailure = errors.New("riscv: harness reported failure")

	// ErrHalted is returned by Step when the running program performs the
	// tohost CSR write that signals a successful test-harness run. It is
	// not a failure: the driver checks errors.Is(err, ErrHalted) to stop
	// the loop cleanly.
	ErrHalted = errors.New("riscv: halted (success)")
)

// DecodeError wraps ErrDecode with the context needed to locate the cause.
type DecodeError struct {
	PC          uint32
	Instruction uint32
	Opcode      uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: pc=%#08x ins=%#08x opcode=%#07b", ErrDecode, e.PC, e.Instruction, e.Opcode)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// MemoryError wraps ErrMemory with the offending address and access length.
type MemoryError struct {
	Addr uint32
	Len  int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("%s: addr=%#08x len=%d", ErrMemory, e.Addr, e.Len)
}

func (e *MemoryError) Unwrap() error { return ErrMemory }

// HarnessFailureError wraps ErrHarnessFailure with the gp value observed
// at the failing ecall and the PC it occurred at.
type HarnessFailureError struct {
	GP uint32
	PC uint32
}

func (e *HarnessFailureError) Error() string {
	return fmt.Sprintf("%s: gp=%d pc=%#08x", ErrHarnessFailure, e.GP, e.PC)
}

func (e *HarnessFailureError) Unwrap() error { return ErrHarnessFailure }
