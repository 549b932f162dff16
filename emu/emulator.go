package emu

import (
	"fmt"
	"io"
	"os"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	Exited   bool
	ExitCode int32
	Err      error
}

// Emulator drives a RegFile and Memory through an Executor, one instruction
// at a time, and owns the syscall handler and I/O the executed program
// observes.
type Emulator struct {
	regFile  *RegFile
	memory   Memory
	executor *Executor

	syscallHandler SyscallHandler

	stdout io.Writer
	stderr io.Writer

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption configures an Emulator at construction time.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) { e.stdout = w }
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) { e.stderr = w }
}

// WithSyscallHandler installs a custom syscall handler in place of
// DefaultSyscallHandler.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) { e.syscallHandler = handler }
}

// WithStackPointer sets the initial value of register 29 (sp).
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) { e.regFile.SetUnsigned(29, sp) }
}

// WithMaxInstructions caps the number of steps Run will execute. Zero
// means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) { e.maxInstructions = max }
}

// NewEmulator creates an Emulator with a fresh register file and paged
// memory, ready to have a program loaded into it.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := NewRegFile()
	memory := NewPagedMemory()

	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.executor = NewExecutor(regFile)
	if e.syscallHandler == nil {
		e.syscallHandler = NewDefaultSyscallHandler(e.stdout, e.stderr)
	}
	e.executor.SetSyscallFunc(func(rf *RegFile, mem Memory) (bool, int32) {
		result := e.syscallHandler.Handle(rf, mem)
		return result.Exited, result.ExitCode
	})

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile { return e.regFile }

// Memory returns the emulator's memory.
func (e *Emulator) Memory() Memory { return e.memory }

// InstructionCount returns the number of instructions executed so far.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// LoadProgram copies program into memory starting at loadAddr and sets the
// program counter to loadAddr.
func (e *Emulator) LoadProgram(loadAddr uint32, program []byte) {
	pm, ok := e.memory.(*PagedMemory)
	if ok {
		for i, b := range program {
			_ = pm.Write8(loadAddr+uint32(i), b)
		}
	}
	e.regFile.SetPC(loadAddr)
}

// SetEntry sets the program counter directly, for callers (such as the ELF
// loader) that load segments at their own addresses and only need to set
// the entry point afterward.
func (e *Emulator) SetEntry(entry uint32) {
	e.regFile.SetPC(entry)
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: fmt.Errorf("max instructions reached")}
	}

	ok := e.executor.Step(e.regFile, e.memory)
	e.instructionCount++

	if !ok {
		exc := e.regFile.PendingException()
		return StepResult{Err: fmt.Errorf("exception: %s (instruction 0x%08x at pc 0x%08x)", exc.Cause, exc.Raw, e.regFile.PC())}
	}

	exited, code := e.executor.LastSyscallExit()
	if exited {
		return StepResult{Exited: true, ExitCode: code}
	}

	return StepResult{}
}

// Run executes instructions until the program exits or an error occurs,
// returning the exit code (-1 on error).
func (e *Emulator) Run() int32 {
	for {
		result := e.Step()
		if result.Exited {
			return result.ExitCode
		}
		if result.Err != nil {
			_, _ = fmt.Fprintf(e.stderr, "emulation error: %v\n", result.Err)
			return -1
		}
	}
}
