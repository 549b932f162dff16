// Package emu provides a MIPS32 Release 6 instruction execution core: a
// register file, byte-addressable memory, and an executor that decodes and
// dispatches instructions against them.
package emu

// ExceptionCause classifies the fault recorded on a RegFile when a step
// cannot complete normally.
type ExceptionCause uint8

const (
	// ExceptionNone means no fault is pending.
	ExceptionNone ExceptionCause = iota
	// ExceptionTrap is raised by teq/tne/tge/tgeu/tlt/tltu when their
	// condition holds.
	ExceptionTrap
	// ExceptionReservedInstruction is raised by an unrecognized encoding.
	ExceptionReservedInstruction
	// ExceptionAddressError names the address-error cause. The executor does
	// not raise it: a misaligned or unmapped access fails inside Memory and is
	// recorded as ExceptionMemory.
	ExceptionAddressError
	// ExceptionDivByZero is raised by div/mod/divu/modu with a zero divisor.
	ExceptionDivByZero
	// ExceptionMemory is raised when the Memory contract returns an error.
	ExceptionMemory
)

func (c ExceptionCause) String() string {
	switch c {
	case ExceptionTrap:
		return "trap"
	case ExceptionReservedInstruction:
		return "reserved-instruction"
	case ExceptionAddressError:
		return "address-error"
	case ExceptionDivByZero:
		return "div-by-zero"
	case ExceptionMemory:
		return "memory-error"
	default:
		return "none"
	}
}

// Exception is the fault record left on a RegFile by a failed step.
type Exception struct {
	Cause ExceptionCause
	Raw   uint32 // offending instruction word
}

// Register is a 32-bit general-purpose register value, viewable as signed
// or unsigned.
type Register uint32

// Signed returns the register's value interpreted as a two's-complement
// 32-bit signed integer.
func (r Register) Signed() int32 { return int32(r) }

// Unsigned returns the register's value interpreted as an unsigned 32-bit
// integer.
func (r Register) Unsigned() uint32 { return uint32(r) }

// RegFile holds the 32 general-purpose registers of a MIPS32 core plus the
// program-counter delay-slot state machine: pc is the address of the
// instruction about to be fetched, and nextPC is the address UpdatePC will
// commit into pc if no delayed branch is pending. A classic branch stages
// its target into pendingPC via DelayedBranch; the following UpdatePC call
// (the one that precedes dispatch of the delay-slot instruction) commits it
// into pc directly, reproducing the one-instruction delay of a non-R6
// branch. A compact branch instead calls BranchNow, which commits pc
// immediately within the same step — its successor is fetched from the
// target with no delay slot at all.
type RegFile struct {
	regs [32]uint32

	pc        uint32
	nextPC    uint32
	pendingPC uint32
	hasDelay  bool

	exception Exception
}

// NewRegFile creates a register file with PC and all registers at zero.
func NewRegFile() *RegFile {
	rf := &RegFile{}
	rf.nextPC = 4
	return rf
}

// Get reads a general-purpose register. Register 0 always reads as zero.
func (r *RegFile) Get(reg uint8) Register {
	if reg == 0 {
		return 0
	}
	return Register(r.regs[reg&0x1F])
}

// SetSigned writes a signed value to a register. Writes to register 0 are
// silently dropped, mirroring the hard-wired-zero convention of the
// architecture.
func (r *RegFile) SetSigned(reg uint8, v int32) {
	r.SetUnsigned(reg, uint32(v))
}

// SetUnsigned writes an unsigned value to a register. Writes to register 0
// are silently dropped.
func (r *RegFile) SetUnsigned(reg uint8, v uint32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.regs[reg] = v
}

// PC returns the address of the instruction about to be fetched.
func (r *RegFile) PC() uint32 { return r.pc }

// SetPC forces the program counter and clears any pending delayed branch.
// Used for initial program load.
func (r *RegFile) SetPC(pc uint32) {
	r.pc = pc
	r.nextPC = pc + 4
	r.hasDelay = false
}

// DelayedBranch stages target as the branch taken after the instruction in
// the delay slot (the one about to execute next) completes. Calling this
// twice before the intervening UpdatePC overwrites the earlier target,
// matching hardware: only the architecturally last branch in a delay slot
// sequence is honored.
func (r *RegFile) DelayedBranch(target uint32) {
	r.pendingPC = target
	r.hasDelay = true
}

// UpdatePC commits the next instruction's address: the staged delayed-branch
// target, if DelayedBranch was called since the last commit, or pc+4
// otherwise. Per the step driver sequence this runs once per step,
// immediately after fetch and before dispatch, so a handler's own
// DelayedBranch call affects the commit made by the *following* step's
// UpdatePC, not this one — the instruction in the delay slot is always
// fetched at the address already committed before the branch ran.
func (r *RegFile) UpdatePC() {
	if r.hasDelay {
		r.pc = r.pendingPC
		r.hasDelay = false
	} else {
		r.pc = r.nextPC
	}
	r.nextPC = r.pc + 4
}

// BranchNow commits target as pc immediately, with no delay slot: the very
// next step's fetch reads from target. Used by the R6 compact branches and
// jumps, which (unlike their classic counterparts) resolve before the
// instruction that follows them is ever fetched.
func (r *RegFile) BranchNow(target uint32) {
	r.pc = target
	r.nextPC = target + 4
	r.hasDelay = false
}

// SignalException records a fault for the current step. The executor's
// Step returns false after this is called.
func (r *RegFile) SignalException(cause ExceptionCause, raw uint32) {
	r.exception = Exception{Cause: cause, Raw: raw}
}

// PendingException returns the most recently signaled fault, or the zero
// value (ExceptionNone) if none was signaled since construction or the last
// ClearException. A successful step does not reset it.
func (r *RegFile) PendingException() Exception { return r.exception }

// ClearException resets the fault record to ExceptionNone. Step never
// clears it itself.
func (r *RegFile) ClearException() { r.exception = Exception{} }
