package emu

import (
	"io"
	"os"
)

// MIPS o32 syscall numbers. original_source never defines a syscall
// instruction at all; this surface is supplemented so toolchain-produced
// programs have a termination mechanism, following the numbering real o32
// MIPS Linux binaries use.
const (
	SyscallExit  uint32 = 4001
	SyscallRead  uint32 = 4003
	SyscallWrite uint32 = 4004
	SyscallOpen  uint32 = 4005
	SyscallClose uint32 = 4006
)

// Linux error codes.
const (
	EBADF  = 9
	ENOSYS = 38
	EIO    = 5
)

// SyscallResult represents the result of a syscall execution.
type SyscallResult struct {
	Exited   bool
	ExitCode int32
}

// SyscallHandler handles the syscall instruction. The MIPS o32 convention
// places the syscall number in v0 (register 2), arguments in a0-a3
// (registers 4-7), and the return value in v0.
type SyscallHandler interface {
	Handle(rf *RegFile, mem Memory) SyscallResult
}

// DefaultSyscallHandler supports exit, read, write, open, and close. The
// fixed descriptors 0/1/2 go straight to stdin/stdout/stderr; any
// descriptor opened via the open syscall is tracked in an FDTable and
// backed by a real host file.
type DefaultSyscallHandler struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	fds *FDTable
}

// NewDefaultSyscallHandler creates a default syscall handler.
func NewDefaultSyscallHandler(stdout, stderr io.Writer) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{stdout: stdout, stderr: stderr, fds: NewFDTable()}
}

// SetStdin sets the stdin reader for the read syscall.
func (h *DefaultSyscallHandler) SetStdin(stdin io.Reader) {
	h.stdin = stdin
}

// Handle dispatches on the syscall number in v0 (register 2).
func (h *DefaultSyscallHandler) Handle(rf *RegFile, mem Memory) SyscallResult {
	switch rf.Get(2).Unsigned() {
	case SyscallExit:
		return h.handleExit(rf)
	case SyscallRead:
		return h.handleRead(rf, mem)
	case SyscallWrite:
		return h.handleWrite(rf, mem)
	case SyscallOpen:
		return h.handleOpen(rf, mem)
	case SyscallClose:
		return h.handleClose(rf)
	default:
		return h.handleUnknown(rf)
	}
}

func (h *DefaultSyscallHandler) handleExit(rf *RegFile) SyscallResult {
	return SyscallResult{Exited: true, ExitCode: rf.Get(4).Signed()}
}

func (h *DefaultSyscallHandler) handleRead(rf *RegFile, mem Memory) SyscallResult {
	fd := rf.Get(4).Unsigned()
	bufPtr := rf.Get(5).Unsigned()
	count := rf.Get(6).Unsigned()

	if fd >= 3 {
		buf := make([]byte, count)
		n, err := h.fds.Read(uint64(fd), buf)
		if err != nil && n == 0 {
			h.setError(rf, EBADF)
			return SyscallResult{}
		}
		for i := 0; i < n; i++ {
			_ = mem.Write8(bufPtr+uint32(i), buf[i])
		}
		rf.SetUnsigned(2, uint32(n))
		return SyscallResult{}
	}

	if fd != 0 {
		h.setError(rf, EBADF)
		return SyscallResult{}
	}
	if h.stdin == nil {
		rf.SetUnsigned(2, 0)
		return SyscallResult{}
	}

	buf := make([]byte, count)
	n, err := h.stdin.Read(buf)
	if err != nil && n == 0 {
		rf.SetUnsigned(2, 0)
		return SyscallResult{}
	}

	for i := 0; i < n; i++ {
		_ = mem.Write8(bufPtr+uint32(i), buf[i])
	}
	rf.SetUnsigned(2, uint32(n))
	return SyscallResult{}
}

func (h *DefaultSyscallHandler) handleWrite(rf *RegFile, mem Memory) SyscallResult {
	fd := rf.Get(4).Unsigned()
	bufPtr := rf.Get(5).Unsigned()
	count := rf.Get(6).Unsigned()

	buf := make([]byte, count)
	for i := uint32(0); i < count; i++ {
		v, err := mem.Read8(bufPtr + i)
		if err != nil {
			h.setError(rf, EIO)
			return SyscallResult{}
		}
		buf[i] = v
	}

	if fd >= 3 {
		n, err := h.fds.Write(uint64(fd), buf)
		if err != nil {
			h.setError(rf, EBADF)
			return SyscallResult{}
		}
		rf.SetUnsigned(2, uint32(n))
		return SyscallResult{}
	}

	var writer io.Writer
	switch fd {
	case 1:
		writer = h.stdout
	case 2:
		writer = h.stderr
	default:
		h.setError(rf, EBADF)
		return SyscallResult{}
	}

	n, err := writer.Write(buf)
	if err != nil {
		h.setError(rf, EIO)
		return SyscallResult{}
	}
	rf.SetUnsigned(2, uint32(n))
	return SyscallResult{}
}

// handleOpen opens the null-terminated path at a0, with host flags in a1
// and mode in a2, returning the new descriptor in v0.
func (h *DefaultSyscallHandler) handleOpen(rf *RegFile, mem Memory) SyscallResult {
	pathPtr := rf.Get(4).Unsigned()
	flags := int(rf.Get(5).Unsigned())
	mode := os.FileMode(rf.Get(6).Unsigned())

	path, err := readCString(mem, pathPtr)
	if err != nil {
		h.setError(rf, EIO)
		return SyscallResult{}
	}

	fd, err := h.fds.Open(path, flags, mode)
	if err != nil {
		h.setError(rf, EIO)
		return SyscallResult{}
	}

	rf.SetUnsigned(2, uint32(fd))
	return SyscallResult{}
}

func (h *DefaultSyscallHandler) handleClose(rf *RegFile) SyscallResult {
	fd := rf.Get(4).Unsigned()
	if err := h.fds.Close(uint64(fd)); err != nil {
		h.setError(rf, EBADF)
		return SyscallResult{}
	}
	rf.SetUnsigned(2, 0)
	return SyscallResult{}
}

func (h *DefaultSyscallHandler) handleUnknown(rf *RegFile) SyscallResult {
	h.setError(rf, ENOSYS)
	return SyscallResult{}
}

// setError sets v0 to -errno, as two's complement.
func (h *DefaultSyscallHandler) setError(rf *RegFile, errno int) {
	rf.SetSigned(2, int32(-errno))
}

// readCString reads a NUL-terminated string from memory, as used for the
// path argument of the open syscall.
func readCString(mem Memory, addr uint32) (string, error) {
	var buf []byte
	for {
		b, err := mem.Read8(addr)
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
		addr++
	}
	return string(buf), nil
}
