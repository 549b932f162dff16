package emu

import (
	"os"
	"sync"
)

// fileDescriptor is a host file backing one entry the open syscall has
// handed a MIPS fd number for. The fixed o32 descriptors 0/1/2 (stdin,
// stdout, stderr) never get an entry here: DefaultSyscallHandler's
// read/write handlers route those straight to the host streams it was
// constructed with and only consult the FDTable for fd >= 3.
type fileDescriptor struct {
	host *os.File
}

// FDTable tracks the file descriptors a running program has opened via the
// open syscall, starting allocation at fd 3 so the caller's own handling of
// 0/1/2 is never shadowed.
type FDTable struct {
	fds    map[uint64]*fileDescriptor
	nextFD uint64
	mu     sync.Mutex
}

// NewFDTable creates an FDTable with no descriptors open; the first Open
// call allocates fd 3.
func NewFDTable() *FDTable {
	return &FDTable{
		fds:    make(map[uint64]*fileDescriptor),
		nextFD: 3,
	}
}

// Open opens path on the host with the given host open flags and mode
// (passed to os.OpenFile unchanged), returning
// the fd the running program will see in v0.
func (t *FDTable) Open(path string, flags int, mode os.FileMode) (uint64, error) {
	host, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fd := t.nextFD
	t.nextFD++
	t.fds[fd] = &fileDescriptor{host: host}

	return fd, nil
}

// Close closes fd, which must have come from a prior Open call.
func (t *FDTable) Close(fd uint64) error {
	t.mu.Lock()
	entry, exists := t.fds[fd]
	if exists {
		delete(t.fds, fd)
	}
	t.mu.Unlock()

	if !exists {
		return os.ErrInvalid
	}
	return entry.host.Close()
}

// Read reads from fd into buf.
func (t *FDTable) Read(fd uint64, buf []byte) (int, error) {
	host, err := t.lookup(fd)
	if err != nil {
		return 0, err
	}
	return host.Read(buf)
}

// Write writes buf to fd.
func (t *FDTable) Write(fd uint64, buf []byte) (int, error) {
	host, err := t.lookup(fd)
	if err != nil {
		return 0, err
	}
	return host.Write(buf)
}

func (t *FDTable) lookup(fd uint64) (*os.File, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.fds[fd]
	if !exists {
		return nil, os.ErrInvalid
	}
	return entry.host, nil
}
