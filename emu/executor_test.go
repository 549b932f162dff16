package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r6sim/emu"
	"github.com/sarchlab/r6sim/insts"
)

const loadAddr = 0x400000

func load(mem *emu.PagedMemory, addr uint32, words ...*insts.Instruction) {
	for i, ins := range words {
		_ = mem.Write32(addr+uint32(i)*4, ins.Raw())
	}
}

// pop10Word builds a raw POP10-opcode word (opcode 0x08) whose rs/rt fields
// select beqzalc/beqc/bovc at decode time, mirroring the disambiguation in
// the decoder itself rather than going through an encoder.
func pop10Word(rs, rt uint8, imm uint32) uint32 {
	return 0x08<<26 | uint32(rs&0x1F)<<21 | uint32(rt&0x1F)<<16 | (imm & 0xFFFF)
}

// pop06Word builds a raw POP06-opcode word (opcode 0x06) whose rs/rt fields
// select blez/blezalc/bgezalc/bgeuc at decode time, mirroring pop10Word.
func pop06Word(rs, rt uint8, imm uint32) uint32 {
	return 0x06<<26 | uint32(rs&0x1F)<<21 | uint32(rt&0x1F)<<16 | (imm & 0xFFFF)
}

var _ = Describe("Executor", func() {
	var (
		rf  *emu.RegFile
		mem *emu.PagedMemory
		ex  *emu.Executor
	)

	BeforeEach(func() {
		rf = emu.NewRegFile()
		mem = emu.NewPagedMemory()
		ex = emu.NewExecutor(rf)
		rf.SetPC(loadAddr)
	})

	It("executes an addu and advances the pc by 4", func() {
		rf.SetUnsigned(1, 10)
		rf.SetUnsigned(2, 32)
		load(mem, loadAddr, insts.EncodeR(insts.OpAddu, 3, 1, 2))

		ok := ex.Step(rf, mem)
		Expect(ok).To(BeTrue())
		Expect(rf.Get(3).Unsigned()).To(Equal(uint32(42)))
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4)))
	})

	It("distinguishes mul from muh via the shamt field", func() {
		rf.SetSigned(1, -1)
		rf.SetSigned(2, -1)
		load(mem, loadAddr,
			insts.EncodeR(insts.OpMul, 3, 1, 2),
			insts.EncodeR(insts.OpMuh, 4, 1, 2),
		)

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(3).Signed()).To(Equal(int32(1)))
		Expect(rf.Get(4).Signed()).To(Equal(int32(0)))
	})

	It("signals a divide-by-zero exception before writing the destination register", func() {
		rf.SetUnsigned(1, 7)
		rf.SetUnsigned(2, 0)
		rf.SetUnsigned(3, 0xDEADBEEF)
		load(mem, loadAddr, insts.EncodeR(insts.OpDiv, 3, 1, 2))

		ok := ex.Step(rf, mem)
		Expect(ok).To(BeFalse())
		Expect(rf.PendingException().Cause).To(Equal(emu.ExceptionDivByZero))
		Expect(rf.Get(3).Unsigned()).To(Equal(uint32(0xDEADBEEF)))
	})

	It("traps when teq finds its operands equal", func() {
		rf.SetUnsigned(1, 9)
		rf.SetUnsigned(2, 9)
		load(mem, loadAddr, insts.EncodeR(insts.OpTeq, 0, 1, 2))

		ok := ex.Step(rf, mem)
		Expect(ok).To(BeFalse())
		Expect(rf.PendingException().Cause).To(Equal(emu.ExceptionTrap))
	})

	It("resolves POP10's beqzalc/beqc/bovc overload by register field comparison", func() {
		// rs==0, rt!=0, rs<rt -> beqzalc
		rf.SetUnsigned(2, 0)
		Expect(mem.Write32(loadAddr, pop10Word(0, 2, 8))).To(Succeed())

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(31).Unsigned()).To(Equal(uint32(loadAddr + 4)))
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4 + 8<<2)))
	})

	It("takes a beqc branch with no delay slot when the registers are equal", func() {
		rf.SetUnsigned(1, 4)
		rf.SetUnsigned(2, 4)
		Expect(mem.Write32(loadAddr, pop10Word(1, 2, 4))).To(Succeed())

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4 + 4<<2)))
	})

	It("links jalr to the pc already advanced to the delay slot instruction", func() {
		rf.SetPC(0x10BEEF00)
		rf.SetUnsigned(4, 0xBAD)
		load(mem, 0x10BEEF00,
			insts.EncodeR(insts.OpJalr, 31, 4, 0),
			insts.EncodeR(insts.OpAddu, 0, 0, 0), // delay slot
		)

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(31).Unsigned()).To(Equal(uint32(0x10BEEF04)))
		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(0xBAD)))
	})

	It("links jalr to ra regardless of the encoded rd field", func() {
		rf.SetPC(0x10BEEF00)
		rf.SetUnsigned(4, 0xBAD)
		load(mem, 0x10BEEF00,
			insts.EncodeR(insts.OpJalr, 9, 4, 0), // legal encoding, rd != ra
			insts.EncodeR(insts.OpAddu, 0, 0, 0), // delay slot
		)

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(31).Unsigned()).To(Equal(uint32(0x10BEEF04)))
		Expect(rf.Get(9).Unsigned()).To(Equal(uint32(0)))
	})

	It("runs a delayed jr through the delay slot before landing", func() {
		rf.SetUnsigned(4, loadAddr+0x100)
		load(mem, loadAddr,
			insts.EncodeR(insts.OpJr, 0, 4, 0),
			insts.EncodeR(insts.OpAddu, 5, 0, 0), // delay slot
		)

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4))) // delay slot not yet skipped
		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 0x100)))
	})

	It("runs a classic blez through the delay slot, unlike its compact blezc form", func() {
		rf.SetSigned(1, -1)
		Expect(mem.Write32(loadAddr, pop06Word(1, 0, 4))).To(Succeed()) // rt==0 -> blez
		Expect(mem.Write32(loadAddr+4, insts.EncodeR(insts.OpAddu, 0, 0, 0).Raw())).To(Succeed())

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4))) // delay slot not yet taken
		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4 + 4<<2)))
	})

	It("only writes the link register when a blezalc branch is actually taken", func() {
		rf.SetSigned(31, -1) // sentinel: should survive an untaken branch
		rf.SetSigned(2, 5)   // rt > 0, so blezalc (rs=0, rt!=0) does not branch
		Expect(mem.Write32(loadAddr, pop06Word(0, 2, 4))).To(Succeed()) // rs==0, rt!=0 -> blezalc

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(31).Signed()).To(Equal(int32(-1)))
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4)))
	})

	It("computes bc's target as a pc-relative offset, not a jump-target address", func() {
		load(mem, loadAddr, insts.EncodeJ(insts.OpBc, 2))

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4 + 2<<2)))
	})

	It("links balc to the pc, writing ra unconditionally", func() {
		load(mem, loadAddr, insts.EncodeJ(insts.OpBalc, 2))

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(31).Unsigned()).To(Equal(uint32(loadAddr + 4)))
		Expect(rf.PC()).To(Equal(uint32(loadAddr + 4 + 2<<2)))
	})

	It("stores and loads a word through lw/sw", func() {
		rf.SetUnsigned(1, 0x500000)
		rf.SetUnsigned(2, 0x12345678)
		load(mem, loadAddr,
			insts.EncodeI(insts.OpSw, 2, 1, 0),
			insts.EncodeI(insts.OpLw, 3, 1, 0),
		)

		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(ex.Step(rf, mem)).To(BeTrue())
		Expect(rf.Get(3).Unsigned()).To(Equal(uint32(0x12345678)))
	})

	It("signals a reserved-instruction exception for bitfield faults", func() {
		load(mem, loadAddr, insts.EncodeExt(1, 2, 28, 8)) // lsb+size > 32

		ok := ex.Step(rf, mem)
		Expect(ok).To(BeFalse())
		Expect(rf.PendingException().Cause).To(Equal(emu.ExceptionReservedInstruction))
	})

	It("exits the program via a syscall handler", func() {
		ex.SetSyscallFunc(func(rf *emu.RegFile, mem emu.Memory) (bool, int32) {
			if rf.Get(2).Unsigned() == emu.SyscallExit {
				return true, rf.Get(4).Signed()
			}
			return false, 0
		})
		rf.SetUnsigned(2, emu.SyscallExit)
		rf.SetSigned(4, 7)
		load(mem, loadAddr, insts.EncodeR(insts.OpSyscall, 0, 0, 0))

		Expect(ex.Step(rf, mem)).To(BeTrue())
		exited, code := ex.LastSyscallExit()
		Expect(exited).To(BeTrue())
		Expect(code).To(Equal(int32(7)))
	})

	It("signals a reserved-instruction exception for syscall with no handler installed", func() {
		load(mem, loadAddr, insts.EncodeR(insts.OpSyscall, 0, 0, 0))

		ok := ex.Step(rf, mem)
		Expect(ok).To(BeFalse())
		Expect(rf.PendingException().Cause).To(Equal(emu.ExceptionReservedInstruction))
	})
})
