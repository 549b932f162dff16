package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r6sim/emu"
)

var _ = Describe("RegFile", func() {
	var rf *emu.RegFile

	BeforeEach(func() {
		rf = emu.NewRegFile()
	})

	It("always reads register 0 as zero", func() {
		rf.SetUnsigned(0, 0xDEADBEEF)
		Expect(rf.Get(0).Unsigned()).To(Equal(uint32(0)))
	})

	It("drops writes to register 0 silently rather than faulting", func() {
		Expect(func() { rf.SetSigned(0, -1) }).NotTo(Panic())
		Expect(rf.Get(0).Unsigned()).To(Equal(uint32(0)))
	})

	It("round-trips signed and unsigned views of a register", func() {
		rf.SetSigned(5, -1)
		Expect(rf.Get(5).Unsigned()).To(Equal(uint32(0xFFFFFFFF)))
		Expect(rf.Get(5).Signed()).To(Equal(int32(-1)))
	})

	Describe("program counter and the delay-slot state machine", func() {
		It("advances pc by 4 with no pending branch", func() {
			rf.SetPC(0x1000)
			rf.UpdatePC()
			Expect(rf.PC()).To(Equal(uint32(0x1004)))
			rf.UpdatePC()
			Expect(rf.PC()).To(Equal(uint32(0x1008)))
		})

		It("takes a delayed branch only after the instruction in the delay slot", func() {
			rf.SetPC(0x1000)
			rf.UpdatePC() // the branch instruction's own pre-dispatch commit
			Expect(rf.PC()).To(Equal(uint32(0x1004)))
			rf.DelayedBranch(0x2000)
			// The instruction about to execute (the delay slot) still runs
			// at the address already committed before the branch was taken.
			Expect(rf.PC()).To(Equal(uint32(0x1004)))
			// The delay slot's own pre-dispatch commit is what takes the
			// branch.
			rf.UpdatePC()
			Expect(rf.PC()).To(Equal(uint32(0x2000)))
		})

		It("lets a compact branch's BranchNow override the following fetch with no delay", func() {
			rf.SetPC(0x1000)
			rf.UpdatePC() // pc=0x1004, nextPC would be 0x1008
			rf.BranchNow(0x3000)
			Expect(rf.PC()).To(Equal(uint32(0x3000)))
		})
	})

	Describe("exception signaling", func() {
		It("records a fault and clears it on demand", func() {
			rf.SignalException(emu.ExceptionDivByZero, 0xABCD)
			exc := rf.PendingException()
			Expect(exc.Cause).To(Equal(emu.ExceptionDivByZero))
			Expect(exc.Raw).To(Equal(uint32(0xABCD)))

			rf.ClearException()
			Expect(rf.PendingException().Cause).To(Equal(emu.ExceptionNone))
		})
	})
})
