package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r6sim/emu"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		rf  *emu.RegFile
		mem *emu.PagedMemory
		lsu *emu.LoadStoreUnit
	)

	BeforeEach(func() {
		rf = emu.NewRegFile()
		mem = emu.NewPagedMemory()
		lsu = emu.NewLoadStoreUnit(rf, mem)
	})

	It("stores and loads a word", func() {
		rf.SetUnsigned(1, 0x1000)
		rf.SetUnsigned(2, 0xCAFEBABE)
		Expect(lsu.Sw(2, 1, 0)).To(Succeed())
		Expect(lsu.Lw(3, 1, 0)).To(Succeed())
		Expect(rf.Get(3).Unsigned()).To(Equal(uint32(0xCAFEBABE)))
	})

	It("sign-extends a loaded byte", func() {
		rf.SetUnsigned(1, 0x1000)
		Expect(mem.Write8(0x1000, 0xFF)).To(Succeed())
		Expect(lsu.Lb(2, 1, 0)).To(Succeed())
		Expect(rf.Get(2).Signed()).To(Equal(int32(-1)))
	})

	It("zero-extends a loaded byte via lbu", func() {
		rf.SetUnsigned(1, 0x1000)
		Expect(mem.Write8(0x1000, 0xFF)).To(Succeed())
		Expect(lsu.Lbu(2, 1, 0)).To(Succeed())
		Expect(rf.Get(2).Unsigned()).To(Equal(uint32(0xFF)))
	})

	It("reports an alignment error for a misaligned word access", func() {
		rf.SetUnsigned(1, 0x1001)
		err := lsu.Lw(2, 1, 0)
		Expect(err).To(HaveOccurred())
	})

	It("applies a negative immediate offset via sign extension", func() {
		rf.SetUnsigned(1, 0x1000)
		rf.SetUnsigned(2, 42)
		Expect(lsu.Sw(2, 1, 0xFFFC)).To(Succeed()) // offset -4
		Expect(lsu.Lw(3, 1, 0xFFFC)).To(Succeed())
		Expect(rf.Get(3).Unsigned()).To(Equal(uint32(42)))
	})
})
