package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r6sim/insts"
)

const (
	t0 = 8
	t1 = 9
	t2 = 10
	t5 = 13
	a0 = 4
)

var _ = Describe("Decoder", func() {
	var dec *insts.Decoder

	BeforeEach(func() {
		dec = insts.NewDecoder()
	})

	Describe("R-type arithmetic", func() {
		It("decodes add with the golden encoding", func() {
			golden := insts.EncodeR(insts.OpAdd, t0, t5, a0)
			Expect(golden.Raw()).To(Equal(uint32(0x01A44020)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Type).To(Equal(insts.TypeR))
			Expect(inst.Op).To(Equal(insts.OpAdd))
			Expect(inst.Rd).To(Equal(uint8(t0)))
			Expect(inst.Rs).To(Equal(uint8(t5)))
			Expect(inst.Rt).To(Equal(uint8(a0)))
		})

		It("decodes sll with a shift amount", func() {
			golden := insts.EncodeR(insts.OpSll, t0, 0, t1, 4)
			Expect(golden.Raw()).To(Equal(uint32(0x00094100)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Op).To(Equal(insts.OpSll))
			Expect(inst.Shamt).To(Equal(uint8(4)))
		})

		It("decodes sllv", func() {
			golden := insts.EncodeR(insts.OpSllv, t0, t2, t1)
			Expect(golden.Raw()).To(Equal(uint32(0x01494004)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Op).To(Equal(insts.OpSllv))
		})

		It("decodes sra", func() {
			golden := insts.EncodeR(insts.OpSra, t0, 0, t1, 4)
			Expect(golden.Raw()).To(Equal(uint32(0x00094103)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Op).To(Equal(insts.OpSra))
		})

		It("decodes srav", func() {
			golden := insts.EncodeR(insts.OpSrav, t0, t2, t1)
			Expect(golden.Raw()).To(Equal(uint32(0x01494007)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Op).To(Equal(insts.OpSrav))
		})

		It("decodes srl as srl when rs is even", func() {
			golden := insts.EncodeR(insts.OpSrl, t0, 0, t1, 4)
			Expect(golden.Raw()).To(Equal(uint32(0x00094102)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Op).To(Equal(insts.OpSrl))
		})

		It("decodes srl as rotr when rs is odd", func() {
			inst := dec.Decode(0x00094102 | (1 << 21))
			Expect(inst.Op).To(Equal(insts.OpRotr))
		})

		It("decodes srlv", func() {
			golden := insts.EncodeR(insts.OpSrlv, t0, t2, t1)
			Expect(golden.Raw()).To(Equal(uint32(0x01494006)))

			inst := dec.Decode(golden.Raw())
			Expect(inst.Op).To(Equal(insts.OpSrlv))
		})

		It("decodes srlv as rotrv when shamt bit 0 is set", func() {
			inst := dec.Decode(0x01494006 | (1 << 6))
			Expect(inst.Op).To(Equal(insts.OpRotrv))
		})

		It("distinguishes mul and muh via the shamt field", func() {
			mul := dec.Decode(insts.EncodeR(insts.OpMul, t0, t5, t1).Raw())
			Expect(mul.Op).To(Equal(insts.OpMul))

			muh := dec.Decode(insts.EncodeR(insts.OpMuh, t0, t5, t1).Raw())
			Expect(muh.Op).To(Equal(insts.OpMuh))
		})

		It("distinguishes div and mod via the shamt field", func() {
			div := dec.Decode(insts.EncodeR(insts.OpDiv, t0, t5, t1).Raw())
			Expect(div.Op).To(Equal(insts.OpDiv))

			mod := dec.Decode(insts.EncodeR(insts.OpMod, t0, t5, t1).Raw())
			Expect(mod.Op).To(Equal(insts.OpMod))
		})
	})

	Describe("Plain I-type", func() {
		It("encodes the legacy addi golden scenario", func() {
			golden := insts.EncodeI(insts.OpAddi, t0, t5, 0xFFFF)
			Expect(golden.Raw()).To(Equal(uint32(0x21A8FFFF)))
		})

		It("decodes addiu raw word", func() {
			inst := dec.Decode(0x25A8FFFF) // opcode 0x09, rs=t5, rt=t0, imm=0xFFFF
			Expect(inst.Op).To(Equal(insts.OpAddiu))
			Expect(inst.Rs).To(Equal(uint8(t5)))
			Expect(inst.Rt).To(Equal(uint8(t0)))
			Expect(inst.Imm).To(Equal(uint32(0xFFFF)))
		})
	})

	Describe("POP10 disambiguation", func() {
		// Field-number comparisons, not runtime register values: rs and rt here
		// are register indices, compared directly as encoded in the word.
		It("resolves to beqzalc when rs==0 and rt!=0", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBeqc, t1, 0, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBeqzalc))
		})

		It("resolves to beqc when rs!=0, rt!=0, rs<rt", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBeqc, t5, t0, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBeqc))
		})

		It("resolves to bovc when rs>=rt", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBeqc, t0, t5, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBovc))
		})
	})

	Describe("POP06 disambiguation", func() {
		It("resolves to blez when rt==0", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBlez, 0, t5, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBlez))
		})

		It("resolves to blezalc when rs==0, rt!=0", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBlez, t1, 0, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBlezalc))
		})

		It("resolves to bgezalc when rs==rt, rt!=0", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBlez, t1, t1, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBgezalc))
		})

		It("resolves to bgeuc when rs!=rt, both nonzero", func() {
			inst := dec.Decode(insts.EncodeI(insts.OpBlez, t1, t0, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpBgeuc))
		})
	})

	Describe("J-type", func() {
		It("computes the jump target address field", func() {
			inst := dec.Decode(insts.EncodeJ(insts.OpJ, 0x123456).Raw())
			Expect(inst.Op).To(Equal(insts.OpJ))
			Expect(inst.Address).To(Equal(uint32(0x123456)))
		})
	})

	Describe("SPECIAL3 EXT/INS", func() {
		It("decodes ext with lsb and size", func() {
			inst := dec.Decode(insts.EncodeExt(t0, t1, 4, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpExt))
			Expect(inst.Lsb).To(Equal(uint8(4)))
			Expect(inst.Msbd).To(Equal(uint8(7)))
		})

		It("decodes ins with lsb and size", func() {
			inst := dec.Decode(insts.EncodeIns(t0, t1, 4, 8).Raw())
			Expect(inst.Op).To(Equal(insts.OpIns))
			Expect(inst.Lsb).To(Equal(uint8(4)))
			Expect(inst.Msbd).To(Equal(uint8(11)))
		})
	})

	Describe("SPECIAL3 BSHFL", func() {
		It("decodes bitswap", func() {
			word := uint32(0x1F) << 26 // opcode special3
			word |= uint32(t1) << 16
			word |= uint32(t0) << 11
			word |= uint32(0) << 6
			word |= 0x20 // func bshfl
			inst := dec.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpBitswap))
		})

		It("decodes align with a byte position", func() {
			word := uint32(0x1F) << 26
			word |= uint32(t2) << 21
			word |= uint32(t1) << 16
			word |= uint32(t0) << 11
			word |= uint32(0x08+2) << 6
			word |= 0x20
			inst := dec.Decode(word)
			Expect(inst.Op).To(Equal(insts.OpAlign))
			Expect(inst.Bp).To(Equal(uint8(2)))
		})
	})

	Describe("unrecognized encodings", func() {
		It("reports a decode error for an unused SPECIAL func", func() {
			inst := dec.Decode(0x3F) // func field 0x3F, unused
			Expect(inst.Type).To(Equal(insts.TypeDecodeError))
		})
	})
})
