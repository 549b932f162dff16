package emu

import "math/bits"

// ALU implements the MIPS32 Release 6 SPECIAL-encoding arithmetic, logic,
// and shift operations. Every method reads its operands from and writes its
// result to the ALU's own register file.
type ALU struct {
	regFile *RegFile
}

// NewALU creates an ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Add performs rd = rs + rt. R6 drops the classic ISA's overflow trap on
// add/sub; overflow simply wraps, matching addu.
func (a *ALU) Add(rd, rs, rt uint8) {
	a.regFile.SetSigned(rd, a.regFile.Get(rs).Signed()+a.regFile.Get(rt).Signed())
}

// Addu performs rd = rs + rt with unsigned wraparound semantics.
func (a *ALU) Addu(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()+a.regFile.Get(rt).Unsigned())
}

// Sub performs rd = rs - rt.
func (a *ALU) Sub(rd, rs, rt uint8) {
	a.regFile.SetSigned(rd, a.regFile.Get(rs).Signed()-a.regFile.Get(rt).Signed())
}

// Subu performs rd = rs - rt with unsigned wraparound semantics.
func (a *ALU) Subu(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()-a.regFile.Get(rt).Unsigned())
}

// Addiu performs rt = rs + sign_ext_imm(imm).
func (a *ALU) Addiu(rt, rs uint8, imm uint32) {
	a.regFile.SetSigned(rt, a.regFile.Get(rs).Signed()+signExtImm(imm))
}

// And performs rd = rs & rt.
func (a *ALU) And(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()&a.regFile.Get(rt).Unsigned())
}

// Or performs rd = rs | rt.
func (a *ALU) Or(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()|a.regFile.Get(rt).Unsigned())
}

// Xor performs rd = rs ^ rt.
func (a *ALU) Xor(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()^a.regFile.Get(rt).Unsigned())
}

// Nor performs rd = ^(rs | rt).
func (a *ALU) Nor(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, ^(a.regFile.Get(rs).Unsigned() | a.regFile.Get(rt).Unsigned()))
}

// Andi performs rt = rs & imm (zero-extended immediate).
func (a *ALU) Andi(rt, rs uint8, imm uint32) {
	a.regFile.SetUnsigned(rt, a.regFile.Get(rs).Unsigned()&imm)
}

// Ori performs rt = rs | imm (zero-extended immediate).
func (a *ALU) Ori(rt, rs uint8, imm uint32) {
	a.regFile.SetUnsigned(rt, a.regFile.Get(rs).Unsigned()|imm)
}

// Xori performs rt = rs ^ imm (zero-extended immediate).
func (a *ALU) Xori(rt, rs uint8, imm uint32) {
	a.regFile.SetUnsigned(rt, a.regFile.Get(rs).Unsigned()^imm)
}

// Aui performs rt = rs + (imm << 16), with the add computed at 32-bit
// signed width (add upper immediate).
func (a *ALU) Aui(rt, rs uint8, imm uint32) {
	a.regFile.SetSigned(rt, a.regFile.Get(rs).Signed()+int32(imm<<16))
}

// Slt performs rd = (rs < rt) ? 1 : 0, signed comparison.
func (a *ALU) Slt(rd, rs, rt uint8) {
	if a.regFile.Get(rs).Signed() < a.regFile.Get(rt).Signed() {
		a.regFile.SetUnsigned(rd, 1)
	} else {
		a.regFile.SetUnsigned(rd, 0)
	}
}

// Sltu performs rd = (rs < rt) ? 1 : 0, unsigned comparison.
func (a *ALU) Sltu(rd, rs, rt uint8) {
	if a.regFile.Get(rs).Unsigned() < a.regFile.Get(rt).Unsigned() {
		a.regFile.SetUnsigned(rd, 1)
	} else {
		a.regFile.SetUnsigned(rd, 0)
	}
}

// Slti performs rt = (rs < sign_ext_imm(imm)) ? 1 : 0, signed comparison.
func (a *ALU) Slti(rt, rs uint8, imm uint32) {
	if a.regFile.Get(rs).Signed() < signExtImm(imm) {
		a.regFile.SetUnsigned(rt, 1)
	} else {
		a.regFile.SetUnsigned(rt, 0)
	}
}

// Sltiu performs rt = (rs < sign_ext_imm(imm)) ? 1 : 0, comparing as
// unsigned after the immediate is sign-extended (per the architecture, the
// immediate is still sign-extended before the unsigned comparison).
func (a *ALU) Sltiu(rt, rs uint8, imm uint32) {
	if a.regFile.Get(rs).Unsigned() < uint32(signExtImm(imm)) {
		a.regFile.SetUnsigned(rt, 1)
	} else {
		a.regFile.SetUnsigned(rt, 0)
	}
}

// Sll performs rd = rt << shamt (logical left shift).
func (a *ALU) Sll(rd, rt, shamt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rt).Unsigned()<<shamt)
}

// Sllv performs rd = rt << (rs & 0x1F).
func (a *ALU) Sllv(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rt).Unsigned()<<(a.regFile.Get(rs).Unsigned()&0x1F))
}

// Srl performs rd = rt >> shamt (logical right shift).
func (a *ALU) Srl(rd, rt, shamt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rt).Unsigned()>>shamt)
}

// Srlv performs rd = rt >> (rs & 0x1F).
func (a *ALU) Srlv(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rt).Unsigned()>>(a.regFile.Get(rs).Unsigned()&0x1F))
}

// Rotr performs a right rotate of rt by shamt bits. Encoded as srl with the
// otherwise-unused rs field's low bit set.
func (a *ALU) Rotr(rd, rt, shamt uint8) {
	a.regFile.SetUnsigned(rd, bits.RotateLeft32(a.regFile.Get(rt).Unsigned(), -int(shamt)))
}

// Rotrv performs a right rotate of rt by (rs & 0x1F) bits. Encoded as srlv
// with the otherwise-unused shamt field's low bit set.
func (a *ALU) Rotrv(rd, rs, rt uint8) {
	sh := a.regFile.Get(rs).Unsigned() & 0x1F
	a.regFile.SetUnsigned(rd, bits.RotateLeft32(a.regFile.Get(rt).Unsigned(), -int(sh)))
}

// Sra performs an arithmetic right shift of rt by shamt bits, preserving
// sign.
func (a *ALU) Sra(rd, rt, shamt uint8) {
	a.regFile.SetSigned(rd, a.regFile.Get(rt).Signed()>>shamt)
}

// Srav performs an arithmetic right shift of rt by (rs & 0x1F) bits.
func (a *ALU) Srav(rd, rs, rt uint8) {
	sh := a.regFile.Get(rs).Unsigned() & 0x1F
	a.regFile.SetSigned(rd, a.regFile.Get(rt).Signed()>>sh)
}

// Mul performs rd = low32(rs * rt), signed.
func (a *ALU) Mul(rd, rs, rt uint8) {
	product := int64(a.regFile.Get(rs).Signed()) * int64(a.regFile.Get(rt).Signed())
	a.regFile.SetSigned(rd, int32(product))
}

// Muh performs rd = high32(rs * rt), signed: widen both operands to 64
// bits, multiply, then take the upper half.
func (a *ALU) Muh(rd, rs, rt uint8) {
	product := int64(a.regFile.Get(rs).Signed()) * int64(a.regFile.Get(rt).Signed())
	a.regFile.SetSigned(rd, int32(product>>32))
}

// Mulu performs rd = low32(rs * rt), unsigned.
func (a *ALU) Mulu(rd, rs, rt uint8) {
	product := uint64(a.regFile.Get(rs).Unsigned()) * uint64(a.regFile.Get(rt).Unsigned())
	a.regFile.SetUnsigned(rd, uint32(product))
}

// Muhu performs rd = high32(rs * rt), unsigned.
func (a *ALU) Muhu(rd, rs, rt uint8) {
	product := uint64(a.regFile.Get(rs).Unsigned()) * uint64(a.regFile.Get(rt).Unsigned())
	a.regFile.SetUnsigned(rd, uint32(product>>32))
}

// Div performs rd = rs / rt, signed. The caller must check for a zero
// divisor before calling; on R6 this is a fault, not a defined result.
func (a *ALU) Div(rd, rs, rt uint8) {
	a.regFile.SetSigned(rd, a.regFile.Get(rs).Signed()/a.regFile.Get(rt).Signed())
}

// Mod performs rd = rs % rt, signed.
func (a *ALU) Mod(rd, rs, rt uint8) {
	a.regFile.SetSigned(rd, a.regFile.Get(rs).Signed()%a.regFile.Get(rt).Signed())
}

// Divu performs rd = rs / rt, unsigned.
func (a *ALU) Divu(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()/a.regFile.Get(rt).Unsigned())
}

// Modu performs rd = rs % rt, unsigned.
func (a *ALU) Modu(rd, rs, rt uint8) {
	a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned()%a.regFile.Get(rt).Unsigned())
}

// Clz counts the number of leading zero bits in rs.
func (a *ALU) Clz(rd, rs uint8) {
	a.regFile.SetUnsigned(rd, uint32(bits.LeadingZeros32(a.regFile.Get(rs).Unsigned())))
}

// Clo counts the number of leading one bits in rs.
func (a *ALU) Clo(rd, rs uint8) {
	a.regFile.SetUnsigned(rd, uint32(bits.LeadingZeros32(^a.regFile.Get(rs).Unsigned())))
}

// Seleqz performs rd = (rt == 0) ? rs : 0.
func (a *ALU) Seleqz(rd, rs, rt uint8) {
	if a.regFile.Get(rt).Unsigned() == 0 {
		a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned())
	} else {
		a.regFile.SetUnsigned(rd, 0)
	}
}

// Selnez performs rd = (rt != 0) ? rs : 0.
func (a *ALU) Selnez(rd, rs, rt uint8) {
	if a.regFile.Get(rt).Unsigned() != 0 {
		a.regFile.SetUnsigned(rd, a.regFile.Get(rs).Unsigned())
	} else {
		a.regFile.SetUnsigned(rd, 0)
	}
}

// signExtImm sign-extends a 16-bit immediate field to 32 bits using the
// mask-multiply-by-sign-bit construction: build a mask of the extension
// bits, then multiply it by the immediate's own sign bit so it either
// vanishes or fills in, avoiding a branch.
func signExtImm(imm uint32) int32 {
	ext := uint32(0xFFFF0000)
	signBit := (imm >> 15) & 1
	return int32(ext*signBit | (imm & 0xFFFF))
}

// signExtLongImm sign-extends a 21-bit immediate field (as used by the
// long-immediate compact branches) to 32 bits.
func signExtLongImm(imm uint32) int32 {
	ext := uint32(0xFFE00000)
	signBit := (imm >> 20) & 1
	return int32(ext*signBit | (imm & 0x1FFFFF))
}

// signExtJtypeImm sign-extends the 19-bit immediate used by PC-relative
// type-1 instructions (addiupc/lwpc) to 32 bits.
func signExtJtypeImm(imm uint32) int32 {
	ext := uint32(0xFFF80000)
	signBit := (imm >> 18) & 1
	return int32(ext*signBit | (imm & 0x7FFFF))
}

// signExtAddress26 sign-extends the 26-bit J-type address field used by the
// compact PC-relative jumps bc/balc (as opposed to j/jal, which use that
// same field to build a jump-target address rather than a PC-relative
// offset) to 32 bits.
func signExtAddress26(addr uint32) int32 {
	ext := uint32(0xFC000000)
	signBit := (addr >> 25) & 1
	return int32(ext*signBit | (addr & 0x3FFFFFF))
}
