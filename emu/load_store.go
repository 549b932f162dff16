package emu

// LoadStoreUnit implements the MIPS32 R6 byte/halfword/word load and store
// operations against a Memory.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  Memory
}

// NewLoadStoreUnit creates a LoadStoreUnit connected to the given register
// file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory}
}

func (lsu *LoadStoreUnit) addr(rs uint8, imm uint32) uint32 {
	return lsu.regFile.Get(rs).Unsigned() + uint32(signExtImm(imm))
}

// Lb loads a byte from rs+imm, sign-extended, into rt.
func (lsu *LoadStoreUnit) Lb(rt, rs uint8, imm uint32) error {
	v, err := lsu.memory.Read8(lsu.addr(rs, imm))
	if err != nil {
		return err
	}
	lsu.regFile.SetSigned(rt, int32(int8(v)))
	return nil
}

// Lbu loads a byte from rs+imm, zero-extended, into rt.
func (lsu *LoadStoreUnit) Lbu(rt, rs uint8, imm uint32) error {
	v, err := lsu.memory.Read8(lsu.addr(rs, imm))
	if err != nil {
		return err
	}
	lsu.regFile.SetUnsigned(rt, uint32(v))
	return nil
}

// Lh loads a halfword from rs+imm, sign-extended, into rt.
func (lsu *LoadStoreUnit) Lh(rt, rs uint8, imm uint32) error {
	v, err := lsu.memory.Read16(lsu.addr(rs, imm))
	if err != nil {
		return err
	}
	lsu.regFile.SetSigned(rt, int32(int16(v)))
	return nil
}

// Lhu loads a halfword from rs+imm, zero-extended, into rt.
func (lsu *LoadStoreUnit) Lhu(rt, rs uint8, imm uint32) error {
	v, err := lsu.memory.Read16(lsu.addr(rs, imm))
	if err != nil {
		return err
	}
	lsu.regFile.SetUnsigned(rt, uint32(v))
	return nil
}

// Lw loads a word from rs+imm into rt.
func (lsu *LoadStoreUnit) Lw(rt, rs uint8, imm uint32) error {
	v, err := lsu.memory.Read32(lsu.addr(rs, imm))
	if err != nil {
		return err
	}
	lsu.regFile.SetUnsigned(rt, v)
	return nil
}

// Sb stores the low byte of rt to rs+imm.
func (lsu *LoadStoreUnit) Sb(rt, rs uint8, imm uint32) error {
	return lsu.memory.Write8(lsu.addr(rs, imm), uint8(lsu.regFile.Get(rt).Unsigned()))
}

// Sh stores the low halfword of rt to rs+imm.
func (lsu *LoadStoreUnit) Sh(rt, rs uint8, imm uint32) error {
	return lsu.memory.Write16(lsu.addr(rs, imm), uint16(lsu.regFile.Get(rt).Unsigned()))
}

// Sw stores rt to rs+imm.
func (lsu *LoadStoreUnit) Sw(rt, rs uint8, imm uint32) error {
	return lsu.memory.Write32(lsu.addr(rs, imm), lsu.regFile.Get(rt).Unsigned())
}
