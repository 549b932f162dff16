package emu

// BitfieldUnit implements the SPECIAL3-encoded bit-manipulation
// instructions: the BSHFL family (bitswap/wsbh/align/seb/seh) and the
// EXT/INS bitfield-extract/-insert pair.
type BitfieldUnit struct {
	regFile *RegFile
}

// NewBitfieldUnit creates a BitfieldUnit connected to the given register
// file.
func NewBitfieldUnit(regFile *RegFile) *BitfieldUnit {
	return &BitfieldUnit{regFile: regFile}
}

// Bitswap reverses the bits within each byte of rt independently.
func (u *BitfieldUnit) Bitswap(rd, rt uint8) {
	v := u.regFile.Get(rt).Unsigned()
	v = ((v & 0x55555555) << 1) | ((v & 0xAAAAAAAA) >> 1)
	v = ((v & 0x33333333) << 2) | ((v & 0xCCCCCCCC) >> 2)
	v = ((v & 0x0F0F0F0F) << 4) | ((v & 0xF0F0F0F0) >> 4)
	u.regFile.SetUnsigned(rd, v)
}

// Wsbh swaps the bytes within each halfword of rt.
func (u *BitfieldUnit) Wsbh(rd, rt uint8) {
	v := u.regFile.Get(rt).Unsigned()
	result := ((v & 0x00FF00FF) << 8) | ((v & 0xFF00FF00) >> 8)
	u.regFile.SetUnsigned(rd, result)
}

// Align concatenates bytes from rt and rs, selecting a window starting bp
// bytes into the pair: rd = (rt << 8*bp) | (rs >> 8*(4-bp)). bp == 0 is the
// identity case (rd = rt) and is special-cased to avoid a shift by 32.
func (u *BitfieldUnit) Align(rd, rs, rt, bp uint8) {
	if bp == 0 {
		u.regFile.SetUnsigned(rd, u.regFile.Get(rt).Unsigned())
		return
	}
	rtv := u.regFile.Get(rt).Unsigned()
	rsv := u.regFile.Get(rs).Unsigned()
	result := (rtv << (8 * uint32(bp))) | (rsv >> (8 * uint32(4-bp)))
	u.regFile.SetUnsigned(rd, result)
}

// Seb sign-extends the low byte of rt into rd.
func (u *BitfieldUnit) Seb(rd, rt uint8) {
	u.regFile.SetSigned(rd, int32(int8(u.regFile.Get(rt).Unsigned())))
}

// Seh sign-extends the low halfword of rt into rd.
func (u *BitfieldUnit) Seh(rd, rt uint8) {
	u.regFile.SetSigned(rd, int32(int16(u.regFile.Get(rt).Unsigned())))
}

// BitfieldFault reports whether an EXT/INS encoding with the given lsb and
// size (msbd+1 for EXT, msb-lsb+1 for INS) is a reserved-instruction
// encoding.
func BitfieldFault(lsb, size uint8) bool {
	return lsb >= 32 || size == 0 || size > 32 || int(lsb)+int(size) > 32
}

// Ext extracts size bits starting at lsb from rs into the low bits of rt,
// zero-filling above.
func (u *BitfieldUnit) Ext(rt, rs, lsb, size uint8) {
	mask := uint32(1)<<size - 1
	v := (u.regFile.Get(rs).Unsigned() >> lsb) & mask
	u.regFile.SetUnsigned(rt, v)
}

// Ins inserts the low size bits of rs into rt at bit position lsb, leaving
// the rest of rt unchanged.
func (u *BitfieldUnit) Ins(rt, rs, lsb, size uint8) {
	mask := uint32(1)<<size - 1
	cleared := u.regFile.Get(rt).Unsigned() &^ (mask << lsb)
	inserted := (u.regFile.Get(rs).Unsigned() & mask) << lsb
	u.regFile.SetUnsigned(rt, cleared|inserted)
}
