package emu

// BranchUnit implements MIPS32 R6 jump and branch operations: the classic
// delay-slot branches (jr/jalr/beq/bne/bltz/bgez/j/jal) and the R6 compact
// branches and jumps, which resolve without a delay slot.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Jr stages an unconditional jump to rs, taking effect after the
// instruction in the delay slot.
func (b *BranchUnit) Jr(rs uint8) {
	b.regFile.DelayedBranch(b.regFile.Get(rs).Unsigned())
}

// Jalr stages an unconditional jump to rs and writes the link address to
// ra (register 31), architecturally fixed regardless of the encoded rd
// field. The link is the register file's current PC at dispatch time, which
// the step driver has already advanced past the jalr itself (see
// RegFile.UpdatePC), so this lands on the address of the delay-slot
// instruction rather than skipping past it.
func (b *BranchUnit) Jalr(rs uint8) {
	link := b.regFile.PC()
	target := b.regFile.Get(rs).Unsigned()
	b.regFile.SetUnsigned(31, link)
	b.regFile.DelayedBranch(target)
}

// Beq stages a branch to target if rs == rt, taking effect after the delay
// slot.
func (b *BranchUnit) Beq(rs, rt uint8, target uint32) {
	if b.regFile.Get(rs).Unsigned() == b.regFile.Get(rt).Unsigned() {
		b.regFile.DelayedBranch(target)
	}
}

// Bne stages a branch to target if rs != rt.
func (b *BranchUnit) Bne(rs, rt uint8, target uint32) {
	if b.regFile.Get(rs).Unsigned() != b.regFile.Get(rt).Unsigned() {
		b.regFile.DelayedBranch(target)
	}
}

// Blez stages a branch to target if rs <= 0, taking effect after the delay
// slot. Unlike its compact BLEZC counterpart, the classic BLEZ encoding
// (POP06 with rt == 0) keeps the original ISA's delay-slot behavior.
func (b *BranchUnit) Blez(rs uint8, target uint32) {
	if b.regFile.Get(rs).Signed() <= 0 {
		b.regFile.DelayedBranch(target)
	}
}

// Bgtz stages a branch to target if rs > 0, taking effect after the delay
// slot.
func (b *BranchUnit) Bgtz(rs uint8, target uint32) {
	if b.regFile.Get(rs).Signed() > 0 {
		b.regFile.DelayedBranch(target)
	}
}

// Bltz stages a branch to target if rs < 0.
func (b *BranchUnit) Bltz(rs uint8, target uint32) {
	if b.regFile.Get(rs).Signed() < 0 {
		b.regFile.DelayedBranch(target)
	}
}

// Bgez stages a branch to target if rs >= 0.
func (b *BranchUnit) Bgez(rs uint8, target uint32) {
	if b.regFile.Get(rs).Signed() >= 0 {
		b.regFile.DelayedBranch(target)
	}
}

// J stages an unconditional jump to target.
func (b *BranchUnit) J(target uint32) {
	b.regFile.DelayedBranch(target)
}

// Jal stages an unconditional jump to target and writes the link address
// to register 31 (ra): the current PC at dispatch time.
func (b *BranchUnit) Jal(target uint32) {
	b.regFile.SetUnsigned(31, b.regFile.PC())
	b.regFile.DelayedBranch(target)
}

// Bc takes an unconditional compact branch to target immediately; there is
// no delay slot.
func (b *BranchUnit) Bc(target uint32) {
	b.regFile.BranchNow(target)
}

// Balc takes an unconditional compact branch to target immediately and
// writes the link address (the current PC) to register 31.
func (b *BranchUnit) Balc(target uint32) {
	b.regFile.SetUnsigned(31, b.regFile.PC())
	b.regFile.BranchNow(target)
}

// BranchCompact takes a conditional compact branch to target immediately
// if cond is true; it never has a delay slot regardless of the outcome.
func (b *BranchUnit) BranchCompact(cond bool, target uint32) {
	if cond {
		b.regFile.BranchNow(target)
	}
}

// BranchAndLinkCompact takes a conditional compact branch-and-link
// (the *ALC family) to target if cond is true, writing the link address
// (register 31) only when the branch is actually taken.
func (b *BranchUnit) BranchAndLinkCompact(cond bool, target uint32) {
	if cond {
		b.regFile.SetUnsigned(31, b.regFile.PC())
		b.regFile.BranchNow(target)
	}
}

// Jic performs an indirect compact jump to rt + sign_ext_imm(imm),
// immediately, with no delay slot.
func (b *BranchUnit) Jic(rt uint8, imm uint32) {
	target := b.regFile.Get(rt).Unsigned() + uint32(signExtImm(imm))
	b.regFile.BranchNow(target)
}

// Jialc performs an indirect compact jump-and-link to rt +
// sign_ext_imm(imm), writing the link address to register 31 before
// jumping. The jump is unconditional, so the link is always written.
func (b *BranchUnit) Jialc(rt uint8, imm uint32) {
	b.regFile.SetUnsigned(31, b.regFile.PC())
	target := b.regFile.Get(rt).Unsigned() + uint32(signExtImm(imm))
	b.regFile.BranchNow(target)
}
