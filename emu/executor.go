package emu

import "github.com/sarchlab/r6sim/insts"

// Executor decodes and dispatches MIPS32 R6 instructions against a register
// file and memory, driving the ALU, BranchUnit, LoadStoreUnit, and
// BitfieldUnit collaborators per instruction family.
type Executor struct {
	decoder *insts.Decoder

	alu      *ALU
	branch   *BranchUnit
	bitfield *BitfieldUnit

	syscallFn func(rf *RegFile, mem Memory) (exited bool, code int32)

	lastExited   bool
	lastExitCode int32
}

// NewExecutor creates an Executor. The ALU, BranchUnit, and BitfieldUnit
// collaborators are bound to rf; LoadStoreUnit is constructed fresh per
// Step since memory is supplied per call.
func NewExecutor(rf *RegFile) *Executor {
	return &Executor{
		decoder:  insts.NewDecoder(),
		alu:      NewALU(rf),
		branch:   NewBranchUnit(rf),
		bitfield: NewBitfieldUnit(rf),
	}
}

// LastSyscallExit reports whether the most recent Step executed a syscall
// that requested program termination, and its exit code if so.
func (e *Executor) LastSyscallExit() (exited bool, code int32) {
	return e.lastExited, e.lastExitCode
}

// SetSyscallFunc installs the callback invoked for the syscall instruction.
// It returns whether the program requested termination and, if so, its exit
// code.
func (e *Executor) SetSyscallFunc(fn func(rf *RegFile, mem Memory) (exited bool, code int32)) {
	e.syscallFn = fn
}

// Step fetches the instruction at rf.PC(), advances the program counter
// (resolving any pending delayed branch), and executes it against mem.
// It returns false and leaves a fault recorded on rf if the fetch failed,
// the encoding was not recognized, or the instruction signaled an
// exception (trap, divide-by-zero, memory error).
func (e *Executor) Step(rf *RegFile, mem Memory) bool {
	e.lastExited = false
	e.lastExitCode = 0

	word, err := mem.Read32(rf.PC())
	if err != nil {
		rf.SignalException(ExceptionMemory, 0)
		return false
	}

	rf.UpdatePC()

	inst := e.decoder.Decode(word)
	lsu := NewLoadStoreUnit(rf, mem)

	switch inst.Type {
	case insts.TypeR:
		return e.execR(rf, mem, inst)
	case insts.TypeI:
		return e.execI(rf, lsu, inst)
	case insts.TypeLongImmI:
		return e.execLongImmI(rf, inst)
	case insts.TypeJ:
		return e.execJ(rf, inst)
	case insts.TypeRegimmI:
		return e.execRegimm(rf, inst)
	case insts.TypeBSHFL:
		return e.execBSHFL(rf, inst)
	case insts.TypeEXT:
		return e.execExt(rf, inst)
	case insts.TypeINS:
		return e.execIns(rf, inst)
	case insts.TypePCRelType1:
		return e.execPCRelType1(rf, mem, inst)
	case insts.TypePCRelType2:
		return e.execPCRelType2(rf, inst)
	case insts.TypeFPUR, insts.TypeFPUT, insts.TypeFPUB:
		rf.SignalException(ExceptionReservedInstruction, word)
		return false
	default:
		rf.SignalException(ExceptionReservedInstruction, word)
		return false
	}
}

func (e *Executor) execR(rf *RegFile, mem Memory, inst *insts.Instruction) bool {
	switch inst.Op {
	case insts.OpAdd:
		e.alu.Add(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpAddu:
		e.alu.Addu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSub:
		e.alu.Sub(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSubu:
		e.alu.Subu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpAnd:
		e.alu.And(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpOr:
		e.alu.Or(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpXor:
		e.alu.Xor(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpNor:
		e.alu.Nor(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSlt:
		e.alu.Slt(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSltu:
		e.alu.Sltu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSll:
		e.alu.Sll(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpSrl:
		e.alu.Srl(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpRotr:
		e.alu.Rotr(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpSra:
		e.alu.Sra(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpSllv:
		e.alu.Sllv(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSrlv:
		e.alu.Srlv(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpRotrv:
		e.alu.Rotrv(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSrav:
		e.alu.Srav(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpMul:
		e.alu.Mul(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpMuh:
		e.alu.Muh(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpMulu:
		e.alu.Mulu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpMuhu:
		e.alu.Muhu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpDiv:
		if rf.Get(inst.Rt).Unsigned() == 0 {
			rf.SignalException(ExceptionDivByZero, inst.Raw())
			return false
		}
		e.alu.Div(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpMod:
		if rf.Get(inst.Rt).Unsigned() == 0 {
			rf.SignalException(ExceptionDivByZero, inst.Raw())
			return false
		}
		e.alu.Mod(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpDivu:
		if rf.Get(inst.Rt).Unsigned() == 0 {
			rf.SignalException(ExceptionDivByZero, inst.Raw())
			return false
		}
		e.alu.Divu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpModu:
		if rf.Get(inst.Rt).Unsigned() == 0 {
			rf.SignalException(ExceptionDivByZero, inst.Raw())
			return false
		}
		e.alu.Modu(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpClz:
		e.alu.Clz(inst.Rd, inst.Rs)
	case insts.OpClo:
		e.alu.Clo(inst.Rd, inst.Rs)
	case insts.OpSeleqz:
		e.alu.Seleqz(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSelnez:
		e.alu.Selnez(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpJr:
		e.branch.Jr(inst.Rs)
	case insts.OpJalr:
		e.branch.Jalr(inst.Rs)
	case insts.OpTeq:
		if rf.Get(inst.Rs).Unsigned() == rf.Get(inst.Rt).Unsigned() {
			rf.SignalException(ExceptionTrap, inst.Raw())
			return false
		}
	case insts.OpTne:
		if rf.Get(inst.Rs).Unsigned() != rf.Get(inst.Rt).Unsigned() {
			rf.SignalException(ExceptionTrap, inst.Raw())
			return false
		}
	case insts.OpTge:
		if rf.Get(inst.Rs).Signed() >= rf.Get(inst.Rt).Signed() {
			rf.SignalException(ExceptionTrap, inst.Raw())
			return false
		}
	case insts.OpTgeu:
		if rf.Get(inst.Rs).Unsigned() >= rf.Get(inst.Rt).Unsigned() {
			rf.SignalException(ExceptionTrap, inst.Raw())
			return false
		}
	case insts.OpTlt:
		if rf.Get(inst.Rs).Signed() < rf.Get(inst.Rt).Signed() {
			rf.SignalException(ExceptionTrap, inst.Raw())
			return false
		}
	case insts.OpTltu:
		if rf.Get(inst.Rs).Unsigned() < rf.Get(inst.Rt).Unsigned() {
			rf.SignalException(ExceptionTrap, inst.Raw())
			return false
		}
	case insts.OpSyscall:
		if e.syscallFn == nil {
			rf.SignalException(ExceptionReservedInstruction, inst.Raw())
			return false
		}
		e.lastExited, e.lastExitCode = e.syscallFn(rf, mem)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) execI(rf *RegFile, lsu *LoadStoreUnit, inst *insts.Instruction) bool {
	target := func() uint32 { return rf.PC() + uint32(signExtImm(inst.Imm)<<2) }

	switch inst.Op {
	case insts.OpBeq:
		e.branch.Beq(inst.Rs, inst.Rt, target())
	case insts.OpBne:
		e.branch.Bne(inst.Rs, inst.Rt, target())
	case insts.OpAddiu:
		e.alu.Addiu(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpAui:
		e.alu.Aui(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpSlti:
		e.alu.Slti(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpSltiu:
		e.alu.Sltiu(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpAndi:
		e.alu.Andi(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpOri:
		e.alu.Ori(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpXori:
		e.alu.Xori(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpLb:
		return e.memOp(rf, inst, lsu.Lb(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpLbu:
		return e.memOp(rf, inst, lsu.Lbu(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpLh:
		return e.memOp(rf, inst, lsu.Lh(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpLhu:
		return e.memOp(rf, inst, lsu.Lhu(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpLw:
		return e.memOp(rf, inst, lsu.Lw(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpSb:
		return e.memOp(rf, inst, lsu.Sb(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpSh:
		return e.memOp(rf, inst, lsu.Sh(inst.Rt, inst.Rs, inst.Imm))
	case insts.OpSw:
		return e.memOp(rf, inst, lsu.Sw(inst.Rt, inst.Rs, inst.Imm))

	// POP06
	case insts.OpBlez:
		e.branch.Blez(inst.Rs, target())
	case insts.OpBlezalc:
		e.branch.BranchAndLinkCompact(rf.Get(inst.Rt).Signed() <= 0, target())
	case insts.OpBgezalc:
		e.branch.BranchAndLinkCompact(rf.Get(inst.Rt).Signed() >= 0, target())
	case insts.OpBgeuc:
		e.branch.BranchCompact(rf.Get(inst.Rs).Unsigned() >= rf.Get(inst.Rt).Unsigned(), target())

	// POP07
	case insts.OpBgtz:
		e.branch.Bgtz(inst.Rs, target())
	case insts.OpBgtzalc:
		e.branch.BranchAndLinkCompact(rf.Get(inst.Rt).Signed() > 0, target())
	case insts.OpBltzalc:
		e.branch.BranchAndLinkCompact(rf.Get(inst.Rt).Signed() < 0, target())
	case insts.OpBltuc:
		e.branch.BranchCompact(rf.Get(inst.Rs).Unsigned() < rf.Get(inst.Rt).Unsigned(), target())

	// POP10
	case insts.OpBeqzalc:
		e.branch.BranchAndLinkCompact(rf.Get(inst.Rt).Unsigned() == 0, target())
	case insts.OpBeqc:
		e.branch.BranchCompact(rf.Get(inst.Rs).Unsigned() == rf.Get(inst.Rt).Unsigned(), target())
	case insts.OpBovc:
		rs, rt := rf.Get(inst.Rs).Signed(), rf.Get(inst.Rt).Signed()
		sum := int64(rs) + int64(rt)
		overflow := sum != int64(int32(sum))
		e.branch.BranchCompact(overflow, target())

	// POP30
	case insts.OpBnezalc:
		e.branch.BranchAndLinkCompact(rf.Get(inst.Rt).Unsigned() != 0, target())
	case insts.OpBnec:
		e.branch.BranchCompact(rf.Get(inst.Rs).Unsigned() != rf.Get(inst.Rt).Unsigned(), target())
	case insts.OpBnvc:
		rs, rt := rf.Get(inst.Rs).Signed(), rf.Get(inst.Rt).Signed()
		sum := int64(rs) + int64(rt)
		overflow := sum != int64(int32(sum))
		e.branch.BranchCompact(!overflow, target())

	// POP26
	case insts.OpBlezc:
		e.branch.BranchCompact(rf.Get(inst.Rt).Signed() <= 0, target())
	case insts.OpBgezc:
		e.branch.BranchCompact(rf.Get(inst.Rt).Signed() >= 0, target())
	case insts.OpBgec:
		e.branch.BranchCompact(rf.Get(inst.Rs).Signed() >= rf.Get(inst.Rt).Signed(), target())

	// POP27
	case insts.OpBgtzc:
		e.branch.BranchCompact(rf.Get(inst.Rt).Signed() > 0, target())
	case insts.OpBltzc:
		e.branch.BranchCompact(rf.Get(inst.Rt).Signed() < 0, target())
	case insts.OpBltc:
		e.branch.BranchCompact(rf.Get(inst.Rs).Signed() < rf.Get(inst.Rt).Signed(), target())

	// POP66/POP76 (short-immediate branch form only; rs==0 means jic/jialc,
	// handled by the decoder routing those to this I-type case).
	case insts.OpJic:
		e.branch.Jic(inst.Rt, inst.Imm)
	case insts.OpJialc:
		e.branch.Jialc(inst.Rt, inst.Imm)

	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

// execLongImmI handles the POP66/POP76 long-immediate compact branches,
// beqzc/bnezc, which use a 21-bit offset and the rs field as the tested
// register (decoder-resolved only when rs != 0).
func (e *Executor) execLongImmI(rf *RegFile, inst *insts.Instruction) bool {
	target := rf.PC() + uint32(signExtLongImm(inst.Imm)<<2)

	switch inst.Op {
	case insts.OpBeqzc:
		e.branch.BranchCompact(rf.Get(inst.Rs).Unsigned() == 0, target)
	case insts.OpBnezc:
		e.branch.BranchCompact(rf.Get(inst.Rs).Unsigned() != 0, target)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) execJ(rf *RegFile, inst *insts.Instruction) bool {
	switch inst.Op {
	case insts.OpJ:
		jta := (inst.Address << 2) | (rf.PC() & 0xF0000000)
		e.branch.J(jta)
	case insts.OpJal:
		jta := (inst.Address << 2) | (rf.PC() & 0xF0000000)
		e.branch.Jal(jta)
	case insts.OpBc:
		target := rf.PC() + uint32(signExtAddress26(inst.Address)*4)
		e.branch.Bc(target)
	case insts.OpBalc:
		target := rf.PC() + uint32(signExtAddress26(inst.Address)*4)
		e.branch.Balc(target)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) execRegimm(rf *RegFile, inst *insts.Instruction) bool {
	target := rf.PC() + uint32(signExtImm(inst.Imm)<<2)

	switch inst.Op {
	case insts.OpBltz:
		e.branch.Bltz(inst.Rs, target)
	case insts.OpBgez:
		e.branch.Bgez(inst.Rs, target)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) execBSHFL(rf *RegFile, inst *insts.Instruction) bool {
	switch inst.Op {
	case insts.OpBitswap:
		e.bitfield.Bitswap(inst.Rd, inst.Rt)
	case insts.OpWsbh:
		e.bitfield.Wsbh(inst.Rd, inst.Rt)
	case insts.OpAlign:
		e.bitfield.Align(inst.Rd, inst.Rs, inst.Rt, inst.Bp)
	case insts.OpSeb:
		e.bitfield.Seb(inst.Rd, inst.Rt)
	case insts.OpSeh:
		e.bitfield.Seh(inst.Rd, inst.Rt)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) execExt(rf *RegFile, inst *insts.Instruction) bool {
	size := inst.Msbd + 1
	if BitfieldFault(inst.Lsb, size) {
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	e.bitfield.Ext(inst.Rt, inst.Rs, inst.Lsb, size)
	return true
}

func (e *Executor) execIns(rf *RegFile, inst *insts.Instruction) bool {
	if inst.Msbd < inst.Lsb {
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	size := inst.Msbd - inst.Lsb + 1
	if BitfieldFault(inst.Lsb, size) {
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	e.bitfield.Ins(inst.Rt, inst.Rs, inst.Lsb, size)
	return true
}

func (e *Executor) execPCRelType1(rf *RegFile, mem Memory, inst *insts.Instruction) bool {
	offset := signExtJtypeImm(inst.Imm) * 4
	addr := uint32(offset) + rf.PC()

	switch inst.Op {
	case insts.OpAddiupc:
		rf.SetUnsigned(inst.Rs, addr)
	case insts.OpLwpc:
		v, err := mem.Read32(addr)
		if err != nil {
			rf.SignalException(ExceptionMemory, inst.Raw())
			return false
		}
		rf.SetUnsigned(inst.Rs, v)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) execPCRelType2(rf *RegFile, inst *insts.Instruction) bool {
	switch inst.Op {
	case insts.OpAuipc:
		rf.SetUnsigned(inst.Rs, rf.PC()+inst.Imm<<16)
	case insts.OpAluipc:
		result := (rf.PC() + inst.Imm<<16) &^ 0xFFFF
		rf.SetUnsigned(inst.Rs, result)
	default:
		rf.SignalException(ExceptionReservedInstruction, inst.Raw())
		return false
	}
	return true
}

func (e *Executor) memOp(rf *RegFile, inst *insts.Instruction, err error) bool {
	if err != nil {
		rf.SignalException(ExceptionMemory, inst.Raw())
		return false
	}
	return true
}
