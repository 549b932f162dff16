package insts

// Primary opcode values (bits 31:26).
const (
	opSpecial  = 0x00
	opRegimm   = 0x01
	opJ        = 0x02
	opJal      = 0x03
	opBeq      = 0x04
	opBne      = 0x05
	opPop06    = 0x06
	opPop07    = 0x07
	opPop10    = 0x08 // legacy "addi" opcode, repurposed by R6 for POP10
	opAddiu    = 0x09
	opSlti     = 0x0A
	opSltiu    = 0x0B
	opAndi     = 0x0C
	opOri      = 0x0D
	opXori     = 0x0E
	opAui      = 0x0F
	opCop1     = 0x11
	opPop26    = 0x16
	opPop27    = 0x17
	opPop30    = 0x18
	opSpecial3 = 0x1F
	opLb       = 0x20
	opLh       = 0x21
	opLw       = 0x23
	opLbu      = 0x24
	opLhu      = 0x25
	opSb       = 0x28
	opSh       = 0x29
	opSw       = 0x2B
	opBc       = 0x32
	opPop66    = 0x36
	opBalc     = 0x3A
	opPcrel    = 0x3B
	opPop76    = 0x3E
)

// SPECIAL (opcode 0) function-field values.
const (
	funcSll     = 0x00
	funcSrl     = 0x02
	funcSra     = 0x03
	funcSllv    = 0x04
	funcSrlv    = 0x06
	funcSrav    = 0x07
	funcJr      = 0x08
	funcJalr    = 0x09
	funcSyscall = 0x0C
	funcClz     = 0x10
	funcClo     = 0x11
	funcSop30   = 0x18
	funcSop31   = 0x19
	funcSop32   = 0x1A
	funcSop33   = 0x1B
	funcAdd     = 0x20
	funcAddu    = 0x21
	funcSub     = 0x22
	funcSubu    = 0x23
	funcAnd     = 0x24
	funcOr      = 0x25
	funcXor     = 0x26
	funcNor     = 0x27
	funcSlt     = 0x2A
	funcSltu    = 0x2B
	funcTge     = 0x30
	funcTgeu    = 0x31
	funcTlt     = 0x32
	funcTltu    = 0x33
	funcTeq     = 0x34
	funcSeleqz  = 0x35
	funcTne     = 0x36
	funcSelnez  = 0x37
)

// SPECIAL3 (opcode 0x1F) low function-field values.
const (
	func3Ext   = 0x00
	func3Ins   = 0x04
	func3Bshfl = 0x20
)

// SPECIAL3/BSHFL sub-function values (bits 10:6).
const (
	bshflBitswap = 0x00
	bshflWsbh    = 0x02
	bshflAlign   = 0x08 // +bp, bp in 0..3
	bshflSeb     = 0x10
	bshflSeh     = 0x18
)

// REGIMM sub-opcode values (bits 20:16).
const (
	regimmBltz = 0x00
	regimmBgez = 0x01
)

// Decoder decodes MIPS32 R6 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS32 R6 instruction decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode classifies and decodes a 32-bit MIPS32 R6 instruction word. Any
// opcode/func combination not recognized yields Type == TypeDecodeError.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{raw: word, Op: OpInvalid, Type: TypeDecodeError}

	op := (word >> 26) & 0x3F

	switch op {
	case opSpecial:
		d.decodeR(word, inst)
	case opRegimm:
		d.decodeRegimm(word, inst)
	case opJ:
		d.decodeJ(word, inst, OpJ)
	case opJal:
		d.decodeJ(word, inst, OpJal)
	case opBc:
		d.decodeJ(word, inst, OpBc)
	case opBalc:
		d.decodeJ(word, inst, OpBalc)
	case opCop1:
		d.decodeFPU(word, inst)
	case opSpecial3:
		d.decodeSpecial3(word, inst)
	case opPcrel:
		d.decodePCRel(word, inst)
	case opPop06:
		d.decodePop06(word, inst)
	case opPop07:
		d.decodePop07(word, inst)
	case opPop10:
		d.decodePop10(word, inst)
	case opPop30:
		d.decodePop30(word, inst)
	case opPop26:
		d.decodePop26(word, inst)
	case opPop27:
		d.decodePop27(word, inst)
	case opPop66:
		d.decodePop66(word, inst)
	case opPop76:
		d.decodePop76(word, inst)
	case opBeq, opBne, opAddiu, opSlti, opSltiu, opAndi, opOri, opXori, opAui,
		opLb, opLh, opLw, opLbu, opLhu, opSb, opSh, opSw:
		d.decodePlainI(word, op, inst)
	}

	return inst
}

func fields(word uint32) (rs, rt, rd, shamt, fn uint8, imm uint32) {
	rs = uint8((word >> 21) & 0x1F)
	rt = uint8((word >> 16) & 0x1F)
	rd = uint8((word >> 11) & 0x1F)
	shamt = uint8((word >> 6) & 0x1F)
	fn = uint8(word & 0x3F)
	imm = word & 0xFFFF
	return
}

func (d *Decoder) decodeR(word uint32, inst *Instruction) {
	rs, rt, rd, shamt, fn, _ := fields(word)
	inst.Rs, inst.Rt, inst.Rd, inst.Shamt, inst.Func = rs, rt, rd, shamt, fn

	switch fn {
	case funcAdd:
		inst.Op = OpAdd
	case funcAddu:
		inst.Op = OpAddu
	case funcSub:
		inst.Op = OpSub
	case funcSubu:
		inst.Op = OpSubu
	case funcAnd:
		inst.Op = OpAnd
	case funcOr:
		inst.Op = OpOr
	case funcXor:
		inst.Op = OpXor
	case funcNor:
		inst.Op = OpNor
	case funcSlt:
		inst.Op = OpSlt
	case funcSltu:
		inst.Op = OpSltu
	case funcSll:
		inst.Op = OpSll
	case funcSrl:
		if rs&1 == 1 {
			inst.Op = OpRotr
		} else {
			inst.Op = OpSrl
		}
	case funcSra:
		inst.Op = OpSra
	case funcSllv:
		inst.Op = OpSllv
	case funcSrlv:
		if shamt&1 == 1 {
			inst.Op = OpRotrv
		} else {
			inst.Op = OpSrlv
		}
	case funcSrav:
		inst.Op = OpSrav
	case funcJr:
		inst.Op = OpJr
	case funcJalr:
		inst.Op = OpJalr
	case funcSyscall:
		inst.Op = OpSyscall
	case funcClz:
		inst.Op = OpClz
	case funcClo:
		inst.Op = OpClo
	case funcSop30:
		if shamt == 3 {
			inst.Op = OpMuh
		} else {
			inst.Op = OpMul
		}
	case funcSop31:
		if shamt == 3 {
			inst.Op = OpMuhu
		} else {
			inst.Op = OpMulu
		}
	case funcSop32:
		if shamt == 3 {
			inst.Op = OpMod
		} else {
			inst.Op = OpDiv
		}
	case funcSop33:
		if shamt == 3 {
			inst.Op = OpModu
		} else {
			inst.Op = OpDivu
		}
	case funcSeleqz:
		inst.Op = OpSeleqz
	case funcSelnez:
		inst.Op = OpSelnez
	case funcTeq:
		inst.Op = OpTeq
	case funcTne:
		inst.Op = OpTne
	case funcTge:
		inst.Op = OpTge
	case funcTgeu:
		inst.Op = OpTgeu
	case funcTlt:
		inst.Op = OpTlt
	case funcTltu:
		inst.Op = OpTltu
	default:
		return
	}
	inst.Type = TypeR
}

func (d *Decoder) decodeRegimm(word uint32, inst *Instruction) {
	rs, sub, _, _, _, imm := fields(word)
	inst.Rs, inst.Imm = rs, imm

	switch sub {
	case regimmBltz:
		inst.Op = OpBltz
	case regimmBgez:
		inst.Op = OpBgez
	default:
		return
	}
	inst.Type = TypeRegimmI
}

func (d *Decoder) decodeJ(word uint32, inst *Instruction, op Op) {
	inst.Address = word & 0x3FFFFFF
	inst.Op = op
	inst.Type = TypeJ
}

func (d *Decoder) decodePlainI(word uint32, op uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm

	switch op {
	case opBeq:
		inst.Op = OpBeq
	case opBne:
		inst.Op = OpBne
	case opAddiu:
		inst.Op = OpAddiu
	case opAui:
		inst.Op = OpAui
	case opSlti:
		inst.Op = OpSlti
	case opSltiu:
		inst.Op = OpSltiu
	case opAndi:
		inst.Op = OpAndi
	case opOri:
		inst.Op = OpOri
	case opXori:
		inst.Op = OpXori
	case opLb:
		inst.Op = OpLb
	case opLh:
		inst.Op = OpLh
	case opLw:
		inst.Op = OpLw
	case opLbu:
		inst.Op = OpLbu
	case opLhu:
		inst.Op = OpLhu
	case opSb:
		inst.Op = OpSb
	case opSh:
		inst.Op = OpSh
	case opSw:
		inst.Op = OpSw
	default:
		return
	}
	inst.Type = TypeI
}

// decodePop06 resolves BLEZ/BLEZALC/BGEZALC/BGEUC per SPEC_FULL.md §9.1: the
// disambiguating comparisons are performed on the raw encoded register-field
// numbers, matching the golden reference implementation exactly.
func (d *Decoder) decodePop06(word uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm
	inst.Type = TypeI

	switch {
	case rt == 0:
		inst.Op = OpBlez
	case rs == 0 && rt != 0:
		inst.Op = OpBlezalc
	case rs == rt && rt != 0:
		inst.Op = OpBgezalc
	case rs != rt && rs != 0 && rt != 0:
		inst.Op = OpBgeuc
	default:
		inst.Type = TypeDecodeError
	}
}

func (d *Decoder) decodePop07(word uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm
	inst.Type = TypeI

	switch {
	case rt == 0:
		inst.Op = OpBgtz
	case rs == 0 && rt != 0:
		inst.Op = OpBgtzalc
	case rs == rt && rt != 0:
		inst.Op = OpBltzalc
	case rs != rt && rs != 0 && rt != 0:
		inst.Op = OpBltuc
	default:
		inst.Type = TypeDecodeError
	}
}

func (d *Decoder) decodePop10(word uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm
	inst.Type = TypeI

	switch {
	case rs == 0 && rt != 0 && rs < rt:
		inst.Op = OpBeqzalc
	case rs != 0 && rt != 0 && rs < rt:
		inst.Op = OpBeqc
	case rs >= rt:
		inst.Op = OpBovc
	default:
		inst.Type = TypeDecodeError
	}
}

func (d *Decoder) decodePop30(word uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm
	inst.Type = TypeI

	switch {
	case rs == 0 && rt != 0 && rs < rt:
		inst.Op = OpBnezalc
	case rs != 0 && rt != 0 && rs < rt:
		inst.Op = OpBnec
	case rs >= rt:
		inst.Op = OpBnvc
	default:
		inst.Type = TypeDecodeError
	}
}

func (d *Decoder) decodePop26(word uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm
	inst.Type = TypeI

	switch {
	case rs == 0 && rt != 0:
		inst.Op = OpBlezc
	case rs != 0 && rt != 0 && rt == rs:
		inst.Op = OpBgezc
	case rs != 0 && rt != 0 && rt != rs:
		inst.Op = OpBgec
	default:
		inst.Type = TypeDecodeError
	}
}

func (d *Decoder) decodePop27(word uint32, inst *Instruction) {
	rs, rt, _, _, _, imm := fields(word)
	inst.Rs, inst.Rt, inst.Imm = rs, rt, imm
	inst.Type = TypeI

	switch {
	case rs == 0 && rt != 0:
		inst.Op = OpBgtzc
	case rs != 0 && rt != 0 && rt == rs:
		inst.Op = OpBltzc
	case rs != 0 && rt != 0 && rt != rs:
		inst.Op = OpBltc
	default:
		inst.Type = TypeDecodeError
	}
}

// decodePop66 resolves JIC/BEQZC. BEQZC uses the long-immediate I view: the
// tested register is encoded in the rs field position, and imm occupies the
// remaining 21 bits.
func (d *Decoder) decodePop66(word uint32, inst *Instruction) {
	rs := uint8((word >> 21) & 0x1F)
	inst.Rs = rs

	if rs == 0 {
		rt := uint8((word >> 16) & 0x1F)
		inst.Rt = rt
		inst.Imm = word & 0xFFFF
		inst.Op = OpJic
		inst.Type = TypeI
		return
	}

	inst.Imm = word & 0x1FFFFF
	inst.Op = OpBeqzc
	inst.Type = TypeLongImmI
}

func (d *Decoder) decodePop76(word uint32, inst *Instruction) {
	rs := uint8((word >> 21) & 0x1F)
	inst.Rs = rs

	if rs == 0 {
		rt := uint8((word >> 16) & 0x1F)
		inst.Rt = rt
		inst.Imm = word & 0xFFFF
		inst.Op = OpJialc
		inst.Type = TypeI
		return
	}

	inst.Imm = word & 0x1FFFFF
	inst.Op = OpBnezc
	inst.Type = TypeLongImmI
}

func (d *Decoder) decodeSpecial3(word uint32, inst *Instruction) {
	rs, rt, rd, lsb, fn, _ := fields(word)

	switch fn {
	case func3Bshfl:
		sub := uint8((word >> 6) & 0x1F)
		inst.Rt, inst.Rd = rt, rd
		inst.Type = TypeBSHFL

		switch {
		case sub == bshflBitswap:
			inst.Op = OpBitswap
		case sub == bshflWsbh:
			inst.Op = OpWsbh
		case sub == bshflSeb:
			inst.Op = OpSeb
		case sub == bshflSeh:
			inst.Op = OpSeh
		case sub>>2 == bshflAlign>>2:
			inst.Op = OpAlign
			inst.Rs = rs
			inst.Bp = sub & 0x3
		default:
			inst.Type = TypeDecodeError
		}
	case func3Ext:
		inst.Rs, inst.Rt, inst.Lsb, inst.Msbd = rs, rt, lsb, rd
		inst.Op = OpExt
		inst.Type = TypeEXT
	case func3Ins:
		inst.Rs, inst.Rt, inst.Lsb, inst.Msbd = rs, rt, lsb, rd
		inst.Op = OpIns
		inst.Type = TypeINS
	}
}

func (d *Decoder) decodePCRel(word uint32, inst *Instruction) {
	rs := uint8((word >> 21) & 0x1F)
	sel := (word >> 19) & 0x3

	inst.Rs = rs

	if sel == 0x3 {
		sub := (word >> 16) & 0x7
		inst.Imm = word & 0xFFFF
		inst.Type = TypePCRelType2

		switch sub {
		case 0:
			inst.Op = OpAuipc
		case 1:
			inst.Op = OpAluipc
		default:
			inst.Type = TypeDecodeError
		}
		return
	}

	inst.Imm = word & 0x7FFFF
	inst.Type = TypePCRelType1

	switch sel {
	case 0:
		inst.Op = OpAddiupc
	case 1:
		inst.Op = OpLwpc
	default:
		inst.Type = TypeDecodeError
	}
}

// decodeFPU recognizes the FPU encoding families (R/T/B) without executing
// them; execution is deferred per the instruction-execution core's contract.
func (d *Decoder) decodeFPU(word uint32, inst *Instruction) {
	fmtField := (word >> 21) & 0x1F
	inst.Op = OpFpu

	switch fmtField {
	case 0, 2, 3, 4, 6, 7: // mf, cf, mfh, mt, ct, mth
		inst.Type = TypeFPUT
	case 9, 13: // bc1eqz, bc1nez
		inst.Type = TypeFPUB
	case 16, 17, 20, 21: // s, d, w, l
		inst.Type = TypeFPUR
	default:
		if fmtField >= 24 { // cmp.condn.fmt space
			inst.Type = TypeFPUR
			return
		}
		inst.Type = TypeDecodeError
	}
}
