package insts

// Type is the coarse-grained instruction shape produced by classification.
type Type uint8

// Instruction shapes, per the MIPS32 Release 6 encoding space.
const (
	TypeDecodeError Type = iota
	TypeR
	TypeI
	TypeLongImmI
	TypeJ
	TypeRegimmI
	TypeBSHFL
	TypeEXT
	TypeINS
	TypePCRelType1
	TypePCRelType2
	TypeFPUR
	TypeFPUT
	TypeFPUB
)

func (t Type) String() string {
	switch t {
	case TypeR:
		return "r-type"
	case TypeI:
		return "i-type"
	case TypeLongImmI:
		return "longimm-i-type"
	case TypeJ:
		return "j-type"
	case TypeRegimmI:
		return "regimm-i-type"
	case TypeBSHFL:
		return "special3-bshfl"
	case TypeEXT:
		return "special3-ext"
	case TypeINS:
		return "special3-ins"
	case TypePCRelType1:
		return "pcrel-type1"
	case TypePCRelType2:
		return "pcrel-type2"
	case TypeFPUR:
		return "fpu-rtype"
	case TypeFPUT:
		return "fpu-ttype"
	case TypeFPUB:
		return "fpu-btype"
	default:
		return "decode-error"
	}
}

// Op identifies the resolved mnemonic of a decoded instruction. For the
// POP06/07/10/26/27/30/66/76 families, the decoder resolves the register-field
// disambiguation at decode time, so Op already names the specific branch
// mnemonic rather than the raw opcode group.
type Op uint16

const (
	OpInvalid Op = iota

	// R-type.
	OpAdd
	OpAddu
	OpSub
	OpSubu
	OpAnd
	OpOr
	OpXor
	OpNor
	OpSlt
	OpSltu
	OpSll
	OpSrl
	OpRotr
	OpSra
	OpSllv
	OpSrlv
	OpRotrv
	OpSrav
	OpMul
	OpMuh
	OpMulu
	OpMuhu
	OpDiv
	OpMod
	OpDivu
	OpModu
	OpJr
	OpJalr
	OpSeleqz
	OpSelnez
	OpClz
	OpClo
	OpTeq
	OpTne
	OpTge
	OpTgeu
	OpTlt
	OpTltu
	OpSyscall

	// Plain I-type.
	OpBeq
	OpBne
	OpAddiu
	OpAui
	OpSlti
	OpSltiu
	OpAndi
	OpOri
	OpXori

	// OpAddi is the legacy opcode-0x08 "addi" encoding, encode-only: R6
	// repurposes opcode 0x08 for the POP10 branch family, so the decoder
	// never produces OpAddi and the executor has no case for it.
	OpAddi

	// I-type memory.
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw

	// POP06.
	OpBlez
	OpBlezalc
	OpBgezalc
	OpBgeuc

	// POP07.
	OpBgtz
	OpBgtzalc
	OpBltzalc
	OpBltuc

	// POP10.
	OpBeqzalc
	OpBeqc
	OpBovc

	// POP30.
	OpBnezalc
	OpBnec
	OpBnvc

	// POP26.
	OpBlezc
	OpBgezc
	OpBgec

	// POP27.
	OpBgtzc
	OpBltzc
	OpBltc

	// POP66.
	OpJic
	OpBeqzc

	// POP76.
	OpJialc
	OpBnezc

	// J-type.
	OpJ
	OpJal
	OpBc
	OpBalc

	// SPECIAL3 BSHFL.
	OpBitswap
	OpWsbh
	OpAlign
	OpSeb
	OpSeh

	// SPECIAL3 EXT/INS.
	OpExt
	OpIns

	// REGIMM.
	OpBgez
	OpBltz

	// PC-relative.
	OpAddiupc
	OpLwpc
	OpAuipc
	OpAluipc

	// FPU (decoded, never executed).
	OpFpu
)

// Instruction is a decoded MIPS32 R6 instruction word together with every
// bitfield view relevant to its Type. Only the fields relevant to the
// instruction's Op are meaningful; the rest are zero.
type Instruction struct {
	raw  uint32
	Op   Op
	Type Type

	Rs    uint8
	Rt    uint8
	Rd    uint8
	Shamt uint8
	Func  uint8

	Imm     uint32 // raw immediate bits, unsign-extended, width depends on Type
	Address uint32 // J-type 26-bit address field

	Lsb  uint8 // SPECIAL3 EXT/INS
	Msbd uint8 // EXT: size-1; INS: msb
	Bp   uint8 // BSHFL align byte position
}

// Raw returns the 32-bit encoded word this instruction was decoded from, or
// the word it would encode to when constructed via one of the Encode
// functions.
func (i *Instruction) Raw() uint32 { return i.raw }
