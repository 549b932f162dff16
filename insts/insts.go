// Package insts provides MIPS32 Release 6 instruction definitions and decoding.
//
// This package implements decoding of 32-bit MIPS32 R6 machine words into
// structured instruction representations. It supports the R-type, I-type,
// long-immediate I-type, J-type, REGIMM, SPECIAL3 (BSHFL/EXT/INS), PC-relative
// (type 1 and type 2), and FPU (R/T/B) encoding families, including decode-time
// resolution of the POP06/07/10/26/27/30/66/76 overloaded opcode groups into
// distinct mnemonics.
//
// Usage:
//
//	dec := insts.NewDecoder()
//	inst := dec.Decode(0x01A44020) // add t0, t5, a0
//	fmt.Printf("Op: %v, Rd: %d, Rs: %d, Rt: %d\n", inst.Op, inst.Rd, inst.Rs, inst.Rt)
package insts
