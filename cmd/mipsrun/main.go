// Package main provides the entry point for mipsrun, a functional
// MIPS32 Release 6 instruction-execution-core emulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/sarchlab/r6sim/emu"
	"github.com/sarchlab/r6sim/loader"
)

var (
	verbose    = flag.Bool("v", false, "Verbose output")
	maxInst    = flag.Uint64("max", 0, "Maximum instructions to execute (0 = no limit)")
	cpuProfile = flag.String("cpuprofile", "", "write a CPU profile of the emulation run to file")
	memProfile = flag.String("memprofile", "", "write a heap profile after the run completes to file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: mipsrun [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	var cpuProfileFile *os.File
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		cpuProfileFile = f

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%08X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	opts := []emu.EmulatorOption{emu.WithStackPointer(prog.InitialSP)}
	if *maxInst > 0 {
		opts = append(opts, emu.WithMaxInstructions(*maxInst))
	}
	emulator := emu.NewEmulator(opts...)

	mem := emulator.Memory()
	for _, seg := range prog.Segments {
		for i, b := range seg.Data {
			_ = mem.Write8(seg.VirtAddr+uint32(i), b)
		}
		for i := uint32(len(seg.Data)); i < seg.MemSize; i++ {
			_ = mem.Write8(seg.VirtAddr+i, 0)
		}
	}
	emulator.SetEntry(prog.EntryPoint)

	exitCode := emulator.Run()

	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Exit code: %d\n", exitCode)
		fmt.Printf("Instructions executed: %d\n", emulator.InstructionCount())
	}

	if cpuProfileFile != nil {
		pprof.StopCPUProfile()
		_ = cpuProfileFile.Close()
	}
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
		} else {
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
			}
			_ = f.Close()
		}
	}

	os.Exit(int(exitCode))
}
