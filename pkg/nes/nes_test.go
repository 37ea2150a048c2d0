package nes

import (
	"errors"
	"testing"

	"github.com/nesforge/gones/pkg/cpu"
)

// dotCount flattens the PPU's (frame, scanline, cycle) position into a
// monotonic dot index. Scanline -1 is the pre-render line, so visible
// line 0 starts one line in. Only valid while rendering is disabled
// (no odd-frame skip).
func dotCount(n *NES) uint64 {
	return n.PPU.Frame*341*262 + uint64(n.PPU.Scanline+1)*341 + uint64(n.PPU.Cycle)
}

func TestPPURunsThreeDotsPerCPUCycle(t *testing.T) {
	n := NewNES()

	// A little NOP sled in RAM.
	for i := 0; i < 32; i++ {
		n.Memory.Write(uint16(0x0600+i), 0xEA)
	}
	n.CPU.PC = 0x0600

	before := dotCount(n)
	cyclesBefore := n.Cycles
	for i := 0; i < 16; i++ {
		n.Step()
	}
	dotDelta := dotCount(n) - before
	cycleDelta := n.Cycles - cyclesBefore

	if dotDelta != cycleDelta*3 {
		t.Errorf("PPU advanced %d dots for %d CPU cycles; expected exactly 3:1", dotDelta, cycleDelta)
	}
}

func TestOAMDMATimingAndTransfer(t *testing.T) {
	n := NewNES()

	// Source page $02: a recognizable ramp.
	for i := 0; i < 256; i++ {
		n.Memory.Write(uint16(0x0200+i), uint8(i^0x5A))
	}

	// LDA #$02; STA $4014
	n.Memory.Write(0x0600, 0xA9)
	n.Memory.Write(0x0601, 0x02)
	n.Memory.Write(0x0602, 0x8D)
	n.Memory.Write(0x0603, 0x14)
	n.Memory.Write(0x0604, 0x40)
	n.CPU.PC = 0x0600

	n.Step() // LDA, 2 cycles

	cyclesBefore := n.Cycles
	dotsBefore := dotCount(n)
	oddCycle := n.CPU.Cycles%2 != 0
	n.Step() // STA + DMA stall

	delta := n.Cycles - cyclesBefore
	expected := uint64(4 + 513)
	if oddCycle {
		expected = 4 + 514
	}
	if delta != expected {
		t.Errorf("STA $4014 cost %d cycles; expected %d", delta, expected)
	}
	if dotDelta := dotCount(n) - dotsBefore; dotDelta != delta*3 {
		t.Errorf("PPU advanced %d dots across the DMA; expected %d", dotDelta, delta*3)
	}

	for i := 0; i < 256; i++ {
		want := uint8(i ^ 0x5A)
		if n.PPU.OAM[i] != want {
			t.Fatalf("OAM[%d]: expected $%02X, got $%02X", i, want, n.PPU.OAM[i])
		}
	}
}

func TestNMILateEnable(t *testing.T) {
	n := NewNES()

	// NMI vector -> $1234 (HighMem stands in for the cartridge here).
	n.Memory.Write(0xFFFA, 0x34)
	n.Memory.Write(0xFFFB, 0x12)

	// NOPs for the instruction that performs the late enable.
	n.Memory.Write(0x0600, 0xEA)
	n.Memory.Write(0x0601, 0xEA)
	n.CPU.PC = 0x0600

	// Tick the PPU into VBlank with NMI disabled: flag sets at (241, 1).
	for !(n.PPU.Scanline == 241 && n.PPU.Cycle >= 2) {
		n.PPU.Step()
	}
	if n.PPU.PPUSTATUS&0x80 == 0 {
		t.Fatal("VBlank flag should be set at scanline 241")
	}
	if n.PPU.NMIRequested {
		t.Fatal("no NMI edge should be latched while $2000 bit 7 is clear")
	}

	// Enabling NMI while the flag is set latches the edge immediately.
	n.Memory.Write(0x2000, 0x80)
	if !n.PPU.NMIRequested {
		t.Fatal("enabling NMI during VBlank should latch the edge")
	}

	n.Step() // NOP; the edge propagates to the CPU at the end of the step
	n.Step() // services NMI
	if n.CPU.PC != 0x1234 {
		t.Errorf("expected PC at NMI vector $1234, got $%04X", n.CPU.PC)
	}
}

func TestStepInstructionHaltsOnUnknownOpcode(t *testing.T) {
	n := NewNES()

	n.Memory.Write(0x0600, 0x02) // undecoded opcode
	n.CPU.PC = 0x0600

	err := n.StepInstruction()
	if err == nil {
		t.Fatal("expected an error for an undecoded opcode")
	}
	var unk *cpu.UnknownOpcodeError
	if !errors.As(err, &unk) {
		t.Fatalf("expected UnknownOpcodeError, got %T", err)
	}
	if unk.PC != 0x0600 || unk.Opcode != 0x02 {
		t.Errorf("expected PC=$0600 opcode=$02, got PC=$%04X opcode=$%02X", unk.PC, unk.Opcode)
	}

	// The system stays halted and in a defined state.
	pc := n.CPU.PC
	if err2 := n.StepInstruction(); err2 == nil {
		t.Error("second StepInstruction should report the same halt")
	}
	if n.CPU.PC != pc {
		t.Error("halted CPU must not advance")
	}
}

func TestDMCStallConfig(t *testing.T) {
	n := NewNES()
	if n.DMCStall {
		t.Error("DMC stall accounting should default off")
	}
	n.SetDMCStall(true)
	if !n.DMCStall {
		t.Error("SetDMCStall(true) should enable stall accounting")
	}
}
