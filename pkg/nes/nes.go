package nes

import (
	"github.com/nesforge/gones/pkg/apu"
	"github.com/nesforge/gones/pkg/cartridge"
	"github.com/nesforge/gones/pkg/cpu"
	"github.com/nesforge/gones/pkg/input"
	"github.com/nesforge/gones/pkg/memory"
	"github.com/nesforge/gones/pkg/ppu"
)

// NES represents the Nintendo Entertainment System
type NES struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Memory    *memory.Memory
	Cartridge *cartridge.Cartridge
	Input     *input.Controller

	Cycles uint64
	Frame  uint64

	// DMCStall adds the approximate 4-cycle CPU stall per DMC sample
	// fetch to the scheduler's accounting when enabled.
	DMCStall bool
}

// NewNES creates a new NES instance
func NewNES() *NES {
	nes := &NES{}

	// Initialize components
	nes.Memory = memory.New()
	nes.CPU = cpu.New(nes.Memory)
	nes.PPU = ppu.New(nes.Memory)
	nes.APU = apu.New()
	nes.Input = input.New()

	// Connect components to memory
	nes.Memory.SetPPU(nes.PPU)
	nes.Memory.SetAPU(nes.APU)
	nes.Memory.SetInput(nes.Input)
	nes.APU.SetMemory(nes.Memory)

	return nes
}

// LoadCartridge loads a cartridge into the NES, configuring the PPU and
// APU region tables from the cartridge's declared timing region.
func (n *NES) LoadCartridge(cart *cartridge.Cartridge) {
	n.Cartridge = cart
	n.Memory.SetCartridge(cart)
	n.PPU.SetCartridge(cart)

	switch cart.TimingRegion {
	case cartridge.TimingPAL:
		n.PPU.SetRegion(ppu.RegionPAL)
		n.APU.SetRegion(apu.RegionPAL)
	case cartridge.TimingDendy:
		n.PPU.SetRegion(ppu.RegionDendy)
		n.APU.SetRegion(apu.RegionNTSC)
	default:
		n.PPU.SetRegion(ppu.RegionNTSC)
		n.APU.SetRegion(apu.RegionNTSC)
	}
}

// Reset resets the NES to initial state
func (n *NES) Reset() {
	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	n.Cycles = 0
	n.Frame = 0
}

// step3x runs the PPU and APU for cpuCycles worth of time (3 PPU dots and
// 1 APU tick per CPU cycle). NMI is edge-latched at the moment the PPU
// requests it; IRQ is a level held by the mapper and/or APU for as long as
// their own pending flags are set, so it is recomputed once per call rather
// than latched on detection (a mapper or APU IRQ stays asserted until
// software clears it via a register access, not merely by being observed).
func (n *NES) step3x(cpuCycles int) {
	for i := 0; i < cpuCycles*3; i++ {
		n.PPU.Step()

		if n.PPU.NMIRequested {
			n.CPU.TriggerNMI()
			n.PPU.NMIRequested = false
		}
	}

	for i := 0; i < cpuCycles; i++ {
		n.APU.Step()
	}

	if n.Cartridge != nil {
		n.Cartridge.TickCPU(cpuCycles)
	}

	n.updateIRQLine()

	n.Cycles += uint64(cpuCycles)
}

// updateIRQLine drives the CPU's IRQ input from the current state of the
// mapper and APU IRQ sources. Either source holds the line high until its
// own register interface clears it (mapper IRQ ack write, or an APU $4015
// read), so this recomputes the OR of both every call instead of setting
// the line once and leaving it stuck.
func (n *NES) updateIRQLine() {
	line := n.APU.IsIRQPending()
	if n.PPU.IsMapperIRQPending() {
		line = true
	}
	n.CPU.SetIRQLine(line)
}

// Step executes one CPU instruction (and the OAM DMA transfer it may have
// queued), advancing the PPU and APU in lockstep.
func (n *NES) Step() {
	cpuCycles := n.CPU.Step()
	n.step3x(cpuCycles)

	if n.Memory.OAMDMAPending() {
		oddCycle := n.CPU.Cycles%2 != 0
		stall := n.Memory.TakeOAMDMAPage(oddCycle)
		n.step3x(stall)
	}

	if fetches := n.APU.TakeDMCFetches(); fetches > 0 && n.DMCStall {
		n.step3x(fetches * 4)
	}
}

// StepInstruction executes one CPU instruction like Step, but surfaces a
// halted CPU (undecoded opcode) as an error so the host can stop its run
// loop. The system stays in a defined state: all clocks remain in sync and
// further calls return the same error without making progress.
func (n *NES) StepInstruction() error {
	if n.CPU.Halted {
		return n.CPU.HaltErr
	}
	n.Step()
	return n.CPU.HaltErr
}

// SetDMCStall enables or disables the per-fetch DMC stall accounting.
func (n *NES) SetDMCStall(on bool) {
	n.DMCStall = on
}

// StepFrame executes until frame is complete
func (n *NES) StepFrame() {
	stepCount := 0
	maxSteps := 50000 // Proper limit for normal NES frame processing

	for !n.PPU.FrameComplete {
		n.Step()
		stepCount++

		if n.CPU.Halted {
			break
		}

		// Safety check to prevent infinite loops during game freezes
		if stepCount > maxSteps {
			n.PPU.FrameComplete = true
			break
		}
	}

	n.PPU.FrameComplete = false
	// Frame counter is managed by PPU, don't increment here
	n.Frame = n.PPU.Frame
}

// RunFrame executes instructions until the current frame completes,
// returning an error if the CPU halted partway through.
func (n *NES) RunFrame() error {
	n.StepFrame()
	return n.CPU.HaltErr
}

// GetInput returns the input controller
func (n *NES) GetInput() *input.Controller {
	return n.Input
}

// GetFramebuffer returns the current framebuffer from PPU
func (n *NES) GetFramebuffer() []uint8 {
	return n.PPU.GetFramebuffer()
}

// GetFrame returns the current frame number
func (n *NES) GetFrame() uint64 {
	return n.Frame
}

// GetFramebufferRaw returns the raw framebuffer as 6-bit palette indices
func (n *NES) GetFramebufferRaw() []uint8 {
	return n.PPU.GetIndexFrameBuffer()
}

// GetDisplayFramebufferRaw returns the display framebuffer, as palette
// indices, considering persistent rendering
func (n *NES) GetDisplayFramebufferRaw() []uint8 {
	return n.PPU.GetDisplayFrameBuffer()
}

// GetDisplayFramebuffer returns the display framebuffer as RGBA bytes considering persistent rendering
func (n *NES) GetDisplayFramebuffer() []uint8 {
	indices := n.PPU.GetDisplayFrameBuffer()

	rgba := make([]uint8, 256*240*4)
	for i, index := range indices {
		r, g, b := n.PPU.PaletteManager.RGBFromIndex(index)
		rgba[i*4+0] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = 0xFF
	}

	return rgba
}
