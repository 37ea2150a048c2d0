package cartridge

import (
	"fmt"
	"io"

	"github.com/nesforge/gones/pkg/cartridge/mapper"
)

// Cartridge represents a NES cartridge
type Cartridge struct {
	// ROM data
	PRGROM []uint8 // Program ROM
	CHRROM []uint8 // Character ROM

	// RAM data
	PRGRAM []uint8 // Program RAM (SRAM)
	CHRRAM []uint8 // Character RAM

	// Header information
	Header iNESHeader

	// MapperNumber and Submapper identify the banking logic; Submapper is
	// only meaningful for NES 2.0 images (mapper 4 submapper 1 selects
	// MMC6's 1KB WRAM window instead of MMC3's 8KB one).
	MapperNumber uint8
	Submapper    uint8
	IsNES20      bool
	Battery      bool
	TimingRegion TimingRegion

	// Mapper
	Mapper mapper.Mapper

	// Mirroring
	Mirroring MirroringMode
}

// TimingRegion is the cartridge-declared video timing, surfaced so the
// host can configure PPU/APU region tables (spec.md §6's
// apu.set_region/ppu.set_region).
type TimingRegion int

const (
	TimingNTSC TimingRegion = iota
	TimingPAL
	TimingDendy
)

// iNESHeader represents the iNES file header
type iNESHeader struct {
	Magic      [4]uint8 // "NES\x1A"
	PRGROMSize uint8    // Size of PRG ROM in 16KB units
	CHRROMSize uint8    // Size of CHR ROM in 8KB units
	Flags6     uint8    // Mapper, mirroring, battery, trainer
	Flags7     uint8    // Mapper, VS/Playchoice, NES 2.0
	Flags8     uint8    // PRG-RAM size (rarely used)
	Flags9     uint8    // TV system (rarely used)
	Flags10    uint8    // TV system, PRG-RAM presence (unofficial)
	Padding    [5]uint8 // Unused padding (should be zero)
}

// MirroringMode represents the mirroring mode
type MirroringMode int

const (
	MirroringHorizontal MirroringMode = iota
	MirroringVertical
	MirroringFourScreen
	MirroringSingleScreenA
	MirroringSingleScreenB
)

// LoadFromReader loads a cartridge from an iNES file
func LoadFromReader(reader io.Reader) (*Cartridge, error) {
	cart := &Cartridge{}

	// Read header
	err := cart.readHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Validate header
	if string(cart.Header.Magic[:]) != "NES\x1A" {
		return nil, &InvalidRomHeaderError{Reason: "missing iNES magic number"}
	}

	// Skip trainer if present
	if cart.Header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		_, err := io.ReadFull(reader, trainer)
		if err != nil {
			return nil, fmt.Errorf("failed to read trainer: %w", err)
		}
	}

	// Read PRG ROM
	prgSize := int(cart.Header.PRGROMSize) * 16384
	cart.PRGROM = make([]uint8, prgSize)
	_, err = io.ReadFull(reader, cart.PRGROM)
	if err != nil {
		return nil, fmt.Errorf("failed to read PRG ROM: %w", err)
	}

	// Read CHR ROM
	chrSize := int(cart.Header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.CHRROM = make([]uint8, chrSize)
		_, err = io.ReadFull(reader, cart.CHRROM)
		if err != nil {
			return nil, fmt.Errorf("failed to read CHR ROM: %w", err)
		}
	} else {
		// CHR RAM - determine size based on mapper
		mapperNumber := (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)
		chrRAMSize := 8192 // Default 8KB

		// Mapper 4 (MMC3) games often use 32KB CHR RAM
		if mapperNumber == 4 {
			chrRAMSize = 32768 // 32KB for MMC3 games
		}

		cart.CHRRAM = make([]uint8, chrRAMSize)

		// Initialize CHR RAM to 0x00 (normal expected state)
		for i := range cart.CHRRAM {
			cart.CHRRAM[i] = 0x00
		}
	}

	// Battery flag and PRG-RAM size. NES 2.0 (Flags7 bits 2-3 == 2) encodes
	// an exact PRG-RAM size in Flags10's low nibble as 64 << n bytes; the
	// older iNES header has no such field, so battery carts default to the
	// common 32KB SRAM size seen on most battery-backed boards.
	cart.Battery = cart.Header.Flags6&0x02 != 0
	cart.IsNES20 = (cart.Header.Flags7 & 0x0C) == 0x08
	if cart.IsNES20 {
		// NES 2.0 extends the mapper number with 4 more bits in Flags8's low
		// nibble; every mapper in this module's supported set fits in the
		// original 8-bit iNES range, so the extension nibble is not read
		// (see DESIGN.md).
		cart.MapperNumber = (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)
		cart.Submapper = cart.Header.Flags8 >> 4

		prgRAMShift := cart.Header.Flags10 & 0x0F
		if prgRAMShift > 0 {
			cart.PRGRAM = make([]uint8, 64<<prgRAMShift)
		} else if cart.Battery {
			cart.PRGRAM = make([]uint8, 8192)
		}

		switch cart.Header.Flags9 & 0x03 {
		case 1:
			cart.TimingRegion = TimingPAL
		case 2, 3:
			cart.TimingRegion = TimingDendy
		default:
			cart.TimingRegion = TimingNTSC
		}
	} else {
		cart.MapperNumber = (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)
		if cart.Battery {
			// Final Fantasy II requires 32KB PRG RAM, not 8KB
			cart.PRGRAM = make([]uint8, 32768)
		}
		if cart.Header.Flags10&0x03 == 1 || cart.Header.Flags10&0x03 == 3 {
			cart.TimingRegion = TimingPAL
		}
	}

	// Determine mirroring
	if cart.Header.Flags6&0x08 != 0 {
		cart.Mirroring = MirroringFourScreen
	} else if cart.Header.Flags6&0x01 != 0 {
		cart.Mirroring = MirroringVertical
	} else {
		cart.Mirroring = MirroringHorizontal
	}

	// Create mapper data
	mapperData := &mapper.CartridgeData{
		PRGROM:    cart.PRGROM,
		CHRROM:    cart.CHRROM,
		PRGRAM:    cart.PRGRAM,
		CHRRAM:    cart.CHRRAM,
		Submapper: cart.Submapper,
	}

	cart.Mapper, err = mapper.NewMapper(cart.MapperNumber, mapperData)
	if err != nil {
		return nil, &MapperUnsupportedError{ID: cart.MapperNumber, Submapper: cart.Submapper}
	}

	return cart, nil
}

// readHeader reads the iNES header
func (c *Cartridge) readHeader(reader io.Reader) error {
	headerBytes := make([]uint8, 16)
	_, err := io.ReadFull(reader, headerBytes)
	if err != nil {
		return err
	}

	copy(c.Header.Magic[:], headerBytes[0:4])
	c.Header.PRGROMSize = headerBytes[4]
	c.Header.CHRROMSize = headerBytes[5]
	c.Header.Flags6 = headerBytes[6]
	c.Header.Flags7 = headerBytes[7]
	c.Header.Flags8 = headerBytes[8]
	c.Header.Flags9 = headerBytes[9]
	c.Header.Flags10 = headerBytes[10]
	copy(c.Header.Padding[:], headerBytes[11:16])

	return nil
}

// ReadPRG reads from PRG space
func (c *Cartridge) ReadPRG(addr uint16) uint8 {
	if c.Mapper != nil {
		return c.Mapper.ReadPRG(addr)
	}
	return 0
}

// WritePRG writes to PRG space
func (c *Cartridge) WritePRG(addr uint16, value uint8) {
	if c.Mapper != nil {
		c.Mapper.WritePRG(addr, value)
	}
}

// ReadCHR reads from CHR space
func (c *Cartridge) ReadCHR(addr uint16) uint8 {
	if c.Mapper != nil {
		return c.Mapper.ReadCHR(addr)
	}
	return 0
}

// WriteCHR writes to CHR space
func (c *Cartridge) WriteCHR(addr uint16, value uint8) {
	if c.Mapper != nil {
		c.Mapper.WriteCHR(addr, value)
	}
}

// Step steps the mapper (for mappers with timing)
func (c *Cartridge) Step() {
	if c.Mapper != nil {
		c.Mapper.Step()
	}
}

// IsIRQPending returns whether mapper IRQ is pending
func (c *Cartridge) IsIRQPending() bool {
	if c.Mapper != nil {
		return c.Mapper.IsIRQPending()
	}
	return false
}

// ClearIRQ clears mapper IRQ
func (c *Cartridge) ClearIRQ() {
	if c.Mapper != nil {
		c.Mapper.ClearIRQ()
	}
}

// NotifyA12 notifies the mapper of A12 line state for MMC3-style IRQ timing
func (c *Cartridge) NotifyA12(chrAddr uint16, renderingEnabled bool) {
	if a12, ok := c.Mapper.(interface {
		NotifyA12(chrAddr uint16, renderingEnabled bool)
	}); ok {
		a12.NotifyA12(chrAddr, renderingEnabled)
	}
}

// NotifyScanline notifies mappers whose IRQ source is scanline position
// rather than an A12 edge (MMC5). Called once per scanline by the PPU.
func (c *Cartridge) NotifyScanline(scanline int, renderingEnabled bool) {
	if sl, ok := c.Mapper.(interface {
		NotifyScanline(scanline int, renderingEnabled bool)
	}); ok {
		sl.NotifyScanline(scanline, renderingEnabled)
	}
}

// TickCPU notifies mappers whose IRQ counter is clocked directly by CPU
// cycles rather than by PPU activity (FME-7, VRC4 in cycle mode).
func (c *Cartridge) TickCPU(cycles int) {
	if t, ok := c.Mapper.(interface{ TickCPU(cycles int) }); ok {
		t.TickCPU(cycles)
	}
}

// GetMirroring returns the current mirroring mode in this codebase's
// universal encoding: 0=horizontal, 1=vertical, 2=single-screen page 0,
// 3=single-screen page 1, 4=four-screen (mapper-independent CIRAM, handled
// by the PPU as an unmirrored 4KB nametable region).
func (c *Cartridge) GetMirroring() int {
	// Some mappers (MMC1, MMC3, AxROM, MMC5, FME-7, VRC2/4) change
	// mirroring dynamically; others rely on the fixed header value.
	if m, ok := c.Mapper.(interface{ GetMirroringMode() uint8 }); ok {
		return int(m.GetMirroringMode())
	}

	switch c.Mirroring {
	case MirroringHorizontal:
		return 0
	case MirroringVertical:
		return 1
	case MirroringSingleScreenA:
		return 2
	case MirroringSingleScreenB:
		return 3
	case MirroringFourScreen:
		return 4
	default:
		return 0
	}
}

// ExportBattery returns a copy of the cartridge's battery-backed PRG-RAM,
// or nil if the cartridge has no battery. The host is expected to persist
// this between sessions and hand it back via ImportBattery.
func (c *Cartridge) ExportBattery() []uint8 {
	if !c.Battery || len(c.PRGRAM) == 0 {
		return nil
	}
	out := make([]uint8, len(c.PRGRAM))
	copy(out, c.PRGRAM)
	return out
}

// ImportBattery restores previously exported battery RAM. A size mismatch
// against the cartridge's declared NVRAM size is rejected and the
// cartridge's current (zeroed) PRG-RAM is left untouched, per spec.md §7.
func (c *Cartridge) ImportBattery(data []uint8) error {
	if !c.Battery || len(c.PRGRAM) == 0 {
		return &BatteryRamSizeMismatchError{Expected: 0, Got: len(data)}
	}
	if len(data) != len(c.PRGRAM) {
		return &BatteryRamSizeMismatchError{Expected: len(c.PRGRAM), Got: len(data)}
	}
	copy(c.PRGRAM, data)
	return nil
}
