package mapper

// Mapper1 (MMC1/SxROM) - all register traffic goes through a single
// serial port: five writes to $8000-$FFFF each contribute one bit
// (LSB first), and the fifth write's address picks which of the four
// internal registers latches the assembled value. A write with bit 7
// set aborts the sequence and forces the control register back into
// 16KB last-bank-fixed PRG mode.
type Mapper1 struct {
	cartridge *CartridgeData

	shift      uint8 // serial accumulator, filled from bit 4 downward
	shiftCount uint8

	control  uint8 // $8000-$9FFF: mirroring, PRG mode, CHR mode
	chrBank0 uint8 // $A000-$BFFF
	chrBank1 uint8 // $C000-$DFFF, unused in 8KB CHR mode
	prgBank  uint8 // $E000-$FFFF: PRG bank + RAM disable (bit 4)
}

// NewMapper1 creates a new Mapper1 instance. Power-on control mirrors
// the reset state: PRG mode 3 (last bank fixed), 8KB CHR, one-screen
// lower mirroring.
func NewMapper1(data *CartridgeData) *Mapper1 {
	return &Mapper1{
		cartridge: data,
		control:   0x0C,
	}
}

// The banking modes are carried in the control register and decoded on
// demand rather than cached.

func (m *Mapper1) prgMode() uint8 { return (m.control >> 2) & 0x03 }
func (m *Mapper1) chr4KB() bool   { return m.control&0x10 != 0 }

func (m *Mapper1) ramEnabled() bool {
	return m.prgBank&0x10 == 0
}

// prgOffset maps a $8000-$FFFF address to its PRG ROM byte offset under
// the current PRG mode.
func (m *Mapper1) prgOffset(addr uint16) uint32 {
	window := uint32(addr & 0x3FFF)
	lowHalf := addr < 0xC000
	lastBank := uint32(len(m.cartridge.PRGROM)/0x4000) - 1

	switch m.prgMode() {
	case 0, 1:
		// 32KB switching: bit 0 of the bank number is ignored.
		return uint32(m.prgBank&0x0E)*0x4000 + uint32(addr&0x7FFF)
	case 2:
		// First bank pinned at $8000, $C000 switchable.
		if lowHalf {
			return window
		}
		return uint32(m.prgBank&0x0F)*0x4000 + window
	default:
		// $8000 switchable, last bank pinned at $C000.
		if lowHalf {
			return uint32(m.prgBank&0x0F)*0x4000 + window
		}
		return lastBank*0x4000 + window
	}
}

// ReadPRG reads the banked ROM windows, or work RAM when it is enabled
func (m *Mapper1) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		offset := m.prgOffset(addr)
		if offset < uint32(len(m.cartridge.PRGROM)) {
			return m.cartridge.PRGROM[offset]
		}
	case addr >= 0x6000 && m.ramEnabled() && len(m.cartridge.PRGRAM) > 0:
		idx := addr - 0x6000
		if int(idx) < len(m.cartridge.PRGRAM) {
			return m.cartridge.PRGRAM[idx]
		}
	}
	return 0
}

// WritePRG feeds the serial port (ROM window) or work RAM
func (m *Mapper1) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000:
		if value&0x80 != 0 {
			// Abort: clear the shift state and re-pin the last PRG bank.
			m.shift = 0
			m.shiftCount = 0
			m.control |= 0x0C
			return
		}
		m.shift = m.shift>>1 | (value&1)<<4
		m.shiftCount++
		if m.shiftCount == 5 {
			m.latchRegister(addr, m.shift)
			m.shift = 0
			m.shiftCount = 0
		}
	case addr >= 0x6000 && m.ramEnabled() && len(m.cartridge.PRGRAM) > 0:
		idx := addr - 0x6000
		if int(idx) < len(m.cartridge.PRGRAM) {
			m.cartridge.PRGRAM[idx] = value
		}
	}
}

// latchRegister commits a completed five-bit sequence to the register
// selected by the fifth write's address range.
func (m *Mapper1) latchRegister(addr uint16, value uint8) {
	switch {
	case addr < 0xA000:
		m.control = value
	case addr < 0xC000:
		m.chrBank0 = value
	case addr < 0xE000:
		m.chrBank1 = value
	default:
		m.prgBank = value
	}
}

// ReadCHR reads CHR through the 8KB or split-4KB banking of the control
// register; CHR RAM boards are unbanked
func (m *Mapper1) ReadCHR(addr uint16) uint8 {
	if len(m.cartridge.CHRROM) > 0 {
		var offset uint32
		switch {
		case !m.chr4KB():
			// 8KB mode ignores bit 0 of the bank register.
			offset = uint32(m.chrBank0>>1)*0x2000 + uint32(addr)
		case addr < 0x1000:
			offset = uint32(m.chrBank0)*0x1000 + uint32(addr)
		default:
			offset = uint32(m.chrBank1)*0x1000 + uint32(addr&0x0FFF)
		}
		if offset < uint32(len(m.cartridge.CHRROM)) {
			return m.cartridge.CHRROM[offset]
		}
		return 0
	}
	if len(m.cartridge.CHRRAM) > 0 && int(addr) < len(m.cartridge.CHRRAM) {
		return m.cartridge.CHRRAM[addr]
	}
	return 0
}

// WriteCHR writes CHR RAM where present; CHR ROM boards ignore writes
func (m *Mapper1) WriteCHR(addr uint16, value uint8) {
	if len(m.cartridge.CHRROM) == 0 && len(m.cartridge.CHRRAM) > 0 {
		if int(addr) < len(m.cartridge.CHRRAM) {
			m.cartridge.CHRRAM[addr] = value
		}
	}
}

// Step does nothing for Mapper1 (the board has no IRQ hardware)
func (m *Mapper1) Step() {}

// IsIRQPending returns false for Mapper1 (no IRQ support)
func (m *Mapper1) IsIRQPending() bool { return false }

// ClearIRQ does nothing for Mapper1 (no IRQ support)
func (m *Mapper1) ClearIRQ() {}

// GetMirroringMode reports the mirroring selected by the control
// register's low two bits in this codebase's universal encoding
// (0=horizontal, 1=vertical, 2=single-screen page 0, 3=single-screen
// page 1). MMC1's own encoding orders them differently (0=one-screen
// lower, 1=one-screen upper, 2=vertical, 3=horizontal).
func (m *Mapper1) GetMirroringMode() uint8 {
	switch m.control & 0x03 {
	case 0:
		return 2
	case 1:
		return 3
	case 2:
		return 1
	default:
		return 0
	}
}
