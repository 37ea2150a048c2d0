package mapper

// Mapper3 (CNROM) - fixed 32KB PRG, 8KB CHR bank switching through any
// write to the ROM window. CNROM boards wire the data bus straight to
// the bank latch, so writes can suffer AND-type bus conflicts with the
// ROM byte under the written address; the conflict policy is selected
// with SetBusConflictMode (numbered as the NES 2.0 submappers are) and
// defaults to no conflicts. The header's submapper is not read.
type Mapper3 struct {
	cartridge *CartridgeData

	chrBank      uint8
	chrBankCount uint8

	// busConflictMode: 0=unspecified (treated as none), 1=no conflicts,
	// 2=AND-type conflicts.
	busConflictMode uint8
}

// NewMapper3 creates a new Mapper3 instance
func NewMapper3(data *CartridgeData) *Mapper3 {
	m := &Mapper3{
		cartridge:       data,
		busConflictMode: 1,
	}
	if len(data.CHRROM) > 0 {
		m.chrBankCount = uint8(len(data.CHRROM) / 0x2000)
	}
	return m
}

// ReadPRG reads the fixed 32KB PRG window or work RAM
func (m *Mapper3) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		offset := addr - 0x8000
		if int(offset) < len(m.cartridge.PRGROM) {
			return m.cartridge.PRGROM[offset]
		}
	case addr >= 0x6000 && len(m.cartridge.PRGRAM) > 0:
		idx := addr - 0x6000
		if int(idx) < len(m.cartridge.PRGRAM) {
			return m.cartridge.PRGRAM[idx]
		}
	}
	return 0
}

// WritePRG latches the CHR bank, applying the board's bus-conflict policy
func (m *Mapper3) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000:
		effective := value
		if m.busConflictMode == 2 {
			// The latch sees the wired-AND of the CPU's byte and the ROM
			// byte at the written address.
			effective = value & m.ReadPRG(addr)
		}
		m.chrBank = effective & 0x03
	case addr >= 0x6000 && len(m.cartridge.PRGRAM) > 0:
		idx := addr - 0x6000
		if int(idx) < len(m.cartridge.PRGRAM) {
			m.cartridge.PRGRAM[idx] = value
		}
	}
}

// ReadCHR reads the selected 8KB CHR bank
func (m *Mapper3) ReadCHR(addr uint16) uint8 {
	if len(m.cartridge.CHRROM) > 0 {
		bank := m.chrBank % m.chrBankCount
		idx := uint32(bank)*0x2000 + uint32(addr)
		if idx < uint32(len(m.cartridge.CHRROM)) {
			return m.cartridge.CHRROM[idx]
		}
		return 0
	}
	if len(m.cartridge.CHRRAM) > 0 && int(addr) < len(m.cartridge.CHRRAM) {
		return m.cartridge.CHRRAM[addr]
	}
	return 0
}

// WriteCHR writes CHR RAM where present; CHR ROM boards ignore writes
func (m *Mapper3) WriteCHR(addr uint16, value uint8) {
	if len(m.cartridge.CHRROM) == 0 && len(m.cartridge.CHRRAM) > 0 {
		if int(addr) < len(m.cartridge.CHRRAM) {
			m.cartridge.CHRRAM[addr] = value
		}
	}
}

// Step does nothing for CNROM (no timing hardware on the board)
func (m *Mapper3) Step() {}

// GetCurrentCHRBank returns the current CHR bank for debugging
func (m *Mapper3) GetCurrentCHRBank() uint8 {
	return m.chrBank
}

// IsIRQPending returns false for Mapper3 (no IRQ support)
func (m *Mapper3) IsIRQPending() bool { return false }

// ClearIRQ does nothing for Mapper3 (no IRQ support)
func (m *Mapper3) ClearIRQ() {}

// SetBusConflictMode selects the bus conflict behavior (see the field
// comment); values above 2 are ignored.
func (m *Mapper3) SetBusConflictMode(mode uint8) {
	if mode <= 2 {
		m.busConflictMode = mode
	}
}
