package cpu

// AddressingMode identifies how an instruction locates its operand.
type AddressingMode int

const (
	AddrImplied AddressingMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrRelative
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirect
	AddrIndexedIndirect // (zp,X)
	AddrIndirectIndexed // (zp),Y
)

// getOperandAddress resolves the effective address for an addressing
// mode, consuming operand bytes from the instruction stream. The second
// return value reports a page crossing, which costs the indexed read
// modes an extra cycle (stores pay it unconditionally and ignore it).
//
// The indexed modes issue the hardware's dummy read from the
// partially-carried address on a page crossing; some hardware registers
// are read-sensitive, so the extra bus access is observable.
func (c *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case AddrImplied, AddrAccumulator:
		return 0, false

	case AddrImmediate:
		addr := c.PC
		c.PC++
		return addr, false

	case AddrZeroPage:
		addr := uint16(c.read(c.PC))
		c.PC++
		return addr, false

	case AddrZeroPageX:
		// Indexing wraps within the zero page.
		addr := uint16(c.read(c.PC) + c.X)
		c.PC++
		return addr & 0xFF, false

	case AddrZeroPageY:
		addr := uint16(c.read(c.PC) + c.Y)
		c.PC++
		return addr & 0xFF, false

	case AddrRelative:
		offset := int8(c.read(c.PC))
		c.PC++
		addr := uint16(int32(c.PC) + int32(offset))
		return addr, (c.PC & 0xFF00) != (addr & 0xFF00)

	case AddrAbsolute:
		addr := c.read16(c.PC)
		c.PC += 2
		return addr, false

	case AddrAbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		return c.indexWithDummyRead(base, c.X)

	case AddrAbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		return c.indexWithDummyRead(base, c.Y)

	case AddrIndirect:
		// Used only by JMP, which reproduces the 6502's page-wrap bug:
		// a pointer at $xxFF fetches its high byte from $xx00.
		ptr := c.read16(c.PC)
		c.PC += 2
		if ptr&0xFF == 0xFF {
			lo := c.read(ptr)
			hi := c.read(ptr & 0xFF00)
			return uint16(hi)<<8 | uint16(lo), false
		}
		return c.read16(ptr), false

	case AddrIndexedIndirect:
		base := c.read(c.PC)
		c.PC++
		ptr := (uint16(base) + uint16(c.X)) & 0xFF
		lo := c.read(ptr)
		hi := c.read((ptr + 1) & 0xFF)
		return uint16(hi)<<8 | uint16(lo), false

	case AddrIndirectIndexed:
		base := c.read(c.PC)
		c.PC++
		lo := c.read(uint16(base))
		hi := c.read((uint16(base) + 1) & 0xFF)
		return c.indexWithDummyRead(uint16(hi)<<8|uint16(lo), c.Y)
	}

	return 0, false
}

// indexWithDummyRead adds an index register to a base address. When the
// addition carries into the high byte, the 6502 first reads from the
// address with the stale high byte; that read is replayed here so
// read-sensitive hardware observes it.
func (c *CPU) indexWithDummyRead(base uint16, index uint8) (uint16, bool) {
	addr := base + uint16(index)
	crossed := (base & 0xFF00) != (addr & 0xFF00)
	if crossed {
		c.read((base & 0xFF00) | (addr & 0xFF))
	}
	return addr, crossed
}

// getOperand resolves and reads the operand byte for an addressing mode.
func (c *CPU) getOperand(mode AddressingMode) (uint8, bool) {
	if mode == AddrAccumulator {
		return c.A, false
	}
	addr, pageCrossed := c.getOperandAddress(mode)
	return c.read(addr), pageCrossed
}
