package cpu

// The interpreter is table-driven: opTable maps each decoded opcode to
// its operation and addressing mode. The set of opcodes is closed, so
// the table is built once at package init; anything left unmapped (the
// KIL/JAM column and $8B, $93, $9B, $9C, $9E, $9F, $BB) halts the CPU.

type opEntry struct {
	fn    func(*CPU, AddressingMode) int
	mode  AddressingMode
	valid bool
}

var opTable [256]opEntry

// executeInstruction runs the already-fetched opcode and returns its
// cycle cost, including any page-cross or branch penalties.
func (c *CPU) executeInstruction(opcode uint8) int {
	entry := opTable[opcode]
	if !entry.valid {
		// Halt deterministically so the caller can surface the failure
		// instead of running off into a corrupted instruction stream.
		c.Halted = true
		c.HaltErr = &UnknownOpcodeError{PC: c.PC - 1, Opcode: opcode}
		c.PC--
		return 0
	}
	return entry.fn(c, entry.mode)
}

func register(fn func(*CPU, AddressingMode) int, modes map[uint8]AddressingMode) {
	for opcode, mode := range modes {
		opTable[opcode] = opEntry{fn: fn, mode: mode, valid: true}
	}
}

func init() {
	register((*CPU).opLDA, map[uint8]AddressingMode{
		0xA9: AddrImmediate, 0xA5: AddrZeroPage, 0xB5: AddrZeroPageX,
		0xAD: AddrAbsolute, 0xBD: AddrAbsoluteX, 0xB9: AddrAbsoluteY,
		0xA1: AddrIndexedIndirect, 0xB1: AddrIndirectIndexed,
	})
	register((*CPU).opLDX, map[uint8]AddressingMode{
		0xA2: AddrImmediate, 0xA6: AddrZeroPage, 0xB6: AddrZeroPageY,
		0xAE: AddrAbsolute, 0xBE: AddrAbsoluteY,
	})
	register((*CPU).opLDY, map[uint8]AddressingMode{
		0xA0: AddrImmediate, 0xA4: AddrZeroPage, 0xB4: AddrZeroPageX,
		0xAC: AddrAbsolute, 0xBC: AddrAbsoluteX,
	})

	register((*CPU).opSTA, map[uint8]AddressingMode{
		0x85: AddrZeroPage, 0x95: AddrZeroPageX, 0x8D: AddrAbsolute,
		0x9D: AddrAbsoluteX, 0x99: AddrAbsoluteY,
		0x81: AddrIndexedIndirect, 0x91: AddrIndirectIndexed,
	})
	register((*CPU).opSTX, map[uint8]AddressingMode{
		0x86: AddrZeroPage, 0x96: AddrZeroPageY, 0x8E: AddrAbsolute,
	})
	register((*CPU).opSTY, map[uint8]AddressingMode{
		0x84: AddrZeroPage, 0x94: AddrZeroPageX, 0x8C: AddrAbsolute,
	})

	register((*CPU).opADC, map[uint8]AddressingMode{
		0x69: AddrImmediate, 0x65: AddrZeroPage, 0x75: AddrZeroPageX,
		0x6D: AddrAbsolute, 0x7D: AddrAbsoluteX, 0x79: AddrAbsoluteY,
		0x61: AddrIndexedIndirect, 0x71: AddrIndirectIndexed,
	})
	register((*CPU).opSBC, map[uint8]AddressingMode{
		0xE9: AddrImmediate, 0xE5: AddrZeroPage, 0xF5: AddrZeroPageX,
		0xED: AddrAbsolute, 0xFD: AddrAbsoluteX, 0xF9: AddrAbsoluteY,
		0xE1: AddrIndexedIndirect, 0xF1: AddrIndirectIndexed,
		0xEB: AddrImmediate, // undocumented alias of $E9
	})

	register((*CPU).opCMP, map[uint8]AddressingMode{
		0xC9: AddrImmediate, 0xC5: AddrZeroPage, 0xD5: AddrZeroPageX,
		0xCD: AddrAbsolute, 0xDD: AddrAbsoluteX, 0xD9: AddrAbsoluteY,
		0xC1: AddrIndexedIndirect, 0xD1: AddrIndirectIndexed,
	})
	register((*CPU).opCPX, map[uint8]AddressingMode{
		0xE0: AddrImmediate, 0xE4: AddrZeroPage, 0xEC: AddrAbsolute,
	})
	register((*CPU).opCPY, map[uint8]AddressingMode{
		0xC0: AddrImmediate, 0xC4: AddrZeroPage, 0xCC: AddrAbsolute,
	})

	register((*CPU).opAND, map[uint8]AddressingMode{
		0x29: AddrImmediate, 0x25: AddrZeroPage, 0x35: AddrZeroPageX,
		0x2D: AddrAbsolute, 0x3D: AddrAbsoluteX, 0x39: AddrAbsoluteY,
		0x21: AddrIndexedIndirect, 0x31: AddrIndirectIndexed,
	})
	register((*CPU).opORA, map[uint8]AddressingMode{
		0x09: AddrImmediate, 0x05: AddrZeroPage, 0x15: AddrZeroPageX,
		0x0D: AddrAbsolute, 0x1D: AddrAbsoluteX, 0x19: AddrAbsoluteY,
		0x01: AddrIndexedIndirect, 0x11: AddrIndirectIndexed,
	})
	register((*CPU).opEOR, map[uint8]AddressingMode{
		0x49: AddrImmediate, 0x45: AddrZeroPage, 0x55: AddrZeroPageX,
		0x4D: AddrAbsolute, 0x5D: AddrAbsoluteX, 0x59: AddrAbsoluteY,
		0x41: AddrIndexedIndirect, 0x51: AddrIndirectIndexed,
	})
	register((*CPU).opBIT, map[uint8]AddressingMode{
		0x24: AddrZeroPage, 0x2C: AddrAbsolute,
	})

	register((*CPU).opASL, map[uint8]AddressingMode{
		0x0A: AddrAccumulator, 0x06: AddrZeroPage, 0x16: AddrZeroPageX,
		0x0E: AddrAbsolute, 0x1E: AddrAbsoluteX,
	})
	register((*CPU).opLSR, map[uint8]AddressingMode{
		0x4A: AddrAccumulator, 0x46: AddrZeroPage, 0x56: AddrZeroPageX,
		0x4E: AddrAbsolute, 0x5E: AddrAbsoluteX,
	})
	register((*CPU).opROL, map[uint8]AddressingMode{
		0x2A: AddrAccumulator, 0x26: AddrZeroPage, 0x36: AddrZeroPageX,
		0x2E: AddrAbsolute, 0x3E: AddrAbsoluteX,
	})
	register((*CPU).opROR, map[uint8]AddressingMode{
		0x6A: AddrAccumulator, 0x66: AddrZeroPage, 0x76: AddrZeroPageX,
		0x6E: AddrAbsolute, 0x7E: AddrAbsoluteX,
	})

	register((*CPU).opINC, map[uint8]AddressingMode{
		0xE6: AddrZeroPage, 0xF6: AddrZeroPageX, 0xEE: AddrAbsolute, 0xFE: AddrAbsoluteX,
	})
	register((*CPU).opDEC, map[uint8]AddressingMode{
		0xC6: AddrZeroPage, 0xD6: AddrZeroPageX, 0xCE: AddrAbsolute, 0xDE: AddrAbsoluteX,
	})

	implied := func(fn func(*CPU, AddressingMode) int, opcodes ...uint8) {
		modes := make(map[uint8]AddressingMode, len(opcodes))
		for _, op := range opcodes {
			modes[op] = AddrImplied
		}
		register(fn, modes)
	}

	implied((*CPU).opINX, 0xE8)
	implied((*CPU).opDEX, 0xCA)
	implied((*CPU).opINY, 0xC8)
	implied((*CPU).opDEY, 0x88)

	implied((*CPU).opTAX, 0xAA)
	implied((*CPU).opTXA, 0x8A)
	implied((*CPU).opTAY, 0xA8)
	implied((*CPU).opTYA, 0x98)
	implied((*CPU).opTXS, 0x9A)
	implied((*CPU).opTSX, 0xBA)

	implied((*CPU).opCLC, 0x18)
	implied((*CPU).opSEC, 0x38)
	implied((*CPU).opCLI, 0x58)
	implied((*CPU).opSEI, 0x78)
	implied((*CPU).opCLV, 0xB8)
	implied((*CPU).opCLD, 0xD8)
	implied((*CPU).opSED, 0xF8)

	implied((*CPU).opPHA, 0x48)
	implied((*CPU).opPLA, 0x68)
	implied((*CPU).opPHP, 0x08)
	implied((*CPU).opPLP, 0x28)

	implied((*CPU).opBPL, 0x10)
	implied((*CPU).opBMI, 0x30)
	implied((*CPU).opBVC, 0x50)
	implied((*CPU).opBVS, 0x70)
	implied((*CPU).opBCC, 0x90)
	implied((*CPU).opBCS, 0xB0)
	implied((*CPU).opBNE, 0xD0)
	implied((*CPU).opBEQ, 0xF0)

	register((*CPU).opJMP, map[uint8]AddressingMode{
		0x4C: AddrAbsolute, 0x6C: AddrIndirect,
	})
	implied((*CPU).opJSR, 0x20)
	implied((*CPU).opRTS, 0x60)
	implied((*CPU).opRTI, 0x40)
	implied((*CPU).opBRK, 0x00)

	implied((*CPU).opNOP, 0xEA)
	// The undocumented single-byte NOPs behave like the official one.
	implied((*CPU).opNOP, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA)
	// Multi-byte NOPs consume their operand bytes without reading memory;
	// the abs,X family is costed flat (no cross penalty modeled).
	register((*CPU).opWideNOP, map[uint8]AddressingMode{
		0x80: AddrImmediate, 0x82: AddrImmediate, 0x89: AddrImmediate,
		0xC2: AddrImmediate, 0xE2: AddrImmediate,
		0x04: AddrZeroPage, 0x44: AddrZeroPage, 0x64: AddrZeroPage,
		0x14: AddrZeroPageX, 0x34: AddrZeroPageX, 0x54: AddrZeroPageX,
		0x74: AddrZeroPageX, 0xD4: AddrZeroPageX, 0xF4: AddrZeroPageX,
		0x0C: AddrAbsolute,
		0x1C: AddrAbsoluteX, 0x3C: AddrAbsoluteX, 0x5C: AddrAbsoluteX,
		0x7C: AddrAbsoluteX, 0xDC: AddrAbsoluteX, 0xFC: AddrAbsoluteX,
	})

	// Undocumented combination opcodes used by compatibility test ROMs.
	register((*CPU).opLAX, map[uint8]AddressingMode{
		0xAF: AddrAbsolute, 0xBF: AddrAbsoluteY, 0xA7: AddrZeroPage,
		0xB7: AddrZeroPageY, 0xA3: AddrIndexedIndirect, 0xB3: AddrIndirectIndexed,
	})
	register((*CPU).opSAX, map[uint8]AddressingMode{
		0x8F: AddrAbsolute, 0x87: AddrZeroPage, 0x97: AddrZeroPageY,
		0x83: AddrIndexedIndirect,
	})
	register((*CPU).opDCP, map[uint8]AddressingMode{
		0xCF: AddrAbsolute, 0xDF: AddrAbsoluteX, 0xDB: AddrAbsoluteY,
		0xC7: AddrZeroPage, 0xD7: AddrZeroPageX,
		0xC3: AddrIndexedIndirect, 0xD3: AddrIndirectIndexed,
	})
	register((*CPU).opISB, map[uint8]AddressingMode{
		0xEF: AddrAbsolute, 0xFF: AddrAbsoluteX, 0xFB: AddrAbsoluteY,
		0xE7: AddrZeroPage, 0xF7: AddrZeroPageX,
		0xE3: AddrIndexedIndirect, 0xF3: AddrIndirectIndexed,
	})
	register((*CPU).opSLO, map[uint8]AddressingMode{
		0x0F: AddrAbsolute, 0x1F: AddrAbsoluteX, 0x1B: AddrAbsoluteY,
		0x07: AddrZeroPage, 0x17: AddrZeroPageX,
		0x03: AddrIndexedIndirect, 0x13: AddrIndirectIndexed,
	})
	register((*CPU).opRLA, map[uint8]AddressingMode{
		0x2F: AddrAbsolute, 0x3F: AddrAbsoluteX, 0x3B: AddrAbsoluteY,
		0x27: AddrZeroPage, 0x37: AddrZeroPageX,
		0x23: AddrIndexedIndirect, 0x33: AddrIndirectIndexed,
	})
	register((*CPU).opSRE, map[uint8]AddressingMode{
		0x4F: AddrAbsolute, 0x5F: AddrAbsoluteX, 0x5B: AddrAbsoluteY,
		0x47: AddrZeroPage, 0x57: AddrZeroPageX,
		0x43: AddrIndexedIndirect, 0x53: AddrIndirectIndexed,
	})
	register((*CPU).opRRA, map[uint8]AddressingMode{
		0x6F: AddrAbsolute, 0x7F: AddrAbsoluteX, 0x7B: AddrAbsoluteY,
		0x67: AddrZeroPage, 0x77: AddrZeroPageX,
		0x63: AddrIndexedIndirect, 0x73: AddrIndirectIndexed,
	})
	implied((*CPU).opAAC, 0x0B, 0x2B)
	implied((*CPU).opASR, 0x4B)
	implied((*CPU).opARR, 0x6B)
	implied((*CPU).opATX, 0xAB)
	implied((*CPU).opAXS, 0xCB)
}

// Cycle tables. Read-class instructions charge one extra cycle when
// indexing crosses a page; stores and read-modify-write instructions
// always pay the worst case, so their tables are flat.

func readCycles(mode AddressingMode, pageCrossed bool) int {
	switch mode {
	case AddrImmediate:
		return 2
	case AddrZeroPage:
		return 3
	case AddrZeroPageX, AddrZeroPageY:
		return 4
	case AddrAbsolute:
		return 4
	case AddrAbsoluteX, AddrAbsoluteY:
		if pageCrossed {
			return 5
		}
		return 4
	case AddrIndexedIndirect:
		return 6
	case AddrIndirectIndexed:
		if pageCrossed {
			return 6
		}
		return 5
	}
	return 2
}

func storeCycles(mode AddressingMode) int {
	switch mode {
	case AddrZeroPage:
		return 3
	case AddrZeroPageX, AddrZeroPageY:
		return 4
	case AddrAbsolute:
		return 4
	case AddrAbsoluteX, AddrAbsoluteY:
		return 5
	case AddrIndexedIndirect, AddrIndirectIndexed:
		return 6
	}
	return 3
}

func rmwCycles(mode AddressingMode) int {
	switch mode {
	case AddrZeroPage:
		return 5
	case AddrZeroPageX:
		return 6
	case AddrAbsolute:
		return 6
	case AddrAbsoluteX:
		return 7
	}
	return 2
}

// comboCycles covers the undocumented read-modify-write-plus-ALU ops,
// which extend the official RMW costs with abs,Y and indirect modes.
func comboCycles(mode AddressingMode) int {
	switch mode {
	case AddrZeroPage:
		return 5
	case AddrZeroPageX:
		return 6
	case AddrAbsolute:
		return 6
	case AddrAbsoluteX, AddrAbsoluteY:
		return 7
	case AddrIndexedIndirect, AddrIndirectIndexed:
		return 8
	}
	return 2
}

// setZN updates the zero and negative flags from a result byte.
func (c *CPU) setZN(value uint8) {
	c.setFlag(FlagZero, value == 0)
	c.setFlag(FlagNegative, value&0x80 != 0)
}

// addToA adds value and the carry into A, updating C, V, Z, N. The
// decimal flag is never consulted: this CPU's BCD unit is disconnected,
// so arithmetic is binary regardless of D. V follows the sign rule from
// the data sheet: set when both inputs share a sign the result lost.
func (c *CPU) addToA(value uint8) {
	carry := uint16(0)
	if c.getFlag(FlagCarry) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(value) + carry

	c.setFlag(FlagCarry, sum > 0xFF)
	c.setFlag(FlagOverflow, (^(c.A^value)&(c.A^uint8(sum)))&0x80 != 0)

	c.A = uint8(sum)
	c.setZN(c.A)
}

// subFromA subtracts value from A with borrow. On this CPU SBC is
// literally ADC of the one's complement, flags included.
func (c *CPU) subFromA(value uint8) {
	c.addToA(^value)
}

// compare sets C, Z, N from reg - value without storing the result.
func (c *CPU) compare(reg, value uint8) {
	c.setFlag(FlagCarry, reg >= value)
	c.setZN(reg - value)
}

// Loads and stores

func (c *CPU) opLDA(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.A = value
	c.setZN(c.A)
	return readCycles(mode, crossed)
}

func (c *CPU) opLDX(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.X = value
	c.setZN(c.X)
	return readCycles(mode, crossed)
}

func (c *CPU) opLDY(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.Y = value
	c.setZN(c.Y)
	return readCycles(mode, crossed)
}

func (c *CPU) opSTA(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.A)
	return storeCycles(mode)
}

func (c *CPU) opSTX(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.X)
	return storeCycles(mode)
}

func (c *CPU) opSTY(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.Y)
	return storeCycles(mode)
}

// Arithmetic and comparison

func (c *CPU) opADC(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.addToA(value)
	return readCycles(mode, crossed)
}

func (c *CPU) opSBC(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.subFromA(value)
	return readCycles(mode, crossed)
}

func (c *CPU) opCMP(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.compare(c.A, value)
	return readCycles(mode, crossed)
}

func (c *CPU) opCPX(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.compare(c.X, value)
	return readCycles(mode, crossed)
}

func (c *CPU) opCPY(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.compare(c.Y, value)
	return readCycles(mode, crossed)
}

// Bitwise operations

func (c *CPU) opAND(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.A &= value
	c.setZN(c.A)
	return readCycles(mode, crossed)
}

func (c *CPU) opORA(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.A |= value
	c.setZN(c.A)
	return readCycles(mode, crossed)
}

func (c *CPU) opEOR(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.A ^= value
	c.setZN(c.A)
	return readCycles(mode, crossed)
}

// opBIT tests A against memory without keeping the result: Z from the
// AND, N and V straight from bits 7 and 6 of the operand.
func (c *CPU) opBIT(mode AddressingMode) int {
	value, _ := c.getOperand(mode)
	c.setFlag(FlagZero, c.A&value == 0)
	c.setFlag(FlagNegative, value&0x80 != 0)
	c.setFlag(FlagOverflow, value&0x40 != 0)
	return readCycles(mode, false)
}

// Shifts and rotates. Each works on the accumulator or read-modify-
// writes a memory operand, with the outgoing bit landing in carry.

func (c *CPU) opASL(mode AddressingMode) int {
	if mode == AddrAccumulator {
		c.setFlag(FlagCarry, c.A&0x80 != 0)
		c.A <<= 1
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x80 != 0)
	value <<= 1
	c.setZN(value)
	c.write(addr, value)
	return rmwCycles(mode)
}

func (c *CPU) opLSR(mode AddressingMode) int {
	if mode == AddrAccumulator {
		c.setFlag(FlagCarry, c.A&0x01 != 0)
		c.A >>= 1
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x01 != 0)
	value >>= 1
	c.setZN(value)
	c.write(addr, value)
	return rmwCycles(mode)
}

func (c *CPU) rotateLeft(value uint8) uint8 {
	in := uint8(0)
	if c.getFlag(FlagCarry) {
		in = 1
	}
	c.setFlag(FlagCarry, value&0x80 != 0)
	return value<<1 | in
}

func (c *CPU) rotateRight(value uint8) uint8 {
	in := uint8(0)
	if c.getFlag(FlagCarry) {
		in = 0x80
	}
	c.setFlag(FlagCarry, value&0x01 != 0)
	return value>>1 | in
}

func (c *CPU) opROL(mode AddressingMode) int {
	if mode == AddrAccumulator {
		c.A = c.rotateLeft(c.A)
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.rotateLeft(c.read(addr))
	c.setZN(value)
	c.write(addr, value)
	return rmwCycles(mode)
}

func (c *CPU) opROR(mode AddressingMode) int {
	if mode == AddrAccumulator {
		c.A = c.rotateRight(c.A)
		c.setZN(c.A)
		return 2
	}
	addr, _ := c.getOperandAddress(mode)
	value := c.rotateRight(c.read(addr))
	c.setZN(value)
	c.write(addr, value)
	return rmwCycles(mode)
}

// Increments and decrements

func (c *CPU) opINC(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr) + 1
	c.setZN(value)
	c.write(addr, value)
	return rmwCycles(mode)
}

func (c *CPU) opDEC(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr) - 1
	c.setZN(value)
	c.write(addr, value)
	return rmwCycles(mode)
}

func (c *CPU) opINX(AddressingMode) int { c.X++; c.setZN(c.X); return 2 }
func (c *CPU) opDEX(AddressingMode) int { c.X--; c.setZN(c.X); return 2 }
func (c *CPU) opINY(AddressingMode) int { c.Y++; c.setZN(c.Y); return 2 }
func (c *CPU) opDEY(AddressingMode) int { c.Y--; c.setZN(c.Y); return 2 }

// Register transfers. TXS is the one transfer that touches no flags.

func (c *CPU) opTAX(AddressingMode) int { c.X = c.A; c.setZN(c.X); return 2 }
func (c *CPU) opTXA(AddressingMode) int { c.A = c.X; c.setZN(c.A); return 2 }
func (c *CPU) opTAY(AddressingMode) int { c.Y = c.A; c.setZN(c.Y); return 2 }
func (c *CPU) opTYA(AddressingMode) int { c.A = c.Y; c.setZN(c.A); return 2 }
func (c *CPU) opTXS(AddressingMode) int { c.SP = c.X; return 2 }
func (c *CPU) opTSX(AddressingMode) int { c.X = c.SP; c.setZN(c.X); return 2 }

// Flag manipulation

func (c *CPU) opCLC(AddressingMode) int { c.setFlag(FlagCarry, false); return 2 }
func (c *CPU) opSEC(AddressingMode) int { c.setFlag(FlagCarry, true); return 2 }
func (c *CPU) opCLI(AddressingMode) int { c.setFlag(FlagInterrupt, false); return 2 }
func (c *CPU) opSEI(AddressingMode) int { c.setFlag(FlagInterrupt, true); return 2 }
func (c *CPU) opCLV(AddressingMode) int { c.setFlag(FlagOverflow, false); return 2 }
func (c *CPU) opCLD(AddressingMode) int { c.setFlag(FlagDecimal, false); return 2 }
func (c *CPU) opSED(AddressingMode) int { c.setFlag(FlagDecimal, true); return 2 }

// Stack operations. PHP pushes with B set; PLP ignores the pushed B and
// keeps the unused bit wired high.

func (c *CPU) opPHA(AddressingMode) int {
	c.push(c.A)
	return 3
}

func (c *CPU) opPLA(AddressingMode) int {
	c.A = c.pop()
	c.setZN(c.A)
	return 4
}

func (c *CPU) opPHP(AddressingMode) int {
	c.push(c.P | FlagBreak)
	return 3
}

func (c *CPU) opPLP(AddressingMode) int {
	c.P = c.pop()&^FlagBreak | FlagUnused
	return 4
}

// Branches: 2 cycles untaken, 3 taken, 4 when the target lands on a
// different page than the instruction's end.

func (c *CPU) branchIf(taken bool) int {
	offset := int8(c.read(c.PC))
	c.PC++
	if !taken {
		return 2
	}
	from := c.PC
	c.PC = uint16(int32(from) + int32(offset))
	if from&0xFF00 != c.PC&0xFF00 {
		return 4
	}
	return 3
}

func (c *CPU) opBPL(AddressingMode) int { return c.branchIf(!c.getFlag(FlagNegative)) }
func (c *CPU) opBMI(AddressingMode) int { return c.branchIf(c.getFlag(FlagNegative)) }
func (c *CPU) opBVC(AddressingMode) int { return c.branchIf(!c.getFlag(FlagOverflow)) }
func (c *CPU) opBVS(AddressingMode) int { return c.branchIf(c.getFlag(FlagOverflow)) }
func (c *CPU) opBCC(AddressingMode) int { return c.branchIf(!c.getFlag(FlagCarry)) }
func (c *CPU) opBCS(AddressingMode) int { return c.branchIf(c.getFlag(FlagCarry)) }
func (c *CPU) opBNE(AddressingMode) int { return c.branchIf(!c.getFlag(FlagZero)) }
func (c *CPU) opBEQ(AddressingMode) int { return c.branchIf(c.getFlag(FlagZero)) }

// Jumps, subroutines, and interrupt returns

func (c *CPU) opJMP(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.PC = addr
	if mode == AddrIndirect {
		return 5
	}
	return 3
}

// opJSR pushes the address of its own last byte; RTS compensates by
// adding one after the pull.
func (c *CPU) opJSR(AddressingMode) int {
	lo := c.read(c.PC)
	c.PC++
	hi := c.read(c.PC)
	c.push16(c.PC)
	c.PC = uint16(hi)<<8 | uint16(lo)
	return 6
}

func (c *CPU) opRTS(AddressingMode) int {
	c.PC = c.pop16() + 1
	return 6
}

func (c *CPU) opRTI(AddressingMode) int {
	c.P = c.pop()&^FlagBreak | FlagUnused
	c.PC = c.pop16()
	return 6
}

// opBRK is the software interrupt: the byte after the opcode is padding,
// the pushed status has B set, and execution continues at the IRQ vector
// with further IRQs masked.
func (c *CPU) opBRK(AddressingMode) int {
	c.PC++
	c.push16(c.PC)
	c.push(c.P | FlagBreak)
	c.setFlag(FlagInterrupt, true)
	c.PC = c.read16(0xFFFE)
	return 7
}

func (c *CPU) opNOP(AddressingMode) int {
	return 2
}

// opWideNOP covers the multi-byte undocumented NOPs: the operand bytes
// are skipped without a memory access.
func (c *CPU) opWideNOP(mode AddressingMode) int {
	switch mode {
	case AddrImmediate:
		c.PC++
		return 2
	case AddrZeroPage:
		c.PC++
		return 3
	case AddrZeroPageX:
		c.PC++
		return 4
	case AddrAbsolute, AddrAbsoluteX:
		c.PC += 2
		return 4
	}
	return 2
}

// Undocumented combination opcodes. The RMW+ALU family (SLO/RLA/SRE/
// RRA/DCP/ISB) writes the modified operand back and then folds it into
// A exactly as the corresponding official pair would.

func (c *CPU) opLAX(mode AddressingMode) int {
	value, crossed := c.getOperand(mode)
	c.A = value
	c.X = value
	c.setZN(value)
	return readCycles(mode, crossed)
}

func (c *CPU) opSAX(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	c.write(addr, c.A&c.X)
	return storeCycles(mode)
}

func (c *CPU) opDCP(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr) - 1
	c.write(addr, value)
	c.compare(c.A, value)
	return comboCycles(mode)
}

func (c *CPU) opISB(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr) + 1
	c.write(addr, value)
	c.subFromA(value)
	return comboCycles(mode)
}

func (c *CPU) opSLO(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x80 != 0)
	value <<= 1
	c.write(addr, value)
	c.A |= value
	c.setZN(c.A)
	return comboCycles(mode)
}

func (c *CPU) opRLA(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.rotateLeft(c.read(addr))
	c.write(addr, value)
	c.A &= value
	c.setZN(c.A)
	return comboCycles(mode)
}

func (c *CPU) opSRE(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.read(addr)
	c.setFlag(FlagCarry, value&0x01 != 0)
	value >>= 1
	c.write(addr, value)
	c.A ^= value
	c.setZN(c.A)
	return comboCycles(mode)
}

func (c *CPU) opRRA(mode AddressingMode) int {
	addr, _ := c.getOperandAddress(mode)
	value := c.rotateRight(c.read(addr))
	c.write(addr, value)
	c.addToA(value)
	return comboCycles(mode)
}

// Immediate-mode undocumented opcodes

// opAAC ands the immediate into A and copies the result's sign to carry.
func (c *CPU) opAAC(AddressingMode) int {
	c.A &= c.read(c.PC)
	c.PC++
	c.setZN(c.A)
	c.setFlag(FlagCarry, c.A&0x80 != 0)
	return 2
}

// opASR ands the immediate into A, then shifts right.
func (c *CPU) opASR(AddressingMode) int {
	c.A &= c.read(c.PC)
	c.PC++
	c.setFlag(FlagCarry, c.A&0x01 != 0)
	c.A >>= 1
	c.setZN(c.A)
	return 2
}

// opARR ands then rotates right, with the chip's odd flag wiring: carry
// comes from bit 6 of the rotated result and V from bit 6 xor bit 5.
func (c *CPU) opARR(AddressingMode) int {
	c.A &= c.read(c.PC)
	c.PC++
	c.A = c.rotateRight(c.A)
	c.setZN(c.A)
	c.setFlag(FlagOverflow, (c.A>>6)&1 != (c.A>>5)&1)
	c.setFlag(FlagCarry, c.A&0x40 != 0)
	return 2
}

// opATX loads the immediate into both A and X.
func (c *CPU) opATX(AddressingMode) int {
	value := c.read(c.PC)
	c.PC++
	c.A = value
	c.X = value
	c.setZN(c.A)
	return 2
}

// opAXS sets X to (A AND X) minus the immediate, without borrow.
func (c *CPU) opAXS(AddressingMode) int {
	value := c.read(c.PC)
	c.PC++
	base := c.A & c.X
	c.X = base - value
	c.setFlag(FlagCarry, base >= value)
	c.setZN(c.X)
	return 2
}
