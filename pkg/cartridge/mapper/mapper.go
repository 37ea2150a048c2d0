package mapper

import "fmt"

// Mapper interface for different mappers
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Step()
	IsIRQPending() bool
	ClearIRQ()
}

// CartridgeData contains cartridge data for mappers. Submapper is the
// NES 2.0 submapper number (0 for plain iNES images); MMC3 reads it at
// construction to select the MMC6 and rev A variants. The other mappers
// ignore it.
type CartridgeData struct {
	PRGROM    []uint8
	CHRROM    []uint8
	PRGRAM    []uint8
	CHRRAM    []uint8
	Submapper uint8
}

// NewMapper creates a new mapper instance
func NewMapper(mapperNumber uint8, data *CartridgeData) (Mapper, error) {
	switch mapperNumber {
	case 0:
		return NewMapper0(data), nil
	case 1:
		return NewMapper1(data), nil
	case 2:
		return NewMapper2(data), nil
	case 3:
		return NewMapper3(data), nil
	case 4:
		return NewMapper4(data), nil
	case 5:
		return NewMapper5(data), nil
	case 7:
		return NewMapper7(data), nil
	case 9:
		return NewMapper9(data), nil
	case 21, 22, 23, 25:
		return NewMapperVRC(data), nil
	case 66:
		return NewMapper66(data), nil
	case 69:
		return NewMapper69(data), nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %d", mapperNumber)
	}
}