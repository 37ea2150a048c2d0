package mapper

import (
	"testing"
)

// TestMapper66_GNROM tests the GNROM mapper (mapper 66)
func TestMapper66_GNROM(t *testing.T) {
	prgROM := make([]uint8, 4*0x8000)
	for i := range prgROM {
		prgROM[i] = uint8(i / 0x8000)
	}
	chrROM := make([]uint8, 4*0x2000)
	for i := range chrROM {
		chrROM[i] = uint8(0x10 + i/0x2000)
	}

	t.Run("Combined_Bank_Register", func(t *testing.T) {
		mapper := NewMapper66(&CartridgeData{
			PRGROM: prgROM,
			CHRROM: chrROM,
		})

		// One write drives both halves: PRG from bits 4-5, CHR from 0-1.
		mapper.WritePRG(0x8000, 0x21) // PRG bank 2, CHR bank 1
		if got := mapper.ReadPRG(0x8000); got != 2 {
			t.Errorf("expected PRG bank 2, got %d", got)
		}
		if got := mapper.ReadCHR(0x0000); got != 0x11 {
			t.Errorf("expected CHR bank 1 ($11), got $%02X", got)
		}

		mapper.WritePRG(0xFFFF, 0x33) // register decodes anywhere in the window
		if got := mapper.ReadPRG(0xC000); got != 3 {
			t.Errorf("expected PRG bank 3 after $FFFF write, got %d", got)
		}
		if got := mapper.ReadCHR(0x1FFF); got != 0x13 {
			t.Errorf("expected CHR bank 3 ($13), got $%02X", got)
		}
	})

	t.Run("Bank_Bits_Masked", func(t *testing.T) {
		mapper := NewMapper66(&CartridgeData{
			PRGROM: prgROM,
			CHRROM: chrROM,
		})

		// Bits outside the two 2-bit fields are ignored.
		mapper.WritePRG(0x8000, 0xCC)
		if got := mapper.ReadPRG(0x8000); got != 0 {
			t.Errorf("PRG field is bits 4-5 only: expected bank 0, got %d", got)
		}
		if got := mapper.ReadCHR(0x0000); got != 0x10 {
			t.Errorf("CHR field is bits 0-1 only: expected bank 0 ($10), got $%02X", got)
		}
	})

	t.Run("CHR_ROM_Read_Only", func(t *testing.T) {
		mapper := NewMapper66(&CartridgeData{
			PRGROM: prgROM,
			CHRROM: chrROM,
		})

		before := mapper.ReadCHR(0x0100)
		mapper.WriteCHR(0x0100, ^before)
		if got := mapper.ReadCHR(0x0100); got != before {
			t.Errorf("CHR ROM must be read-only: was $%02X, now $%02X", before, got)
		}
	})

	t.Run("Sub_Window_Addresses_Ignored", func(t *testing.T) {
		mapper := NewMapper66(&CartridgeData{
			PRGROM: prgROM,
			CHRROM: chrROM,
		})

		mapper.WritePRG(0x6000, 0x30) // below the register window
		if got := mapper.ReadPRG(0x8000); got != 0 {
			t.Errorf("writes below $8000 must not switch banks, got %d", got)
		}
		if got := mapper.ReadPRG(0x6000); got != 0 {
			t.Errorf("GNROM has no $6000 RAM: expected 0, got %d", got)
		}
	})
}
