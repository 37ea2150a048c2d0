package mapper

// Shared ROM images for the mapper tests. Each is filled with a
// low-byte-of-address ramp so a read can be traced back to the offset it
// came from, and the PRG images carry a reset vector pointing at $8000.
var (
	testPRGROM16KB = makeTestROM(16 * 1024)
	testPRGROM32KB = makeTestROM(32 * 1024)
	testCHRROM8KB  = makeTestROM(8 * 1024)
	testCHRROM32KB = makeTestROM(32 * 1024)
)

func makeTestROM(size int) []uint8 {
	rom := make([]uint8, size)
	for i := range rom {
		rom[i] = uint8(i & 0xFF)
	}
	return rom
}

func init() {
	// Reset vectors land in the last 6 bytes of the image, which every
	// mapper fixes into $FFFA-$FFFF.
	testPRGROM16KB[0x3FFC] = 0x00
	testPRGROM16KB[0x3FFD] = 0x80
	testPRGROM32KB[0x7FFC] = 0x00
	testPRGROM32KB[0x7FFD] = 0x80
}
