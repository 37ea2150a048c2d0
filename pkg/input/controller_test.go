package input

import (
	"testing"
)

func TestStrobeLatchAndShift(t *testing.T) {
	c := New()

	c.SetButton(0, 0, true) // A
	c.SetButton(0, 3, true) // Start

	// Latch on the strobe high-to-low transition.
	c.Write(1)
	c.Write(0)

	expected := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, U, D, L, R
	for i, want := range expected {
		if got := c.ReadPort(0); got != want {
			t.Errorf("read %d: expected %d, got %d", i, want, got)
		}
	}

	// Beyond the eight real bits the serial line reads back as 1.
	for i := 0; i < 4; i++ {
		if got := c.ReadPort(0); got != 1 {
			t.Errorf("post-shift read %d: expected 1, got %d", i, got)
		}
	}
}

func TestStrobeHighReturnsA(t *testing.T) {
	c := New()
	c.Write(1)

	c.SetButton(0, 0, true)
	for i := 0; i < 3; i++ {
		if got := c.ReadPort(0); got != 1 {
			t.Errorf("strobe-high read %d: expected A=1, got %d", i, got)
		}
	}

	c.SetButton(0, 0, false)
	if got := c.ReadPort(0); got != 0 {
		t.Errorf("strobe-high read after release: expected 0, got %d", got)
	}
}

func TestPortsAreIndependent(t *testing.T) {
	c := New()
	c.SetButton(0, 0, true) // port 0: A
	c.SetButton(1, 1, true) // port 1: B

	c.Write(1)
	c.Write(0)

	if got := c.ReadPort(0); got != 1 {
		t.Errorf("port 0 bit 0: expected 1, got %d", got)
	}
	if got := c.ReadPort(1); got != 0 {
		t.Errorf("port 1 bit 0: expected 0, got %d", got)
	}
	if got := c.ReadPort(1); got != 1 {
		t.Errorf("port 1 bit 1: expected 1, got %d", got)
	}
}

func TestButtonChangesAfterLatchInvisible(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)

	// With strobe low, pressing a button must not disturb the latched
	// snapshot being shifted out.
	c.SetButton(0, 0, true)
	if got := c.ReadPort(0); got != 0 {
		t.Errorf("expected latched 0 for A, got %d", got)
	}
}
