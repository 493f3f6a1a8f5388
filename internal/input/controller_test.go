package input

import "testing"

func TestIdleControllerReadsAllOnes(t *testing.T) {
	c := New()
	c.Latch()
	for i := 0; i < 16; i++ {
		if got := c.ReadBit(); got != 1 {
			t.Fatalf("bit %d = %d, want 1 (idle, active-low)", i, got)
		}
	}
}

func TestButtonPressClearsBitMSBFirst(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true) // bit 15, the first bit drained
	c.Latch()
	if got := c.ReadBit(); got != 0 {
		t.Fatalf("first drained bit = %d, want 0 (B pressed, active-low)", got)
	}
	for i := 1; i < 16; i++ {
		if got := c.ReadBit(); got != 1 {
			t.Fatalf("bit %d = %d, want 1", i, got)
		}
	}
}

func TestReadPastSixteenBitsReturnsOne(t *testing.T) {
	c := New()
	c.Latch()
	for i := 0; i < 16; i++ {
		c.ReadBit()
	}
	for i := 0; i < 4; i++ {
		if got := c.ReadBit(); got != 1 {
			t.Fatalf("overflow read = %d, want 1", got)
		}
	}
}

func TestLatchResetsShiftIndex(t *testing.T) {
	c := New()
	c.Latch()
	c.ReadBit()
	c.ReadBit()
	c.Latch()
	if c.shiftPos != 0 {
		t.Fatalf("shiftPos = %d after relatch, want 0", c.shiftPos)
	}
}

func TestPairStrobeHighRelatchesEveryRead(t *testing.T) {
	pr := NewPair()
	pr.P1.SetButton(ButtonB, true)
	pr.WriteStrobe(0x01) // strobe high

	if got := pr.ReadPort1(); got != 0 {
		t.Fatalf("first read with strobe held high = %d, want 0", got)
	}
	if got := pr.ReadPort1(); got != 0 {
		t.Fatalf("second read with strobe held high = %d, want 0 (re-latches every read)", got)
	}
}

func TestPairStrobeFallingEdgeLatchesOnce(t *testing.T) {
	pr := NewPair()
	pr.WriteStrobe(0x01)
	pr.P1.SetButton(ButtonA, true)
	pr.WriteStrobe(0x00) // falling edge: latches the state as of now

	if got := pr.ReadPort1(); got != 1 {
		t.Fatalf("bit 0 (B) = %d, want 1 (not pressed)", got)
	}
}
