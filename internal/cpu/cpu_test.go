package cpu

import "testing"

// mockMemory implements Memory backed by a flat 16MiB array, enough to
// exercise every addressing mode's effective address without needing
// a real bus/cartridge.
type mockMemory struct {
	data [1 << 24]uint8
}

func newMockMemory() *mockMemory { return &mockMemory{} }

func (m *mockMemory) Read(addr uint32) uint8  { return m.data[addr&0xFFFFFF] }
func (m *mockMemory) Write(addr uint32, v uint8) { m.data[addr&0xFFFFFF] = v }

func (m *mockMemory) setBytes(addr uint32, bytes ...uint8) {
	for i, b := range bytes {
		m.data[(addr+uint32(i))&0xFFFFFF] = b
	}
}

func newTestCPU() (*CPU, *mockMemory) {
	mem := newMockMemory()
	c := New(mem)
	return c, mem
}

func TestResetFallsBackTo8000OnZeroVector(t *testing.T) {
	c, _ := newTestCPU()
	if c.PC != resetFallbackPC {
		t.Fatalf("PC = %#04x, want fallback %#04x", c.PC, resetFallbackPC)
	}
	if !c.E || !c.FlagM || !c.FlagX {
		t.Fatalf("reset should force emulation mode with M=X=1")
	}
	if c.SP != 0x01FF {
		t.Fatalf("SP = %#04x, want 0x01FF", c.SP)
	}
}

func TestResetHonorsVector(t *testing.T) {
	mem := newMockMemory()
	mem.setBytes(vectorEmulResetPC, 0x34, 0x12)
	c := New(mem)
	if c.PC != 0x1234 {
		t.Fatalf("PC = %#04x, want 0x1234", c.PC)
	}
}

func TestLDAImmediate8Bit(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	mem.setBytes(0x8000, 0xA9, 0x42) // LDA #$42
	c.Step()
	if c.A != 0x42 {
		t.Fatalf("A = %#04x, want 0x42", c.A)
	}
	if c.FlagZ || c.FlagN {
		t.Fatalf("flags wrong for positive nonzero result")
	}
}

func TestLDAImmediate16Bit(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	c.E = false
	c.FlagM = false
	mem.setBytes(0x8000, 0xA9, 0x00, 0x80) // LDA #$8000
	c.Step()
	if c.A != 0x8000 {
		t.Fatalf("A = %#04x, want 0x8000", c.A)
	}
	if !c.FlagN {
		t.Fatalf("N flag should be set from bit 15")
	}
}

func TestStaAbsoluteRoutesThroughDataBank(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	c.DB = 0x7E
	c.A = 0x55
	mem.setBytes(0x8000, 0x8D, 0x00, 0x21) // STA $2100
	c.Step()
	if got := mem.Read(0x7E2100); got != 0x55 {
		t.Fatalf("mem[$7E2100] = %#02x, want 0x55", got)
	}
}

func TestXCERoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	mem.setBytes(0x8000, 0xFB, 0xFB) // XCE, XCE
	c.FlagC = false

	c.Step() // enter native mode
	if c.E {
		t.Fatalf("expected native mode after first XCE")
	}
	if !c.FlagC {
		t.Fatalf("C should now hold the prior E (1)")
	}

	c.FlagM = false
	c.FlagX = false
	c.Step() // back to emulation
	if !c.E {
		t.Fatalf("expected emulation mode after second XCE")
	}
	if !c.FlagM || !c.FlagX {
		t.Fatalf("entering emulation mode must force M=X=1")
	}
	if c.SP&0xFF00 != 0x0100 {
		t.Fatalf("SP high byte must be forced to 0x01, got %#04x", c.SP)
	}
}

func TestRepSepRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.E = false
	before := c.packP()
	c.unpackP(before &^ 0x30) // REP #$30 equivalent
	c.unpackP(before | 0x30)  // SEP #$30 equivalent
	if c.packP() != before {
		t.Fatalf("REP/SEP round trip changed P: got %#02x want %#02x", c.packP(), before)
	}
}

func TestPushPop16RoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.push16(0xBEEF)
	if got := c.pop16(); got != 0xBEEF {
		t.Fatalf("pop16() = %#04x, want 0xBEEF", got)
	}
	if c.SP != 0x01FF {
		t.Fatalf("SP should be restored to 0x01FF, got %#04x", c.SP)
	}
}

func TestJSRRTS(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	mem.setBytes(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	mem.setBytes(0x9000, 0x60)             // RTS
	c.Step()
	if c.PC != 0x9000 {
		t.Fatalf("PC after JSR = %#04x, want 0x9000", c.PC)
	}
	c.Step()
	if c.PC != 0x8003 {
		t.Fatalf("PC after RTS = %#04x, want 0x8003", c.PC)
	}
}

func TestADCSetsCarryAndOverflow(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	c.A = 0x7F // max positive signed 8-bit
	c.FlagC = false
	mem.setBytes(0x8000, 0x69, 0x01) // ADC #$01
	c.Step()
	if c.A != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", uint8(c.A))
	}
	if !c.FlagV {
		t.Fatalf("expected signed overflow into negative")
	}
	if c.FlagC {
		t.Fatalf("did not expect unsigned carry out")
	}
}

func TestEmulationModeStackAlwaysPage1(t *testing.T) {
	c, mem := newTestCPU()
	c.PB, c.PC = 0, 0x8000
	for i := 0; i < 600; i++ {
		mem.setBytes(uint32(0x8000+i), 0x48) // PHA, repeated
	}
	for i := 0; i < 600; i++ {
		c.Step()
		if c.SP&0xFF00 != 0x0100 {
			t.Fatalf("SP escaped page 1 in emulation mode: %#04x", c.SP)
		}
	}
}
