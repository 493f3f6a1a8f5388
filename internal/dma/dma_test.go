package dma

import "testing"

// fakeABus is a flat 16MiB byte array standing in for CPU memory.
type fakeABus struct {
	data [1 << 24]uint8
}

func (a *fakeABus) Read(addr uint32) uint8     { return a.data[addr&0xFFFFFF] }
func (a *fakeABus) Write(addr uint32, v uint8) { a.data[addr&0xFFFFFF] = v }

// fakePorts records writes to B-bus ports (e.g. VRAM data registers).
type fakePorts struct {
	writes map[uint16][]uint8
}

func newFakePorts() *fakePorts { return &fakePorts{writes: make(map[uint16][]uint8)} }

func (p *fakePorts) ReadPort(addr uint16) uint8 { return 0 }
func (p *fakePorts) WritePort(addr uint16, v uint8) {
	p.writes[addr] = append(p.writes[addr], v)
}

func TestDMAModeOneTwoBytesToTwoPorts(t *testing.T) {
	e := New()
	abus := &fakeABus{}
	for i := 0; i < 0x20; i++ {
		abus.data[0x008000+i] = uint8(i)
	}
	ports := newFakePorts()

	e.WriteRegister(0x4300, 0x01) // params: A->B, pattern 1 ({0,1})
	e.WriteRegister(0x4301, 0x18) // B dest 0x2118
	e.WriteRegister(0x4302, 0x00) // A addr low
	e.WriteRegister(0x4303, 0x80) // A addr high -> 0x8000
	e.WriteRegister(0x4304, 0x00) // A bank
	e.WriteRegister(0x4305, 0x20) // size low = 0x20
	e.WriteRegister(0x4306, 0x00)

	e.Trigger(0x01, abus, ports)

	if got := len(ports.writes[0x2118]); got != 16 {
		t.Fatalf("wrote %d bytes to port 0x2118, want 16", got)
	}
	if got := len(ports.writes[0x2119]); got != 16 {
		t.Fatalf("wrote %d bytes to port 0x2119, want 16", got)
	}
	for i, v := range ports.writes[0x2118] {
		want := abus.data[0x8000+2*i]
		if v != want {
			t.Fatalf("port 0x2118[%d] = %#02x, want %#02x", i, v, want)
		}
	}

	if got := e.ReadRegister(0x4305); got != 0 {
		t.Fatalf("size-low register after completion = %#02x, want 0", got)
	}
	if got := e.ReadRegister(0x4306); got != 0 {
		t.Fatalf("size-high register after completion = %#02x, want 0", got)
	}
}

func TestDMASizeZeroTreatedAs0x10000(t *testing.T) {
	e := New()
	abus := &fakeABus{}
	ports := newFakePorts()

	e.WriteRegister(0x4300, 0x00) // mode 0, A->B
	e.WriteRegister(0x4301, 0x18)
	e.WriteRegister(0x4305, 0x00)
	e.WriteRegister(0x4306, 0x00)

	e.Trigger(0x01, abus, ports)

	if got := len(ports.writes[0x2118]); got != 0x10000 {
		t.Fatalf("wrote %d bytes, want 0x10000 for size=0", got)
	}
}

func TestDMAAscendingChannelOrder(t *testing.T) {
	e := New()
	abus := &fakeABus{}
	var order []uint16

	rec := &orderRecorder{ports: newFakePorts(), order: &order}

	e.WriteRegister(0x4300, 0x00)
	e.WriteRegister(0x4301, 0x01) // channel 0 -> port 0x2101
	e.WriteRegister(0x4305, 0x01)

	e.WriteRegister(0x4310, 0x00)
	e.WriteRegister(0x4311, 0x02) // channel 1 -> port 0x2102
	e.WriteRegister(0x4315, 0x01)

	e.Trigger(0x03, abus, rec)

	if len(order) != 2 || order[0] != 0x2101 || order[1] != 0x2102 {
		t.Fatalf("channels did not fire in ascending order: %v", order)
	}
}

type orderRecorder struct {
	ports *fakePorts
	order *[]uint16
}

func (r *orderRecorder) ReadPort(addr uint16) uint8 { return 0 }
func (r *orderRecorder) WritePort(addr uint16, v uint8) {
	*r.order = append(*r.order, addr)
}
