// Package memory implements the RAM/ROM peripheral: a 14-cell array of
// i32 addressed through a pair of address pins and read or written through
// a pair of data pins, each pin itself exposed as an XBus. Grounded on
// original_source/src/components/memory.rs.
package memory

import (
	"sync"

	"shenzhenvm/sim"
)

const cellCount = 14

// adjustIndex wraps index into [0, cellCount) using true modulo, so a
// negative address (e.g. writing -1 to an AddrPin) wraps to the top of
// the array rather than producing a negative Go '%' result (spec's open
// question on negative RAM addresses, resolved here to match the
// original: true-modulo wraparound).
func adjustIndex(index int32) int {
	modded := index % cellCount
	if modded < 0 {
		modded += cellCount
	}
	return int(modded)
}

type memory struct {
	mu       sync.Mutex
	contents [cellCount]int32
	pointers [2]int
}

type addrPin struct {
	mem   *memory
	index int
}

func (p *addrPin) CanRead() bool { return true }

func (p *addrPin) Read() int32 {
	p.mem.mu.Lock()
	defer p.mem.mu.Unlock()
	return int32(p.mem.pointers[p.index])
}

func (p *addrPin) Write(val int32) {
	p.mem.mu.Lock()
	defer p.mem.mu.Unlock()
	p.mem.pointers[p.index] = adjustIndex(val)
}

type dataPin struct {
	mem   *memory
	index int
}

func (p *dataPin) CanRead() bool { return true }

func (p *dataPin) Read() int32 {
	p.mem.mu.Lock()
	defer p.mem.mu.Unlock()
	cur := p.mem.pointers[p.index]
	result := p.mem.contents[cur]
	p.mem.pointers[p.index] = adjustIndex(int32(cur) + 1)
	return result
}

func (p *dataPin) Write(val int32) {
	p.mem.mu.Lock()
	defer p.mem.mu.Unlock()
	cur := p.mem.pointers[p.index]
	p.mem.contents[cur] = val
	p.mem.pointers[p.index] = adjustIndex(int32(cur) + 1)
}

// Pins is the four-bus handle a scenario wires into a controller's bus
// table: two address buses and two data buses, all backed by the same
// underlying cell array.
type Pins struct {
	Addr0, Addr1, Data0, Data1 *sim.XBus
}

func build(contents [cellCount]int32, dataWritable bool) Pins {
	m := &memory{contents: contents}

	a0 := &addrPin{mem: m, index: 0}
	a1 := &addrPin{mem: m, index: 1}
	d0 := &dataPin{mem: m, index: 0}
	d1 := &dataPin{mem: m, index: 1}

	addr0, addr1 := sim.NewXBus("addr0"), sim.NewXBus("addr1")
	data0, data1 := sim.NewXBus("data0"), sim.NewXBus("data1")

	addr0.ConnectSource(a0)
	addr0.ConnectSink(a0)
	addr1.ConnectSource(a1)
	addr1.ConnectSink(a1)

	data0.ConnectSource(d0)
	data1.ConnectSource(d1)
	if dataWritable {
		data0.ConnectSink(d0)
		data1.ConnectSink(d1)
	}

	return Pins{Addr0: addr0, Addr1: addr1, Data0: data0, Data1: data1}
}

// ROM builds a read-only memory pre-loaded with contents (padded/truncated
// to 14 cells by the caller's array literal); its data pins have no sink,
// so a write to one finds no connected peripheral and suspends as a
// pending writer, like a write on any other bus with no sink (§4.3 write
// resolution, I6), until a reader of that bus takes the value.
func ROM(contents [cellCount]int32) Pins {
	return build(contents, false)
}

// RAM builds a zero-initialized, fully read/write memory.
func RAM() Pins {
	return build([cellCount]int32{}, true)
}
