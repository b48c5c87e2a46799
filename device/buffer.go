package device

import (
	"fmt"
	"unsafe"
)

// Particle is one element of a particle storage buffer. The fourth lane of
// Pos and Vel is padding so the layout matches a std430 vec4 triple.
type Particle struct {
	Pos   [4]float32
	Vel   [4]float32
	Color [4]float32
}

// ParticleSize is the size of one Particle in bytes.
const ParticleSize = int64(unsafe.Sizeof(Particle{}))

const indexSize = int64(unsafe.Sizeof(int32(0)))

// Buffer is a device storage buffer.
type Buffer interface {
	Len() int
	Bytes() int64
	Release()
	Released() bool
}

// ParticleBuffer stores Particles.
type ParticleBuffer struct {
	dev   *Device
	data  []Particle
	freed bool
}

// NewParticleBuffer allocates n zeroed particles.
func (d *Device) NewParticleBuffer(n int) (*ParticleBuffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("allocating particle buffer: negative length %d", n)
	}
	if err := d.reserve(int64(n) * ParticleSize); err != nil {
		return nil, fmt.Errorf("allocating particle buffer of %d: %w", n, err)
	}
	return &ParticleBuffer{dev: d, data: make([]Particle, n)}, nil
}

// Data exposes the backing storage. Host writes must not overlap a submit.
func (b *ParticleBuffer) Data() []Particle { return b.data }

func (b *ParticleBuffer) Len() int       { return len(b.data) }
func (b *ParticleBuffer) Bytes() int64   { return int64(len(b.data)) * ParticleSize }
func (b *ParticleBuffer) Released() bool { return b.freed }

// Release returns the buffer's memory to the device. Safe to call twice.
func (b *ParticleBuffer) Release() {
	if b == nil || b.freed {
		return
	}
	b.dev.unreserve(b.Bytes())
	b.freed = true
	b.data = nil
}

// IndexBuffer stores int32 indices, -1 meaning "none".
type IndexBuffer struct {
	dev   *Device
	data  []int32
	freed bool
}

// NewIndexBuffer allocates n indices, all zero.
func (d *Device) NewIndexBuffer(n int) (*IndexBuffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("allocating index buffer: negative length %d", n)
	}
	if err := d.reserve(int64(n) * indexSize); err != nil {
		return nil, fmt.Errorf("allocating index buffer of %d: %w", n, err)
	}
	return &IndexBuffer{dev: d, data: make([]int32, n)}, nil
}

// Data exposes the backing storage. Host writes must not overlap a submit.
func (b *IndexBuffer) Data() []int32 { return b.data }

// Fill sets every entry to v.
func (b *IndexBuffer) Fill(v int32) {
	for i := range b.data {
		b.data[i] = v
	}
}

func (b *IndexBuffer) Len() int       { return len(b.data) }
func (b *IndexBuffer) Bytes() int64   { return int64(len(b.data)) * indexSize }
func (b *IndexBuffer) Released() bool { return b.freed }

// Release returns the buffer's memory to the device. Safe to call twice.
func (b *IndexBuffer) Release() {
	if b == nil || b.freed {
		return
	}
	b.dev.unreserve(b.Bytes())
	b.freed = true
	b.data = nil
}
