package device

import (
	"fmt"
	"strings"
)

// UniformType is the declared type of a named uniform.
type UniformType int

const (
	UniformInt UniformType = iota
	UniformFloat
	UniformVec3
	UniformIVec3
)

func (t UniformType) String() string {
	switch t {
	case UniformInt:
		return "int"
	case UniformFloat:
		return "float"
	case UniformVec3:
		return "vec3"
	case UniformIVec3:
		return "ivec3"
	default:
		return "unknown"
	}
}

// UniformDecl declares a uniform a kernel reads.
type UniformDecl struct {
	Name string
	Type UniformType
}

// BindingKind is the element type of a storage binding.
type BindingKind int

const (
	BindParticles BindingKind = iota
	BindIndices
)

// BindingDecl declares a storage buffer slot a kernel accesses.
type BindingDecl struct {
	Slot int
	Kind BindingKind
	Name string
}

// Invocation runs one work item identified by its global invocation id.
type Invocation func(id uint32)

// EntryFunc prepares a dispatch: it reads uniforms and bindings from env
// once and returns the per-item body.
type EntryFunc func(env *Env) Invocation

// Kernel is the source form of a compute program.
type Kernel struct {
	Name          string
	WorkgroupSize int
	Uniforms      []UniformDecl
	Bindings      []BindingDecl
	Entry         EntryFunc
}

// CompileError carries the human-readable log of a failed compilation.
type CompileError struct {
	Kernel string
	Log    []string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s:\n%s", ErrCompile, e.Kernel, strings.Join(e.Log, "\n"))
}

func (e *CompileError) Unwrap() error { return ErrCompile }

// uniformValue holds one uniform. Only the field matching typ is used.
type uniformValue struct {
	typ UniformType
	i   int32
	f   float32
	v3  [3]float32
	iv3 [3]int32
}

// Program is a compiled kernel plus its current uniform values.
type Program struct {
	kernel   Kernel
	uniforms map[string]uniformValue
	bindings map[int]BindingDecl
}

// Compile validates k against the device limits.
func (d *Device) Compile(k Kernel) (*Program, error) {
	name := k.Name
	if name == "" {
		name = "<unnamed>"
	}
	var log []string

	if k.Entry == nil {
		log = append(log, "error: missing entry point")
	}
	if k.WorkgroupSize < 1 || k.WorkgroupSize > d.opts.MaxWorkgroupSize {
		log = append(log, fmt.Sprintf("error: workgroup size %d outside [1, %d]",
			k.WorkgroupSize, d.opts.MaxWorkgroupSize))
	}

	uniforms := make(map[string]uniformValue, len(k.Uniforms))
	for _, u := range k.Uniforms {
		if u.Name == "" {
			log = append(log, "error: uniform with empty name")
			continue
		}
		if _, dup := uniforms[u.Name]; dup {
			log = append(log, fmt.Sprintf("error: uniform %q redeclared", u.Name))
			continue
		}
		uniforms[u.Name] = uniformValue{typ: u.Type}
	}

	bindings := make(map[int]BindingDecl, len(k.Bindings))
	for _, b := range k.Bindings {
		if b.Slot < 0 || b.Slot >= MaxBindings {
			log = append(log, fmt.Sprintf("error: binding %q slot %d outside [0, %d)", b.Name, b.Slot, MaxBindings))
			continue
		}
		if prev, dup := bindings[b.Slot]; dup {
			log = append(log, fmt.Sprintf("error: binding %q reuses slot %d of %q", b.Name, b.Slot, prev.Name))
			continue
		}
		bindings[b.Slot] = b
	}

	if len(log) > 0 {
		return nil, &CompileError{Kernel: name, Log: log}
	}
	return &Program{kernel: k, uniforms: uniforms, bindings: bindings}, nil
}

// Name returns the kernel name.
func (p *Program) Name() string { return p.kernel.Name }

// WorkgroupSize returns the number of items per workgroup.
func (p *Program) WorkgroupSize() int { return p.kernel.WorkgroupSize }

// Groups returns the workgroup count needed to cover n items.
func (p *Program) Groups(n int) uint32 {
	ws := p.kernel.WorkgroupSize
	return uint32((n + ws - 1) / ws)
}

// HasUniform reports whether the kernel declares name.
func (p *Program) HasUniform(name string) bool {
	_, ok := p.uniforms[name]
	return ok
}

// The setters below silently ignore names the kernel does not declare and
// values whose type does not match the declaration.

func (p *Program) SetInt(name string, v int32) {
	if u, ok := p.uniforms[name]; ok && u.typ == UniformInt {
		u.i = v
		p.uniforms[name] = u
	}
}

func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.SetInt(name, i)
}

func (p *Program) SetFloat(name string, v float32) {
	if u, ok := p.uniforms[name]; ok && u.typ == UniformFloat {
		u.f = v
		p.uniforms[name] = u
	}
}

func (p *Program) SetVec3(name string, v [3]float32) {
	if u, ok := p.uniforms[name]; ok && u.typ == UniformVec3 {
		u.v3 = v
		p.uniforms[name] = u
	}
}

func (p *Program) SetIVec3(name string, v [3]int32) {
	if u, ok := p.uniforms[name]; ok && u.typ == UniformIVec3 {
		u.iv3 = v
		p.uniforms[name] = u
	}
}

// Env is the state a dispatch observes: a snapshot of the program's uniforms
// and of the queue's bindings taken when the dispatch was recorded.
type Env struct {
	uniforms map[string]uniformValue
	bindings map[int]Buffer
}

func (e *Env) Int(name string) int32     { return e.uniforms[name].i }
func (e *Env) Bool(name string) bool     { return e.uniforms[name].i != 0 }
func (e *Env) Float(name string) float32 { return e.uniforms[name].f }

func (e *Env) Vec3(name string) [3]float32 { return e.uniforms[name].v3 }
func (e *Env) IVec3(name string) [3]int32  { return e.uniforms[name].iv3 }

// Particles returns the particle buffer bound at slot, or nil.
func (e *Env) Particles(slot int) []Particle {
	if b, ok := e.bindings[slot].(*ParticleBuffer); ok {
		return b.data
	}
	return nil
}

// Indices returns the index buffer bound at slot, or nil.
func (e *Env) Indices(slot int) []int32 {
	if b, ok := e.bindings[slot].(*IndexBuffer); ok {
		return b.data
	}
	return nil
}
