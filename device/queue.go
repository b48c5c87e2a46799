package device

import (
	"fmt"
	"maps"
	"sync"
)

// command is one recorded queue entry: a dispatch, a barrier or a signal.
type command struct {
	barrier bool
	signal  func()
	prog    *Program
	groups  uint32
	env     *Env
}

// Queue records dispatches and barriers and executes them on Submit.
// Dispatches recorded between two barriers may run concurrently with each
// other; a barrier waits for every earlier dispatch before any later one
// starts. Work items inside a dispatch run in no particular order.
type Queue struct {
	dev      *Device
	bindings map[int]Buffer
	cmds     []command
}

// Bind attaches buf to a storage slot for subsequent dispatches.
func (q *Queue) Bind(slot int, buf Buffer) {
	q.bindings[slot] = buf
}

// Dispatch records groups workgroups of p. Uniform values and bindings are
// captured now, so later Set*/Bind calls do not affect this dispatch.
func (q *Queue) Dispatch(p *Program, groups uint32) {
	env := &Env{
		uniforms: maps.Clone(p.uniforms),
		bindings: make(map[int]Buffer, len(p.bindings)),
	}
	for slot := range p.bindings {
		if buf, ok := q.bindings[slot]; ok {
			env.bindings[slot] = buf
		}
	}
	q.cmds = append(q.cmds, command{prog: p, groups: groups, env: env})
}

// Barrier makes every earlier dispatch's writes visible to later ones.
func (q *Queue) Barrier() {
	q.cmds = append(q.cmds, command{barrier: true})
}

// Signal records a host callback. It runs on the submitting goroutine when
// Submit reaches it; it does not wait for earlier dispatches, so put a
// Barrier before it to observe their completion.
func (q *Queue) Signal(fn func()) {
	q.cmds = append(q.cmds, command{signal: fn})
}

// Pending returns the number of recorded commands.
func (q *Queue) Pending() int {
	return len(q.cmds)
}

// Reset drops recorded commands without running them.
func (q *Queue) Reset() {
	q.cmds = q.cmds[:0]
}

// Submit validates every recorded command, then runs them in order and
// waits for completion. If validation fails nothing runs. The queue is
// empty afterwards either way.
func (q *Queue) Submit() error {
	defer q.Reset()

	if q.dev.closed.Load() {
		return ErrClosed
	}
	for i := range q.cmds {
		if err := q.cmds[i].validate(); err != nil {
			return err
		}
	}

	var inflight sync.WaitGroup
	for i := range q.cmds {
		c := &q.cmds[i]
		if c.barrier {
			inflight.Wait()
			continue
		}
		if c.signal != nil {
			c.signal()
			continue
		}
		if c.groups == 0 {
			continue
		}
		body := c.prog.kernel.Entry(c.env)
		q.dev.pool.dispatch(body, c.groups, uint32(c.prog.kernel.WorkgroupSize), &inflight)
	}
	inflight.Wait()
	return nil
}

func (c *command) validate() error {
	if c.barrier || c.signal != nil {
		return nil
	}
	for slot, decl := range c.prog.bindings {
		buf, ok := c.env.bindings[slot]
		if !ok || buf == nil {
			return fmt.Errorf("dispatching %s: binding %q (slot %d) not bound", c.prog.Name(), decl.Name, slot)
		}
		if buf.Released() {
			return fmt.Errorf("dispatching %s: binding %q (slot %d): %w", c.prog.Name(), decl.Name, slot, ErrReleased)
		}
		switch decl.Kind {
		case BindParticles:
			if _, ok := buf.(*ParticleBuffer); !ok {
				return fmt.Errorf("dispatching %s: binding %q (slot %d) wants a particle buffer", c.prog.Name(), decl.Name, slot)
			}
		case BindIndices:
			if _, ok := buf.(*IndexBuffer); !ok {
				return fmt.Errorf("dispatching %s: binding %q (slot %d) wants an index buffer", c.prog.Name(), decl.Name, slot)
			}
		}
	}
	return nil
}
