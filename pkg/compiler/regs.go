package compiler

// DefaultRegisters is the register file size of the target machine.
const DefaultRegisters = 256

// RegisterPool tracks which virtual registers are in use. Allocation is a
// first-free scan, so the lowest free id is always handed out next.
type RegisterPool struct {
	used []bool
	peak int // highest number of registers in use at once
	live int
}

func NewRegisterPool(size int) *RegisterPool {
	if size <= 0 {
		size = DefaultRegisters
	}
	return &RegisterPool{used: make([]bool, size)}
}

// Acquire marks the first free register as used and returns its id.
func (p *RegisterPool) Acquire() (int, error) {
	for i, inUse := range p.used {
		if !inUse {
			p.used[i] = true
			p.live++
			if p.live > p.peak {
				p.peak = p.live
			}
			return i, nil
		}
	}
	return -1, &CompileError{Kind: ResourceError, Msg: "register depleted", Err: ErrRegistersExhausted}
}

// Release frees reg. Releasing a free register is a no-op.
func (p *RegisterPool) Release(reg int) {
	if reg < 0 || reg >= len(p.used) || !p.used[reg] {
		return
	}
	p.used[reg] = false
	p.live--
}

// InUse reports whether reg is currently allocated.
func (p *RegisterPool) InUse(reg int) bool {
	return reg >= 0 && reg < len(p.used) && p.used[reg]
}

// Size is the pool capacity.
func (p *RegisterPool) Size() int { return len(p.used) }

// Live is the number of registers currently allocated.
func (p *RegisterPool) Live() int { return p.live }

// Peak is the highest Live value observed.
func (p *RegisterPool) Peak() int { return p.peak }

// Used returns the allocated register ids in ascending order.
func (p *RegisterPool) Used() []int {
	var regs []int
	for i, inUse := range p.used {
		if inUse {
			regs = append(regs, i)
		}
	}
	return regs
}

func (p *RegisterPool) clone() *RegisterPool {
	used := make([]bool, len(p.used))
	copy(used, p.used)
	return &RegisterPool{used: used, peak: p.peak, live: p.live}
}
