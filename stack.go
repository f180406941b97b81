package xip8

import "errors"

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

const StackSize = 16

// Stack of return addresses
type Stack struct {
	entries [StackSize]uint16
	// sp is the number of addresses on the stack
	sp int
}

func (s *Stack) Push(addr uint16) error {
	if s.sp >= StackSize {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++

	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--

	return s.entries[s.sp], nil
}

// Depth is the number of addresses on the stack
func (s Stack) Depth() int {
	return s.sp
}

func (s *Stack) reset() {
	*s = Stack{}
}
