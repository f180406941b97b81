package console

import (
	"fmt"
	"os"

	xip8 "github.com/guslan/xip8vm"
)

// LoadFile reads a program from disk.
// Files that are not regular or do not fit in memory are rejected.
func LoadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not open program: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() > xip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: %s has %d bytes, at most %d allowed", xip8.ErrRomTooLarge, path, info.Size(), xip8.MaxProgramSize)
	}

	program, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read program: %w", err)
	}

	return program, nil
}
