package engine

import (
	"fmt"
	"strings"

	"github.com/iburimskiy/orbit-visualization/internal/motion"
)

// InvalidPresetError rejects an unknown preset name. The active preset is
// left unchanged.
type InvalidPresetError struct {
	Name string
}

func (e *InvalidPresetError) Error() string {
	return fmt.Sprintf("unknown preset %q (want one of %s)", e.Name, strings.Join(motion.Names(), ", "))
}

// InvalidSeekError rejects a negative or NaN seek time.
type InvalidSeekError struct {
	Time float64
}

func (e *InvalidSeekError) Error() string {
	return fmt.Sprintf("cannot seek to %.2fs: time must be non-negative", e.Time)
}
