// Package gpu holds the artefacts needed to run the path tracing kernel on a
// WebGPU compute device: the WGSL source and its SPIR-V translation, the
// bind group layout, byte packing for the uniform and storage buffers and
// decoding of the RGBA16F accumulation readback.
package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// The compute entry point of the kernel.
const EntryPoint = "main"

// SPIR-V module magic number.
const spirvMagic uint32 = 0x07230203

var ErrInvalidSPIRV = errors.New("gpu: invalid SPIR-V module")

// The WGSL source of the path tracing kernel.
//
//go:embed kernel.wgsl
var KernelSource string

// Compile the kernel to a SPIR-V binary.
func CompileKernel() ([]byte, error) {
	return Compile(KernelSource)
}

// Compile WGSL source to a SPIR-V binary.
func Compile(wgslSource string) ([]byte, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: failed to compile shader: %w", err)
	}
	return spirvBytes, nil
}

// Convert a SPIR-V binary to little-endian 32-bit words and verify its
// magic number.
func SPIRVWords(spirvBytes []byte) ([]uint32, error) {
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, ErrInvalidSPIRV
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, words[0])
	}
	return words, nil
}
