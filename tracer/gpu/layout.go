package gpu

import "github.com/gogpu/gputypes"

// Kernel bindings in @group(0).
const (
	BindingInfo uint32 = iota
	BindingSpheres
	BindingPrevAccumulation
	BindingNextAccumulation
)

// Return the bind group layout entries matching the @group(0) @binding(N)
// annotations of the kernel.
func BindGroupLayout() []gputypes.BindGroupLayoutEntry {
	buffer := func(binding uint32, bufType gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: bufType},
		}
	}

	return []gputypes.BindGroupLayoutEntry{
		buffer(BindingInfo, gputypes.BufferBindingTypeUniform),
		buffer(BindingSpheres, gputypes.BufferBindingTypeReadOnlyStorage),
		buffer(BindingPrevAccumulation, gputypes.BufferBindingTypeReadOnlyStorage),
		buffer(BindingNextAccumulation, gputypes.BufferBindingTypeStorage),
	}
}

// Return the usage flags for the buffer bound at the given binding.
func BufferUsage(binding uint32) gputypes.BufferUsage {
	switch binding {
	case BindingInfo:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	case BindingSpheres:
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	case BindingPrevAccumulation:
		// filled by copying the previous frame's output
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	case BindingNextAccumulation:
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	}
	return 0
}

// Return a label for the buffer bound at the given binding.
func BindingLabel(binding uint32) string {
	switch binding {
	case BindingInfo:
		return "info"
	case BindingSpheres:
		return "spheres"
	case BindingPrevAccumulation:
		return "prev_accum"
	case BindingNextAccumulation:
		return "next_accum"
	}
	return "unknown"
}
