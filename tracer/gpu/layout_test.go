package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestBindGroupLayout(t *testing.T) {
	expTypes := []gputypes.BufferBindingType{
		gputypes.BufferBindingTypeUniform,
		gputypes.BufferBindingTypeReadOnlyStorage,
		gputypes.BufferBindingTypeReadOnlyStorage,
		gputypes.BufferBindingTypeStorage,
	}

	entries := BindGroupLayout()
	if len(entries) != len(expTypes) {
		t.Fatalf("expected %d entries; got %d", len(expTypes), len(entries))
	}

	for index, entry := range entries {
		if entry.Binding != uint32(index) {
			t.Errorf("[entry %d] expected binding %d; got %d", index, index, entry.Binding)
		}
		if entry.Visibility != gputypes.ShaderStageCompute {
			t.Errorf("[entry %d] expected compute visibility", index)
		}
		if entry.Buffer == nil || entry.Buffer.Type != expTypes[index] {
			t.Errorf("[entry %d] expected buffer binding type %v", index, expTypes[index])
		}
	}
}

func TestBufferUsage(t *testing.T) {
	if usage := BufferUsage(BindingInfo); usage&gputypes.BufferUsageUniform == 0 || usage&gputypes.BufferUsageCopyDst == 0 {
		t.Errorf("expected info buffer to be a uniform copy destination; got %v", usage)
	}
	if usage := BufferUsage(BindingNextAccumulation); usage&gputypes.BufferUsageStorage == 0 || usage&gputypes.BufferUsageCopySrc == 0 {
		t.Errorf("expected output buffer to be a storage copy source; got %v", usage)
	}
	if usage := BufferUsage(99); usage != 0 {
		t.Errorf("expected no usage for unknown binding; got %v", usage)
	}
}
