package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/spheretracer/scene"
	"github.com/mrjoshuak/go-openexr/half"
)

const (
	// Size of the Info uniform: camera position (vec3 padded to 16 bytes),
	// time, sphere_count, random_seed, frame_count.
	InfoSize = 32

	// Size of a Sphere element: center (vec3), radius, albedo (vec3), is_mirror.
	SphereSize = 32

	// Texture to buffer copies require rows aligned to this many bytes.
	CopyBytesPerRowAlignment = 256

	// RGBA16F texel size.
	BytesPerPixel = 8
)

var ErrShortBuffer = errors.New("gpu: readback buffer is too small for the frame dimensions")

// Serialize the per-frame parameters into the Info uniform layout. The
// kernel leaves the accumulation untouched for frame count 0 so the host
// must reject such frames here.
func EncodeInfo(info *scene.Info) ([]byte, error) {
	if info.FrameCount == 0 {
		return nil, scene.ErrInvalidFrameCount
	}

	buf := make([]byte, InfoSize)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(info.Camera.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(info.Time))
	binary.LittleEndian.PutUint32(buf[20:], info.SphereCount)
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(info.RandomSeed))
	binary.LittleEndian.PutUint32(buf[28:], info.FrameCount)
	return buf, nil
}

// Serialize a sphere list into the storage buffer layout.
func EncodeSpheres(spheres []scene.Sphere) []byte {
	buf := make([]byte, SphereSize*len(spheres))
	for index, sphere := range spheres {
		out := buf[index*SphereSize:]
		for i := range 3 {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(sphere.Center[i]))
		}
		binary.LittleEndian.PutUint32(out[12:], math.Float32bits(sphere.Radius))
		for i := range 3 {
			binary.LittleEndian.PutUint32(out[16+i*4:], math.Float32bits(sphere.Material.Albedo[i]))
		}

		var isMirror uint32
		if sphere.Material.IsMirror {
			isMirror = 1
		}
		binary.LittleEndian.PutUint32(out[28:], isMirror)
	}
	return buf
}

// Get the padded row pitch of an RGBA16F image with the given width.
func BytesPerRow(width uint32) uint32 {
	unpadded := BytesPerPixel * width
	padding := (CopyBytesPerRowAlignment - unpadded%CopyBytesPerRowAlignment) % CopyBytesPerRowAlignment
	return unpadded + padding
}

// Get the size of an accumulation buffer for the given frame dims.
func AccumulationBufferSize(width, height uint32) uint64 {
	return uint64(BytesPerRow(width)) * uint64(height)
}

// Decode a padded RGBA16F readback buffer into a tightly packed RGBA float
// slice with 4 values per pixel.
func DecodeRGBA16F(data []byte, width, height uint32) ([]float32, error) {
	pitch := BytesPerRow(width)
	if uint64(len(data)) < AccumulationBufferSize(width, height) {
		return nil, fmt.Errorf("%w: got %d bytes; need %d", ErrShortBuffer, len(data), AccumulationBufferSize(width, height))
	}

	out := make([]float32, 4*int(width)*int(height))
	for y := uint32(0); y < height; y++ {
		row := data[y*pitch:]
		for x := uint32(0); x < width; x++ {
			texel := row[x*BytesPerPixel:]
			offset := 4 * (y*width + x)
			for c := uint32(0); c < 4; c++ {
				h := half.Half(binary.LittleEndian.Uint16(texel[c*2:]))
				out[offset+c] = h.Float32()
			}
		}
	}
	return out, nil
}
