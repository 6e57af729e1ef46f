package onnxdetect

import (
	"go.viam.com/test"
	"testing"
)

func TestFloat16RoundTrip(t *testing.T) {

	// all exactly representable in FP16
	values := []float32{0, 1, -2.5, 255, 65504, 0.125}

	bits := convertFloat32BufferToFloat16(values)
	test.That(t, bits, test.ShouldHaveLength, len(values))
	test.That(t, bits[1], test.ShouldEqual, uint16(0x3c00))

	back := convertFloat16BufferToFloat32(bits)
	test.That(t, back, test.ShouldResemble, values)
}

func TestFloat16Rounding(t *testing.T) {

	// 255.3 is not representable, nearest FP16 is 255.25
	back := convertFloat16BufferToFloat32(convertFloat32BufferToFloat16([]float32{255.3}))
	test.That(t, back[0], test.ShouldEqual, float32(255.25))
}
