package onnxdetect

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// convertFloat32BufferToFloat16 downcasts a float32 buffer to raw float16
// bits, as Go has no native FP16 type
func convertFloat32BufferToFloat16(float32Buf []float32) []uint16 {
	float16Buf := make([]uint16, len(float32Buf))

	for i, val := range float32Buf {
		float16Buf[i] = float16.Fromfloat32(val).Bits()
	}

	return float16Buf
}

// convertFloat16BufferToFloat32 upcasts raw float16 bits to float32
func convertFloat16BufferToFloat32(float16Buf []uint16) []float32 {
	float32Buf := make([]float32, len(float16Buf))

	for i, val := range float16Buf {
		float32Buf[i] = f16LookupTable[val]
	}

	return float32Buf
}
