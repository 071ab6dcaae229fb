package protocol

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestVLQEncodeDecodeInt(t *testing.T) {
	testCases := []int32{
		0,
		1,
		-1,
		127,
		-127,
		128,
		-128,
		255,
		-255,
		1000,
		-1000,
		65535,
		-65535,
		1000000,
		-1000000,
	}

	for _, expected := range testCases {
		output := NewScratchOutput(MessageMax)
		EncodeVLQInt(output, expected)
		encoded := output.Result()

		data := encoded
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}

		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}

		if len(data) != 0 {
			t.Errorf("VLQ decode didn't consume all bytes for value %d: %d bytes remaining", expected, len(data))
		}
	}
}

func TestVLQEncodeDecodeUint(t *testing.T) {
	testCases := []uint32{
		0,
		1,
		127,
		128,
		255,
		1000,
		65535,
		1000000,
	}

	for _, expected := range testCases {
		output := NewScratchOutput(MessageMax)
		EncodeVLQUint(output, expected)
		encoded := output.Result()

		data := encoded
		decoded, err := DecodeVLQUint(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}

		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}
	}
}

func TestVLQBufferTooSmall(t *testing.T) {
	// Test decoding with insufficient data
	data := []byte{0x80} // Continuation byte but no following byte
	_, err := DecodeVLQInt(&data)
	if err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = nil
	if _, err := DecodeVLQUint(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall on empty input, got %v", err)
	}
}

func TestVLQTooLong(t *testing.T) {
	data := []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	_, err := DecodeVLQInt(&data)
	if !errors.Is(err, ErrInvalidVLQ) {
		t.Errorf("Expected ErrInvalidVLQ, got %v", err)
	}
}

func TestVLQEncodedLength(t *testing.T) {
	testCases := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{95, 1},
		{96, 2},
		{1500, 2},
		{15000, 3},
		{250000, 3},
		{30000000, 4},
		{0xFFFFFFFF, 1}, // -1
	}

	for _, tc := range testCases {
		output := NewScratchOutput(MessageMax)
		EncodeVLQUint(output, tc.value)
		if len(output.Result()) != tc.size {
			t.Errorf("EncodeVLQUint(%d) took %d bytes, expected %d", tc.value, len(output.Result()), tc.size)
		}
	}
}

func TestVLQRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Uint32(), 1, 16).Draw(t, "values")
		output := NewScratchOutput(MessageMax)
		for _, v := range values {
			EncodeVLQUint(output, v)
		}

		data := output.Result()
		for i, want := range values {
			got, err := DecodeVLQUint(&data)
			if err != nil {
				t.Fatalf("value %d: %v", i, err)
			}
			if got != want {
				t.Fatalf("value %d: got %d, want %d", i, got, want)
			}
		}
		if len(data) != 0 {
			t.Fatalf("%d bytes left over", len(data))
		}
	})
}
