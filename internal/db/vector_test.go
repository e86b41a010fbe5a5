package db

import "testing"

func TestVectorBytes(t *testing.T) {
	in := []float32{0, 1, -2.5, 3.25}
	b := VectorToBytes(in)
	if len(b) != 16 {
		t.Fatalf("len = %d, want 16", len(b))
	}
	// 1.0 = 0x3f800000 little-endian
	if b[4] != 0x00 || b[5] != 0x00 || b[6] != 0x80 || b[7] != 0x3f {
		t.Errorf("unexpected encoding of 1.0: % x", b[4:8])
	}

	out, err := BytesToVector(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestBytesToVector_BadLength(t *testing.T) {
	if _, err := BytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}
