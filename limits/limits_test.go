package limits

import "testing"

func TestValidateFrameLength(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"max", MaxFrameLength, false},
		{"over", MaxFrameLength + 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFrameLength(make([]byte, tc.size))
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePlaintextLength(t *testing.T) {
	if err := ValidatePlaintextLength(make([]byte, MaxPlaintextFrame)); err != nil {
		t.Fatalf("unexpected error at boundary: %v", err)
	}
	if err := ValidatePlaintextLength(make([]byte, MaxPlaintextFrame+1)); err == nil {
		t.Fatal("expected error over boundary")
	}
}

func TestValidateImageSize(t *testing.T) {
	cases := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -1, true},
		{"one_byte", 1, false},
		{"max", MaxImageBytes, false},
		{"over", MaxImageBytes + 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageSize(tc.size)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
