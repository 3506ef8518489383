package session

import "testing"

// FuzzRefreshRecordDecode feeds arbitrary bytes to the record decoder. It must never
// panic, and anything it accepts must re-encode to the same bytes.
func FuzzRefreshRecordDecode(f *testing.F) {
	encoded, err := Encode(&RefreshRecord{
		TokenID:   "7f1c2e9a-2c7b-4f8e-9d0a-1b2c3d4e5f60",
		Subject:   "alice",
		Role:      "USER",
		IssuedAt:  1700000000,
		ExpiresAt: 1700086400,
	})
	if err == nil {
		f.Add(encoded)
		f.Add(encoded[:10])
		f.Add(append(append([]byte(nil), encoded...), 0))
	}

	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{recordFormatVersionCurrent})
	f.Add([]byte{255, 255, 255})

	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := Decode(data)
		if err != nil {
			return
		}
		again, err := Encode(rec)
		if err != nil {
			t.Fatalf("re-encode of decoded record failed: %v", err)
		}
		if string(again) != string(data) {
			t.Fatalf("round trip mismatch")
		}
	})
}
