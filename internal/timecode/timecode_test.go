package timecode

import "testing"

func TestParseFreeform(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{name: "hours and minutes", raw: "2ч30м", want: 9000},
		{name: "one day", raw: "1д", want: 86400},
		{name: "empty", raw: "", want: 0},
		{name: "no carry between units", raw: "90м", want: 5400},
		{name: "seconds", raw: "45с", want: 45},
		{name: "spaces and case", raw: "1Д 2Ч 3М", want: 86400 + 7200 + 180},
		{name: "garbage skipped", raw: "abc10мxyz", want: 600},
		{name: "marker without digits", raw: "дчм", want: 0},
		{name: "fully unrecognized", raw: "hello", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFreeform(tt.raw); got != tt.want {
				t.Fatalf("ParseFreeform(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, ZeroLabel},
		{59, ZeroLabel},       // sub-minute remainder dropped
		{61, "1м"},            // not "1м 1с"
		{3661, "1ч 1м"},       // remainder seconds dropped
		{86400, "1д"},
		{90000, "1д 1ч"},
		{86400 + 7200 + 1800, "1д 2ч 30м"},
	}

	for _, tt := range tests {
		if got := Format(tt.seconds); got != tt.want {
			t.Fatalf("Format(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestCanonicalKeepsZeroComponents(t *testing.T) {
	t.Parallel()
	if got := Canonical(60); got != "0д 0ч 1м" {
		t.Fatalf("Canonical(60) = %q, want %q", got, "0д 0ч 1м")
	}
	if got := Canonical(0); got != "0д 0ч 0м" {
		t.Fatalf("Canonical(0) = %q, want %q", got, "0д 0ч 0м")
	}
}

func TestRoundTripThroughCanonicalString(t *testing.T) {
	t.Parallel()
	cases := []struct{ d, h, m int }{
		{0, 0, 1},
		{0, 23, 59},
		{1, 0, 0},
		{3, 12, 30},
		{400, 1, 1},
	}
	for _, c := range cases {
		sec := FromParts(c.d, c.h, c.m)
		back := ParseFreeform(Canonical(sec))
		if back != sec {
			t.Fatalf("round trip %dд %dч %dм: got %d seconds, want %d", c.d, c.h, c.m, back, sec)
		}
	}
}

func TestValidateParts(t *testing.T) {
	t.Parallel()
	if err := ValidateParts(0, 23, 59); err != nil {
		t.Fatalf("ValidateParts(0,23,59) = %v, want nil", err)
	}
	if err := ValidateParts(0, 24, 0); err == nil {
		t.Fatal("expected error for hours > 23")
	}
	if err := ValidateParts(0, 0, 60); err == nil {
		t.Fatal("expected error for minutes > 59")
	}
	if err := ValidateParts(-1, 0, 0); err == nil {
		t.Fatal("expected error for negative days")
	}
}
