package bytesize

import "testing"

func TestParseByteSize(t *testing.T) {
	cases := []struct {
		in   string
		want ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"512B", 512},
		{"512b", 512},

		{"1Ki", KiB},
		{"1KiB", KiB},
		{"8Mi", 8 * MiB},
		{"2Gi", 2 * GiB},
		{"1Ti", TiB},

		{"1K", KB},
		{"5MB", 5 * MB},
		{"3G", 3 * GB},
		{"2TB", 2 * TB},

		{"1gi", GiB},
		{"1GI", GiB},

		{" 4Ki ", 4 * KiB},
		{"4 Ki", 4 * KiB},

		{"1.5Mi", ByteSize(1.5 * float64(MiB))},
		{"0.25Gi", ByteSize(0.25 * float64(GiB))},
	}

	for _, c := range cases {
		got, err := ParseByteSize(c.in)
		if err != nil {
			t.Errorf("ParseByteSize(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseByteSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseByteSizeRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "Gi", "-1Gi", "1Xi", "1MiBs", "abc", "1.2.3Ki"} {
		if got, err := ParseByteSize(in); err == nil {
			t.Errorf("ParseByteSize(%q) = %d, want error", in, got)
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   ByteSize
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1000, "1000B"}, // decimal KB still renders in bytes
		{KiB, "1.00KiB"},
		{2 * KiB, "2.00KiB"},
		{100 * MiB, "100.00MiB"},
		{ByteSize(1.5 * float64(GiB)), "1.50GiB"},
		{2 * TiB, "2.00TiB"},
	}

	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

// Sizes whose rendering is exact must survive a String/Parse round trip.
func TestStringRoundTrips(t *testing.T) {
	for _, size := range []ByteSize{512, 2 * KiB, 3 * MiB, ByteSize(1.25 * float64(GiB))} {
		got, err := ParseByteSize(size.String())
		if err != nil {
			t.Fatalf("ParseByteSize(%q): %v", size.String(), err)
		}
		if got != size {
			t.Errorf("round trip of %d through %q gave %d", size, size.String(), got)
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	if err := b.UnmarshalText([]byte("2Gi")); err != nil {
		t.Fatalf("UnmarshalText(2Gi): %v", err)
	}
	if b != 2*GiB {
		t.Errorf("UnmarshalText(2Gi) = %d, want %d", b, 2*GiB)
	}

	if err := b.UnmarshalText([]byte("a lot")); err == nil {
		t.Error("UnmarshalText accepted garbage")
	}
}

func TestUint64(t *testing.T) {
	if got := (4 * GiB).Uint64(); got != 4*1024*1024*1024 {
		t.Errorf("Uint64() = %d, want %d", got, uint64(4*1024*1024*1024))
	}
}
