package normalize

import "testing"

func TestAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		city    string
		want    string
	}{
		{
			name:    "lowercases and strips punctuation",
			address: "Veerallee 23-A",
			city:    "Zwolle",
			want:    "veerallee 23a",
		},
		{
			name:    "removes city name",
			address: "Veerallee 23 Zwolle",
			city:    "Zwolle",
			want:    "veerallee 23",
		},
		{
			name:    "removes filler words",
			address: "Appartement te huur Veerallee 23",
			city:    "Zwolle",
			want:    "veerallee 23",
		},
		{
			name:    "collapses whitespace",
			address: "Veerallee   23",
			city:    "Zwolle",
			want:    "veerallee 23",
		},
		{
			name:    "empty city leaves address intact",
			address: "Veerallee 23",
			city:    "",
			want:    "veerallee 23",
		},
		{
			name:    "diacritics survive",
			address: "Cézannestraat 4",
			city:    "Zwolle",
			want:    "cézannestraat 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Address(tt.address, tt.city)
			if got != tt.want {
				t.Errorf("Address(%q, %q) = %q, want %q", tt.address, tt.city, got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name    string
		address string
		city    string
		price   int
		want    string
	}{
		{
			name:    "price is bucketed to 100s",
			address: "Veerallee 23",
			city:    "Zwolle",
			price:   1850,
			want:    "veerallee 23|zwolle|1800",
		},
		{
			name:    "exact bucket boundary",
			address: "Veerallee 23",
			city:    "Zwolle",
			price:   1800,
			want:    "veerallee 23|zwolle|1800",
		},
		{
			name:    "city is lowercased in key",
			address: "Dorpsstraat 1",
			city:    "Hattem",
			price:   1500,
			want:    "dorpsstraat 1|hattem|1500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key(tt.address, tt.city, tt.price)
			if got != tt.want {
				t.Errorf("Key(%q, %q, %d) = %q, want %q", tt.address, tt.city, tt.price, got, tt.want)
			}
		})
	}
}

// Listings from different sources with slightly different price quotes must
// land in the same bucket only when within the same 100-euro band.
func TestKeyCrossSourceVariants(t *testing.T) {
	a := Key("Veerallee 23 te huur", "Zwolle", 1850)
	b := Key("veerallee 23", "Zwolle", 1875)
	if a != b {
		t.Errorf("expected matching keys, got %q and %q", a, b)
	}

	c := Key("veerallee 23", "Zwolle", 1925)
	if a == c {
		t.Errorf("expected different buckets for 1850 and 1925, both got %q", a)
	}
}

func TestKeyDeterminism(t *testing.T) {
	first := Key("Assendorperstraat 99", "Zwolle", 1600)
	for i := 0; i < 10; i++ {
		if got := Key("Assendorperstraat 99", "Zwolle", 1600); got != first {
			t.Fatalf("key changed between calls: %q vs %q", first, got)
		}
	}
}
