package distance

import "testing"

func TestExtractDistrict(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"10 Downing Street, London SW1A 2AA", "SW1A"},
		{"Flat 4, 12 Deansgate, Manchester M1 1AE", "M1"},
		{"somewhere in london ec2", "EC2"},
		{"Wimbledon sw19 1aa", "SW19"},
		{"Moving from B15 2TT to the new flat in LS1 4AP", "LS1"},
		{"no postcode here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractDistrict(tt.addr); got != tt.want {
			t.Errorf("extractDistrict(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestAreaAndSubdistrict(t *testing.T) {
	tests := []struct {
		district string
		area     string
		trimmed  string
	}{
		{"SW1A", "SW", "SW1"},
		{"EC2V", "EC", "EC2"},
		{"W1D", "W", "W1"},
		{"SW19", "SW", "SW19"},
		{"B1", "B", "B1"},
	}
	for _, tt := range tests {
		if got := areaOf(tt.district); got != tt.area {
			t.Errorf("areaOf(%q) = %q, want %q", tt.district, got, tt.area)
		}
		if got := trimSubdistrict(tt.district); got != tt.trimmed {
			t.Errorf("trimSubdistrict(%q) = %q, want %q", tt.district, got, tt.trimmed)
		}
	}
}
