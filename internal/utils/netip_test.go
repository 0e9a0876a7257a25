package utils

import (
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestParseHostNoPort(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"10.0.0.1:8080", "10.0.0.1"},
		{"[::1]:443", "::1"},
		{"[::1]", "::1"},
		{"192.168.1.2", "192.168.1.2"},
	}
	for _, tt := range tests {
		if got := ParseHostNoPort(tt.in); got != tt.want {
			t.Errorf("ParseHostNoPort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{name: "remote only", remote: "10.0.0.5:1234", want: "10.0.0.5"},
		{name: "xff ignored without trust", remote: "10.0.0.5:1234", xff: "1.2.3.4", want: "10.0.0.5"},
		{name: "xff first hop", remote: "127.0.0.1:1", xff: "1.2.3.4, 5.6.7.8", trustProxy: true, want: "1.2.3.4"},
		{name: "real ip fallback", remote: "127.0.0.1:1", realIP: "9.9.9.9", trustProxy: true, want: "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]netip.Prefix{
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
	})

	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.20.30.40", true},
		{"::1", true},
		{"::ffff:10.1.1.1", true},
		{"192.168.0.1", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("nil prefixes should be empty")
	}
}
