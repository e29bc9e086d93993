package value

import "testing"

func TestNewStringEncoding(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"int", "12345", "int"},
		{"negative int", "-7", "int"},
		{"leading zero stays embstr", "0123", "embstr"},
		{"plus sign stays embstr", "+5", "embstr"},
		{"short text", "hello", "embstr"},
		{"long text", string(make([]byte, 45)), "raw"},
	}
	for _, tc := range cases {
		s := NewString([]byte(tc.in))
		if got := s.Encoding(); got != tc.want {
			t.Errorf("%s: Encoding() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStringIncrBy(t *testing.T) {
	s := NewString([]byte("10"))
	next, sum, err := s.IncrBy(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 15 || string(next.Bytes()) != "15" {
		t.Fatalf("sum=%d bytes=%q, want 15", sum, next.Bytes())
	}
}

func TestStringIncrByOverflow(t *testing.T) {
	s := NewString([]byte("9223372036854775807"))
	if _, _, err := s.IncrBy(1); err == nil {
		t.Fatal("expected overflow error, got nil")
	}
}

func TestStringIncrByNotAnInteger(t *testing.T) {
	s := NewString([]byte("notanumber"))
	if _, _, err := s.IncrBy(1); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestStringIncrByFloat(t *testing.T) {
	s := NewString([]byte("10.5"))
	_, formatted, err := s.IncrByFloat(0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formatted != "10.6" {
		t.Fatalf("formatted = %q, want 10.6", formatted)
	}
}

func TestStringGetRange(t *testing.T) {
	s := NewString([]byte("Hello World"))
	cases := []struct {
		start, end int
		want       string
	}{
		{0, 4, "Hello"},
		{-5, -1, "World"},
		{0, -1, "Hello World"},
		{100, 200, ""},
	}
	for _, tc := range cases {
		if got := string(s.GetRange(tc.start, tc.end)); got != tc.want {
			t.Errorf("GetRange(%d,%d) = %q, want %q", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestStringAppendReEncodes(t *testing.T) {
	s := NewString([]byte("12"))
	if s.Encoding() != "int" {
		t.Fatalf("precondition: want int encoding, got %s", s.Encoding())
	}
	appended := s.Append([]byte("3"))
	if string(appended.Bytes()) != "123" {
		t.Fatalf("Bytes() = %q, want 123", appended.Bytes())
	}
	if appended.Encoding() != "int" {
		t.Fatalf("Encoding() = %q, want int", appended.Encoding())
	}
}
