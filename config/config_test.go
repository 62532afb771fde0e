package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Mode != "tcp-socket" {
		t.Errorf("Mode = %q, want tcp-socket", cfg.Mode)
	}
	if cfg.Port != 9257 {
		t.Errorf("Port = %d, want 9257", cfg.Port)
	}
	if cfg.JavaVersion != 17 {
		t.Errorf("JavaVersion = %d, want 17", cfg.JavaVersion)
	}
}

func TestKeywordsVersionGating(t *testing.T) {
	tests := []struct {
		version    uint16
		wantHas    []string
		wantLacks  []string
	}{
		{8, nil, []string{"var", "yield", "record", "sealed", "non-sealed", "permits"}},
		{10, []string{"var"}, []string{"yield", "record"}},
		{14, []string{"var", "yield"}, []string{"record", "sealed"}},
		{16, []string{"var", "yield", "record", "sealed", "non-sealed", "permits"}, nil},
		{17, []string{"var", "yield", "record", "sealed", "non-sealed", "permits"}, nil},
	}

	for _, tt := range tests {
		cfg := Config{JavaVersion: tt.version}
		kws := cfg.Keywords()
		set := make(map[string]bool, len(kws))
		for _, k := range kws {
			set[k] = true
		}
		for _, want := range tt.wantHas {
			if !set[want] {
				t.Errorf("version %d: missing keyword %q", tt.version, want)
			}
		}
		for _, lack := range tt.wantLacks {
			if set[lack] {
				t.Errorf("version %d: unexpected keyword %q", tt.version, lack)
			}
		}
	}
}

func TestKeywordsOverrideCSV(t *testing.T) {
	cfg := Config{JavaVersion: 17, JavaKeywords: ParseKeywordsCSV("foo, bar ,, baz")}
	got := cfg.Keywords()
	want := []string{"foo", "bar", "baz"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseKeywordsCSVEmpty(t *testing.T) {
	if got := ParseKeywordsCSV("   "); got != nil {
		t.Errorf("ParseKeywordsCSV(whitespace) = %v, want nil", got)
	}
}
