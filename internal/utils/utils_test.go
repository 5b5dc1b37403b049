package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeInput(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"TheCat", "thecat"},
		{"the cat\nsat.", "the catsat"},
		{"hello, world 42!", "hello world "},
		{"", ""},
		{"ÉTÉ", "t"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := NormalizeInput(tc.input); got != tc.expected {
				t.Errorf("NormalizeInput(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFormatWithCommas(t *testing.T) {
	testCases := map[int]string{
		0:         "0",
		999:       "999",
		1000:      "1,000",
		253855:    "253,855",
		17005207:  "17,005,207",
		-31344016: "-31,344,016",
	}
	for n, expected := range testCases {
		if got := FormatWithCommas(n); got != expected {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", n, got, expected)
		}
	}
}

func TestTOMLHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := map[string]any{
		"segment": map[string]any{"max_word_length": 13, "prior": 0.5, "name": "x", "on": true},
	}
	if err := SaveTOMLFile(data, path); err != nil {
		t.Fatalf("SaveTOMLFile: %v", err)
	}
	parsed, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatalf("ParseTOMLWithRecovery: %v", err)
	}
	section, ok := ExtractSection(parsed, "segment")
	if !ok {
		t.Fatal("missing section")
	}
	if v, ok := ExtractInt64(section, "max_word_length"); !ok || v != 13 {
		t.Errorf("ExtractInt64 = %d, %v", v, ok)
	}
	if v, ok := ExtractFloat64(section, "prior"); !ok || v != 0.5 {
		t.Errorf("ExtractFloat64 = %g, %v", v, ok)
	}
	if v, ok := ExtractFloat64(section, "max_word_length"); !ok || v != 13 {
		t.Errorf("ExtractFloat64 on integer = %g, %v", v, ok)
	}
	if v, ok := ExtractString(section, "name"); !ok || v != "x" {
		t.Errorf("ExtractString = %q, %v", v, ok)
	}
	if v, ok := ExtractBool(section, "on"); !ok || !v {
		t.Errorf("ExtractBool = %v, %v", v, ok)
	}
	if _, ok := ExtractInt64(section, "missing"); ok {
		t.Error("ExtractInt64 found a missing key")
	}
}

func TestFSHelpers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	result := CheckDirStatus(dir)
	if !result.Exists || !result.Writable || result.Error != nil {
		t.Errorf("CheckDirStatus = %+v", result)
	}
	file := filepath.Join(dir, "f")
	if FileExists(file) {
		t.Error("file should not exist yet")
	}
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(file) {
		t.Error("file should exist")
	}

	if got := ResolvePath("/base", "a.txt"); got != filepath.Join("/base", "a.txt") {
		t.Errorf("ResolvePath = %q", got)
	}
	if got := ResolvePath("/base", "/abs/a.txt"); got != "/abs/a.txt" {
		t.Errorf("ResolvePath(abs) = %q", got)
	}
	if got := ResolvePath("", "a.txt"); got != "a.txt" {
		t.Errorf("ResolvePath(no base) = %q", got)
	}
}
