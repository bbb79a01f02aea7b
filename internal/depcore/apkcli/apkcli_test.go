// Copyright 2025 cbuild Authors.
// All rights reserved

package apkcli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// writeFakeBinary writes a shell script standing in for apk(.static):
// it echoes its argv to stdout (one per line), then exits with code.
func writeFakeBinary(t *testing.T, code int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-apk")
	script := "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done\nexit " + itoa(code) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return path
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func TestRunCapturesExitCode(t *testing.T) {
	bin := writeFakeBinary(t, 3)
	c := New(bin, afero.NewMemMapFs())

	stdout, _, code, err := c.run(context.Background(), "search", "foo")
	if err != nil {
		t.Fatalf("run(): %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
	if stdout == "" {
		t.Errorf("stdout empty, want argv echoed back")
	}
}

func TestSearchReadsRepositoriesFile(t *testing.T) {
	bin := writeFakeBinary(t, 0)
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/build/etc/apk/repositories", []byte("# comment\nhttps://mirror/main\n\nhttps://mirror/community\n"), 0o644); err != nil {
		t.Fatalf("seeding repositories file: %v", err)
	}
	c := New(bin, fs)

	_, repos, _, err := c.Search(context.Background(), []string{"zlib"}, "/build", "x86_64")
	if err != nil {
		t.Fatalf("Search(): %v", err)
	}
	want := []string{"https://mirror/main", "https://mirror/community"}
	if len(repos) != len(want) {
		t.Fatalf("repos = %v, want %v", repos, want)
	}
	for i := range want {
		if repos[i] != want[i] {
			t.Errorf("repos[%d] = %q, want %q", i, repos[i], want[i])
		}
	}
}

func TestSearchOneExtractsVersions(t *testing.T) {
	bin := writeFakeBinaryWithOutput(t, "zlib-1.3-r0\nzlib-1.2-r5\n", 0)
	c := New(bin, afero.NewMemMapFs())

	versions, err := c.SearchOne(context.Background(), "zlib", "https://mirror/main", "/build", "x86_64")
	if err != nil {
		t.Fatalf("SearchOne(): %v", err)
	}
	want := []string{"1.3-r0", "1.2-r5"}
	if len(versions) != len(want) {
		t.Fatalf("versions = %v, want %v", versions, want)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("versions[%d] = %q, want %q", i, versions[i], want[i])
		}
	}
}

func writeFakeBinaryWithOutput(t *testing.T, out string, code int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-apk")
	script := "#!/bin/sh\nprintf '%s' " + shQuote(out) + "\nexit " + itoa(code) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return path
}

func shQuote(s string) string {
	return "'" + s + "'"
}

func TestAddUsermodeIncludesFlag(t *testing.T) {
	bin := writeFakeBinary(t, 0)
	c := New(bin, afero.NewMemMapFs())

	stdout, _, _, err := c.Add(context.Background(), "/build", "", []string{"musl"}, true, true, false)
	if err != nil {
		t.Fatalf("Add(): %v", err)
	}
	if !contains(stdout, "--usermode") || !contains(stdout, "--allow-untrusted") {
		t.Errorf("Add() args = %q, want --usermode and --allow-untrusted", stdout)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
