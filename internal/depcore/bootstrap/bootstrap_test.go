package bootstrap

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

type fakeFetcher struct {
	bodies map[string][]byte
	err    error
}

func (f *fakeFetcher) Get(_ context.Context, url string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.bodies[url]
	if !ok {
		return nil, errNotFound(url)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type notFoundError string

func (e notFoundError) Error() string { return "not found: " + string(e) }
func errNotFound(url string) error    { return notFoundError(url) }

type fakeIndex struct {
	versions []string
	err      error
}

func (f *fakeIndex) ListVersions(_ context.Context, _ string) ([]string, error) {
	return f.versions, f.err
}

// buildAPK constructs a gzip-compressed tar archive (what pgzip's reader
// decompresses just like the standard library's) containing a single
// regular file at the given path.
func buildAPK(t *testing.T, path string, contents []byte) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	if err := tw.WriteHeader(&tar.Header{Name: path, Mode: 0o755, Size: int64(len(contents))}); err != nil {
		t.Fatalf("writing tar header: %v", err)
	}
	if _, err := tw.Write(contents); err != nil {
		t.Fatalf("writing tar contents: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(tarBuf.Bytes()); err != nil {
		t.Fatalf("writing gzip contents: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return gzBuf.Bytes()
}

func TestEnsureStaticPMAlreadyPresent(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/build/usr/bin/apk.static", []byte("existing"), 0o755); err != nil {
		t.Fatalf("seeding fs: %v", err)
	}

	b := New(&fakeFetcher{}, &fakeIndex{}, fs)
	if err := b.EnsureStaticPM(context.Background(), "/build", "mirror.example", "x86_64", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureStaticPMFetchesAndExtracts(t *testing.T) {
	fs := afero.NewMemMapFs()
	archive := buildAPK(t, "usr/bin/apk.static", []byte("binary-contents"))

	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://mirror.example/x86_64/apk-tools-static-bin-2.14.0.apk": archive,
	}}
	index := &fakeIndex{versions: []string{"2.14.0"}}

	b := New(fetcher, index, fs)
	if err := b.EnsureStaticPM(context.Background(), "/build", "mirror.example", "x86_64", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := afero.ReadFile(fs, "/build/usr/bin/apk.static")
	if err != nil {
		t.Fatalf("reading installed binary: %v", err)
	}
	if string(got) != "binary-contents" {
		t.Errorf("installed binary contents = %q, want %q", got, "binary-contents")
	}
}

func TestEnsureStaticPMSelectsConstrainedVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	archive := buildAPK(t, "usr/bin/apk.static", []byte("v2-binary"))

	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://mirror.example/x86_64/apk-tools-static-bin-2.12.0.apk": archive,
	}}
	index := &fakeIndex{versions: []string{"2.10.0", "2.12.0", "2.14.0"}}

	b := New(fetcher, index, fs)
	if err := b.EnsureStaticPM(context.Background(), "/build", "mirror.example", "x86_64", "<2.14.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := afero.ReadFile(fs, "/build/usr/bin/apk.static")
	if err != nil {
		t.Fatalf("reading installed binary: %v", err)
	}
	if string(got) != "v2-binary" {
		t.Errorf("installed binary contents = %q, want %q", got, "v2-binary")
	}
}

func TestEnsureStaticPMLocatesAtBinRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	archive := buildAPK(t, "bin/apk.static", []byte("bin-root-binary"))

	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://mirror.example/aarch64/apk-tools-static-bin-2.14.0.apk": archive,
	}}
	index := &fakeIndex{versions: []string{"2.14.0"}}

	b := New(fetcher, index, fs)
	if err := b.EnsureStaticPM(context.Background(), "/build", "mirror.example", "aarch64", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := afero.ReadFile(fs, "/build/usr/bin/apk.static")
	if err != nil {
		t.Fatalf("reading installed binary: %v", err)
	}
	if string(got) != "bin-root-binary" {
		t.Errorf("installed binary contents = %q, want %q", got, "bin-root-binary")
	}
}

func TestEnsureStaticPMFetchFailureIsBootstrapFailed(t *testing.T) {
	fs := afero.NewMemMapFs()
	index := &fakeIndex{versions: []string{"2.14.0"}}
	b := New(&fakeFetcher{}, index, fs)

	err := b.EnsureStaticPM(context.Background(), "/build", "mirror.example", "x86_64", "")
	if err == nil {
		t.Fatal("want error, got none")
	}
	if !errors.Is(err, depcore.ErrBootstrapFailed) {
		t.Errorf("error %v does not wrap ErrBootstrapFailed", err)
	}
}
