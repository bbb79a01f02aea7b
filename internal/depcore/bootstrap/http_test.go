// Copyright 2025 cbuild Authors.
// All rights reserved

package bootstrap

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type fakeClient struct {
	resp *http.Response
	err  error
}

func (f *fakeClient) Do(_ *http.Request) (*http.Response, error) {
	return f.resp, f.err
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestHTTPFetcherGet(t *testing.T) {
	client := &fakeClient{resp: newResponse(http.StatusOK, "apk archive bytes")}
	f := NewHTTPFetcher(client)

	body, err := f.Get(context.Background(), "https://mirror.example/x86_64/apk-tools-static-bin-2.14.0.apk")
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	defer body.Close() //nolint:errcheck

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(got) != "apk archive bytes" {
		t.Errorf("Get() body = %q, want %q", got, "apk archive bytes")
	}
}

func TestHTTPFetcherNonOKStatusFails(t *testing.T) {
	client := &fakeClient{resp: newResponse(http.StatusNotFound, "")}
	f := NewHTTPFetcher(client)

	if _, err := f.Get(context.Background(), "https://mirror.example/missing.apk"); err == nil {
		t.Fatal("want error on 404 status, got none")
	}
}

func TestJSONIndexReaderListVersions(t *testing.T) {
	client := &fakeClient{resp: newResponse(http.StatusOK, `{"versions":["2.12.0","2.14.0","2.13.1"]}`)}
	idx := NewJSONIndexReader(NewHTTPFetcher(client))

	got, err := idx.ListVersions(context.Background(), "https://mirror.example/x86_64/apk-tools-static-bin-index.json")
	if err != nil {
		t.Fatalf("ListVersions(): %v", err)
	}
	want := []string{"2.12.0", "2.14.0", "2.13.1"}
	if len(got) != len(want) {
		t.Fatalf("ListVersions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListVersions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
