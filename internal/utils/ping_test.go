package utils

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPingServiceReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if err := PingService(srv.URL, time.Second); err != nil {
		t.Fatalf("expected reachable, got %v", err)
	}
}

func TestPingServiceUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if err := PingService("http://"+addr, 200*time.Millisecond); err == nil {
		t.Fatal("expected an error for a closed port")
	}
}

func TestPingServiceBadURL(t *testing.T) {
	if err := PingService("://nope", time.Second); err == nil {
		t.Fatal("expected an invalid URL error")
	}
}

func TestDialAddress(t *testing.T) {
	cases := map[string]string{
		"https://storage.example.com":  "storage.example.com:443",
		"http://localhost:4443/bucket": "localhost:4443",
		"redis://cache":                "cache:6379",
		"cache:6380":                   "cache:6380",
	}
	for in, want := range cases {
		got, err := dialAddress(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Errorf("%s: got %s, want %s", in, got, want)
		}
	}

	if _, err := dialAddress("no-port"); err == nil {
		t.Error("expected an error for a bare host")
	}
}
