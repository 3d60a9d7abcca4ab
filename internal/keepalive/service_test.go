package keepalive

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	logx "remindbot/pkg/logx"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func TestServeEndpoints(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	s := New(Config{Enabled: true, Addr: addr}, logx.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, path))
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	if code, body := get("/ping"); code != http.StatusOK || body != "pong" {
		t.Fatalf("/ping: %d %q", code, body)
	}
	if code, body := get("/health"); code != http.StatusOK || body != `{"status":"ok"}` {
		t.Fatalf("/health: %d %q", code, body)
	}
	if code, _ := get("/"); code != http.StatusOK {
		t.Fatalf("/: %d", code)
	}
	if code, _ := get("/nope"); code != http.StatusNotFound {
		t.Fatalf("/nope: %d", code)
	}
}

func TestDisabledServiceIsNoop(t *testing.T) {
	t.Parallel()

	s := New(Config{Enabled: false}, logx.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
