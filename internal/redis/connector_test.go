package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.Nop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestConnectTimesOut(t *testing.T) {
	start := time.Now()
	_, err := Connect(context.Background(), testOptions("127.0.0.1:1"), logger.Nop())
	if err == nil {
		t.Fatal("Connect() error = nil, want unavailable")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() took %v, want it bounded by ConnectTimeout", elapsed)
	}
}

func TestConnectOptionsValidate(t *testing.T) {
	base := testOptions("localhost:6379")

	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{name: "no addr", mutate: func(o *ConnectOptions) { o.Addr = "" }},
		{name: "no connect timeout", mutate: func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{name: "no retry interval", mutate: func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{name: "no max wait", mutate: func(o *ConnectOptions) { o.MaxWait = 0 }},
		{name: "no ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }},
		{name: "negative warn threshold", mutate: func(o *ConnectOptions) { o.WarnThreshold = -1 }},
	}

	if err := base.validate(); err != nil {
		t.Fatalf("validate() on valid options error = %v", err)
	}
	for _, tt := range tests {
		opts := base
		tt.mutate(&opts)
		if err := opts.validate(); err == nil {
			t.Errorf("%s: validate() error = nil, want error", tt.name)
		}
	}
}
