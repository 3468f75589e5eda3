package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/accessmatrix"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json", "JSON"} {
		if _, err := newLogger("debug", format); err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
	}
	if _, err := newLogger("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := newLogger("loud", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewService(t *testing.T) {
	svc, err := newService(options{pageSize: 5, cacheTTL: time.Second}, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if got := svc.Config().PageSize(0); got != 5 {
		t.Fatalf("page size = %d, want 5", got)
	}
	page, err := svc.List(context.Background(), accessmatrix.ListFilter{}, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 {
		t.Fatalf("expected empty store, got %d rules", page.Total)
	}
}

func TestRunRejectsExtraArguments(t *testing.T) {
	if err := run([]string{"serve"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
}
