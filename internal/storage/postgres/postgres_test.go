package postgres

import (
	"context"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"

	"recordopt/internal/storage"
)

var _ storage.Sink = (*Sink)(nil)

func TestOpenValidation(t *testing.T) {
	ctx := context.Background()

	if _, _, err := Open(ctx, Config{Table: "t"}); err == nil {
		t.Error("Open() with empty DSN: error = nil, want non-nil")
	}
	if _, _, err := Open(ctx, Config{DSN: "postgresql://localhost/db"}); err == nil {
		t.Error("Open() with empty table: error = nil, want non-nil")
	}
}

func TestSplitFQN(t *testing.T) {
	tests := []struct {
		in   string
		want pgx.Identifier
	}{
		{"users", pgx.Identifier{"users"}},
		{"public.users", pgx.Identifier{"public", "users"}},
		{"a.b.c", pgx.Identifier{"a", "b", "c"}},
		{".users", pgx.Identifier{"users"}},
	}
	for _, tt := range tests {
		if got := splitFQN(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFQN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
