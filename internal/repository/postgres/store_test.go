package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oponion/oponion-api/internal/repository"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "42", want: 42, wantOK: true},
		{in: "0", want: 0, wantOK: true},
		{in: "", wantOK: false},
		{in: "abc", wantOK: false},
		{in: "12a", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := parseID(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("parseID(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: repository.ErrNotFound},
		{
			name: "duplicate username",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"},
			want: repository.ErrDuplicateUsername,
		},
		{
			name: "duplicate email",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"},
			want: repository.ErrDuplicateEmail,
		},
		{
			name: "duplicate token",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "invitations_token_key"},
			want: repository.ErrDuplicateToken,
		},
		{
			name: "foreign key",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			want: repository.ErrInvalidReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateError(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("translateError() = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("boom")
	if got := translateError(other); got != other {
		t.Fatalf("translateError() = %v, want passthrough", got)
	}
}
