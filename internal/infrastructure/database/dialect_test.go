package database

import "testing"

func TestPlaceholder(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		d := SQLiteDialect{}
		if got := d.Placeholder(1); got != "?" {
			t.Errorf("Placeholder(1) = %q, want ?", got)
		}
		if got := d.Placeholder(7); got != "?" {
			t.Errorf("Placeholder(7) = %q, want ?", got)
		}
	})

	t.Run("postgres", func(t *testing.T) {
		d := PostgresDialect{}
		if got := d.Placeholder(1); got != "$1" {
			t.Errorf("Placeholder(1) = %q, want $1", got)
		}
		if got := d.Placeholder(12); got != "$12" {
			t.Errorf("Placeholder(12) = %q, want $12", got)
		}
	})
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "users", `"users"`, false},
		{"underscore prefix", "_internal", `"_internal"`, false},
		{"mixed case", "UserAccounts", `"UserAccounts"`, false},
		{"qualified", "public.users", `"public"."users"`, false},
		{"empty", "", "", true},
		{"leading digit", "1users", "", true},
		{"embedded quote", `users"`, "", true},
		{"semicolon injection", "users; DROP TABLE users", "", true},
		{"space", "user accounts", "", true},
		{"too many dots", "a.b.c", "", true},
		{"comment injection", "users--", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteIdentifier(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("QuoteIdentifier(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("QuoteIdentifier(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
