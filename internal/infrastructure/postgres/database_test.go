package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "placeholders kept",
			query: "SELECT id FROM accounts WHERE id = $1 AND user_id = $2",
			want:  "SELECT id FROM accounts WHERE id = $1 AND user_id = $2",
		},
		{
			name:  "string literal masked",
			query: "SELECT * FROM users WHERE phone_number = '699001122'",
			want:  "SELECT * FROM users WHERE phone_number = '?'",
		},
		{
			name:  "escaped quote",
			query: "SELECT 'it''s' AS x",
			want:  "SELECT '?' AS x",
		},
		{
			name:  "numeric literal masked",
			query: "UPDATE accounts SET balance = balance + 12.50 WHERE id = $1",
			want:  "UPDATE accounts SET balance = balance + ? WHERE id = $1",
		},
		{
			name:  "identifiers with digits kept",
			query: "SELECT col1 FROM t2",
			want:  "SELECT col1 FROM t2",
		},
		{
			name:  "whitespace collapsed",
			query: "\n\t\tSELECT id\n\t\tFROM accounts\n",
			want:  "SELECT id FROM accounts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.query); got != tt.want {
				t.Errorf("sanitizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSQLVerb(t *testing.T) {
	tests := map[string]string{
		"select 1":                      "SELECT",
		"\n  INSERT INTO accounts (id)": "INSERT",
		"":                              "",
	}
	for q, want := range tests {
		if got := extractSQLVerb(q); got != want {
			t.Errorf("extractSQLVerb(%q) = %q, want %q", q, got, want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	if !isUniqueViolation(fmt.Errorf("insert: %w", dup)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 is not a unique violation")
	}
	if isUniqueViolation(errors.New("plain")) {
		t.Error("plain error is not a unique violation")
	}
}
