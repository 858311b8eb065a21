package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short string untouched", in: "hello", limit: 10, want: "hello"},
		{name: "exact limit untouched", in: "hello", limit: 5, want: "hello"},
		{name: "long string truncated", in: "hello world", limit: 5, want: "hello..."},
		{name: "whitespace trimmed first", in: "  hi  ", limit: 10, want: "hi"},
		{name: "zero limit yields empty", in: "hello", limit: 0, want: ""},
		{name: "multibyte runes respected", in: "привет мир", limit: 6, want: "привет..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateForLog(tc.in, tc.limit); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSessionFields(t *testing.T) {
	fields := SessionFields("abc123", "software_engineer")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldSession || fields[1].Key != FieldRole {
		t.Fatalf("unexpected field keys: %s, %s", fields[0].Key, fields[1].Key)
	}

	if got := SessionFields("", "  "); len(got) != 0 {
		t.Fatalf("expected blank values to be skipped, got %d fields", len(got))
	}
}

func TestWithSessionNilLogger(t *testing.T) {
	log := WithSession(nil, "abc123", "")
	if log == nil {
		t.Fatal("expected a usable logger")
	}
	log.Info("must not panic")
}

func TestWithSessionNoFieldsReturnsSame(t *testing.T) {
	base := zap.NewNop()
	if got := WithSession(base, "", ""); got != base {
		t.Fatal("expected the original logger back")
	}
}
