package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestLengthError(t *testing.T) {
	tests := []struct {
		name     string
		err      *LengthError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "anchor identifier",
			err:      NewLength("Anchor Identifier", 11, 12, ErrAnchorIdentifierLength),
			wantMsg:  "length(Anchor Identifier)=11, but it must be 12",
			wantBase: ErrAnchorIdentifierLength,
		},
		{
			name:     "ecn",
			err:      NewLength("ECN", 25, 24, ErrECNLength),
			wantMsg:  "length(ECN)=25, but it must be 24",
			wantBase: ErrECNLength,
		},
		{
			name:     "no sentinel",
			err:      &LengthError{Field: "key", Got: 0, Want: 1},
			wantMsg:  "length(key)=0, but it must be 1",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantBase)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Errorf("expected %v to wrap ErrInvalidInput", tt.err)
			}
		})
	}
}

func TestUnknownCorpusError(t *testing.T) {
	err := NewUnknownCorpus("unknown", []string{"ramsey", "mobile", "web", "desktop"})

	want := "Corpus=unknown, but it must be one of {ramsey, mobile, web, desktop}"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnknownCorpus) {
		t.Error("expected ErrUnknownCorpus")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected ErrInvalidInput")
	}
	if errors.Is(err, ErrECNLength) {
		t.Error("unknown corpus must not match ErrECNLength")
	}
}

func TestEscapeError(t *testing.T) {
	err := NewEscape(3, `\q`, "unknown escape")

	want := `malformed escape sequence "\\q" at offset 3: unknown escape`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrMalformedEscape) {
		t.Error("expected ErrMalformedEscape")
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name    string
		err     *NotFoundError
		wantMsg string
	}{
		{"with ID", NewNotFound("operation", "to-hex"), "operation not found: to-hex"},
		{"without ID", &NotFoundError{Resource: "operation"}, "operation not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrNotFound) {
				t.Error("expected ErrNotFound")
			}
		})
	}
}

func TestOperationError(t *testing.T) {
	inner := NewLength("ECN", 3, 24, ErrECNLength)

	t.Run("message is verbatim", func(t *testing.T) {
		err := NewOperation("Extract Anchor Leak Info", inner)
		if got, want := err.Error(), inner.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		var opErr *OperationError
		if !errors.As(err, &opErr) {
			t.Fatal("expected *OperationError")
		}
		if opErr.Operation != "Extract Anchor Leak Info" {
			t.Errorf("Operation = %q", opErr.Operation)
		}
		if !errors.Is(err, ErrECNLength) {
			t.Error("expected wrapped sentinel to remain visible")
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := NewOperation("op", nil); err != nil {
			t.Errorf("NewOperation(nil) = %v, want nil", err)
		}
	})

	t.Run("not wrapped twice", func(t *testing.T) {
		first := NewOperation("a", inner)
		second := NewOperation("b", first)
		if second != first {
			t.Errorf("expected the same error back, got %#v", second)
		}
	})
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := fmt.Errorf("base")
	err := Wrap(base, "loading config")
	if err.Error() != "loading config: base" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !Is(err, base) {
		t.Error("Wrap should preserve the chain")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrNotFound, "operation %q", "x")
	if err.Error() != `operation "x": not found` {
		t.Errorf("Wrapf() = %q", err.Error())
	}

	var nf *NotFoundError
	if As(err, &nf) {
		t.Error("As should not match an unrelated type")
	}
}
