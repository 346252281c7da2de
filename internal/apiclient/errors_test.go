package apiclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyIsTotalOverStatusRange(t *testing.T) {
	for status := 100; status <= 599; status++ {
		err, ok := Classify(status)
		switch {
		case status >= 200 && status <= 299:
			if !ok || err != (Error{}) {
				t.Fatalf("status %d should proceed to decode, got ok=%v err=%v", status, ok, err)
			}
		case status == 401:
			if ok || err != ErrUnauthorized {
				t.Fatalf("status 401 => %v ok=%v", err, ok)
			}
		case status == 404:
			if ok || err != ErrNotFound {
				t.Fatalf("status 404 => %v ok=%v", err, ok)
			}
		case status >= 400 && status <= 499:
			if ok || err != ClientError(status) {
				t.Fatalf("status %d => %v ok=%v", status, err, ok)
			}
		case status >= 500:
			if ok || err != ServerError(status) {
				t.Fatalf("status %d => %v ok=%v", status, err, ok)
			}
		default:
			if ok || err != ErrUnknown {
				t.Fatalf("status %d => %v ok=%v", status, err, ok)
			}
		}
	}
}

func FuzzClassifyNeverPanicsAndIsDeterministic(f *testing.F) {
	f.Add(0)
	f.Add(-1)
	f.Add(200)
	f.Add(999)

	f.Fuzz(func(t *testing.T, status int) {
		e1, ok1 := Classify(status)
		e2, ok2 := Classify(status)
		if e1 != e2 || ok1 != ok2 {
			t.Fatalf("Classify(%d) must be deterministic", status)
		}
		if ok1 && (status < 200 || status > 299) {
			t.Fatalf("only 2xx may proceed, got ok for %d", status)
		}
	})
}

func TestErrorStructuralEquality(t *testing.T) {
	if ClientError(400) != ClientError(400) {
		t.Fatal("same kind and payload must be equal")
	}
	if ClientError(400) == ClientError(422) {
		t.Fatal("different payloads must differ")
	}
	if ServerError(500) == ClientError(500) {
		t.Fatal("different kinds must differ")
	}
	if NetworkFailure("timeout") != NetworkFailure("timeout") {
		t.Fatal("network failures with equal detail must be equal")
	}
	if NetworkFailure("timeout") == NetworkFailure("reset") {
		t.Fatal("network failures with different detail must differ")
	}
	if ErrUnauthorized == ErrNotFound {
		t.Fatal("distinct sentinels must differ")
	}
}

func TestErrorsIsAndKindOfThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load profile: %w", ClientError(409))
	if !errors.Is(wrapped, ClientError(409)) {
		t.Fatal("expected errors.Is to match the wrapped value")
	}
	if errors.Is(wrapped, ClientError(400)) {
		t.Fatal("errors.Is must compare payload")
	}
	if got := KindOf(wrapped); got != KindClientError {
		t.Fatalf("KindOf()=%s", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("KindOf(plain)=%s", got)
	}
}

func TestMessagesAreHumanReadable(t *testing.T) {
	for _, e := range []Error{
		ErrInvalidURL, NetworkFailure("dns"), ErrInvalidResponse, ErrUnauthorized, ErrNotFound,
		ClientError(418), ServerError(502), ErrNoData, ErrEncodingFailure, ErrDecodingFailure, ErrUnknown,
	} {
		if e.Message() == "" || e.Error() == "" {
			t.Fatalf("empty text for %s", e.Kind)
		}
	}
	if got := Message(fmt.Errorf("x: %w", ServerError(503))); got != ServerError(503).Message() {
		t.Fatalf("Message() should unwrap, got %q", got)
	}
}
