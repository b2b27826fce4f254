// Package assert provides the small set of test assertions used across
// cryptosim. Failures are fatal: a test that continues past a broken
// assumption only produces noise.
package assert

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/exp/constraints"
)

func OK(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("unexpected error: %s", err)
	}
}

func Error(t testing.TB, got, want error) {
	if !errors.Is(got, want) {
		t.Helper()
		t.Fatalf("wrong error\nwant: %v\ngot:  %v", want, got)
	}
}

func True(t testing.TB, ok bool) {
	if !ok {
		t.Helper()
		t.Fatal("condition is false")
	}
}

func Equal[T comparable](t testing.TB, got, want T) {
	if got != want {
		t.Helper()
		t.Fatalf("wrong value\nwant: %#v\ngot:  %#v", want, got)
	}
}

func NotEqual[T comparable](t testing.TB, got, bad T) {
	if got == bad {
		t.Helper()
		t.Fatalf("value should differ from %#v", bad)
	}
}

func HasPrefix(t testing.TB, got, prefix string) {
	if !strings.HasPrefix(got, prefix) {
		t.Helper()
		t.Fatalf("missing prefix\nwant: %q\ngot:  %q", prefix, got)
	}
}

func EqualAll[T comparable](t testing.TB, got, want []T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("wrong length\nwant: %d (%#v)\ngot:  %d (%#v)", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wrong value at index %d\nwant: %#v\ngot:  %#v", i, want[i], got[i])
		}
	}
}

func Less[T constraints.Ordered](t testing.TB, less, more T) {
	if less >= more {
		t.Helper()
		t.Fatalf("%v is not less than %v", less, more)
	}
}

func DeepEqual(t testing.TB, got, want any) {
	if !reflect.DeepEqual(got, want) {
		t.Helper()
		t.Fatalf("wrong value\nwant: %#v\ngot:  %#v", want, got)
	}
}
