package main

import "testing"

func TestFirstNonEmptyReturnsFirstNonEmptyValue(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty = %s, want b", got)
	}
}

func TestFirstNonEmptyAllEmptyReturnsEmpty(t *testing.T) {
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %s, want empty", got)
	}
}

func TestFirstNonEmptyPrefersEarliestArgument(t *testing.T) {
	if got := firstNonEmpty("a", "b"); got != "a" {
		t.Errorf("firstNonEmpty = %s, want a", got)
	}
}
