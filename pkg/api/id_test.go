package api

import "testing"

func TestNewCallID(t *testing.T) {
	id := NewCallID()
	if !ValidateCallID(id) {
		t.Errorf("generated call ID %q does not validate", id)
	}
}

func TestNewConversationID(t *testing.T) {
	id := NewConversationID()
	if !ValidateConversationID(id) {
		t.Errorf("generated conversation ID %q does not validate", id)
	}
}

func TestIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCallID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"call_",
		"call_short",
		"conv_abcdefghijklmnopqrstuvwx", // conv prefix on call validation
		"call_abcdefghijklmnopqrstuvw!",
	}
	for _, id := range bad {
		if ValidateCallID(id) {
			t.Errorf("ValidateCallID(%q) = true", id)
		}
	}
}
