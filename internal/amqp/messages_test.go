package amqp

import (
	"testing"
	"time"
)

func TestExpenseAppliedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	msg := &ExpenseAppliedMessage{
		UserID:     "user-1",
		Category:   "groceries",
		Month:      3,
		Year:       2024,
		DeltaCents: -1250,
		Timestamp:  timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseAppliedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ExpenseAppliedMessageFromJSON() error = %v", err)
	}

	if parsed.UserID != msg.UserID {
		t.Errorf("Parsed UserID = %v, want %v", parsed.UserID, msg.UserID)
	}
	if parsed.Category != msg.Category {
		t.Errorf("Parsed Category = %v, want %v", parsed.Category, msg.Category)
	}
	if parsed.Month != msg.Month || parsed.Year != msg.Year {
		t.Errorf("Parsed month/year = %d/%d, want %d/%d", parsed.Month, parsed.Year, msg.Month, msg.Year)
	}
	if parsed.DeltaCents != msg.DeltaCents {
		t.Errorf("Parsed DeltaCents = %v, want %v", parsed.DeltaCents, msg.DeltaCents)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestExpenseAppliedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"deltaCents": "not_a_number", "month": 1}`)

	_, err := ExpenseAppliedMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("ExpenseAppliedMessageFromJSON() should fail with invalid JSON")
	}
}
