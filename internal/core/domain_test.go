package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func fieldOf(t *testing.T, err error, field string) string {
	t.Helper()
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	msg, ok := ve.Fields[field]
	if !ok {
		t.Fatalf("no message for field %q in %v", field, ve.Fields)
	}
	return msg
}

func TestBudget_Validate(t *testing.T) {
	valid := Budget{Title: "Food", Amount: Money{Cents: 10000}, Category: "groceries"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Budget)
		field  string
	}{
		{"missing title", func(b *Budget) { b.Title = "  " }, "title"},
		{"title too long", func(b *Budget) { b.Title = strings.Repeat("x", 101) }, "title"},
		{"negative amount", func(b *Budget) { b.Amount.Cents = -1 }, "amount"},
		{"missing category", func(b *Budget) { b.Category = "" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			err := b.Validate()
			if err == nil {
				t.Fatal("want validation error")
			}
			fieldOf(t, err, tt.field)
		})
	}
}

func TestExpense_Validate(t *testing.T) {
	valid := Expense{Name: "Lunch", Amount: Money{Cents: 1500}, Date: NewDate(2024, 3, 15), Category: "dining"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Expense)
		field  string
	}{
		{"missing name", func(e *Expense) { e.Name = "" }, "name"},
		{"negative amount", func(e *Expense) { e.Amount.Cents = -100 }, "amount"},
		{"zero date", func(e *Expense) { e.Date = Date{} }, "date"},
		{"missing category", func(e *Expense) { e.Category = " " }, "category"},
		{"description too long", func(e *Expense) { e.Description = strings.Repeat("x", 251) }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if err == nil {
				t.Fatal("want validation error")
			}
			fieldOf(t, err, tt.field)
		})
	}

	t.Run("zero amount is valid", func(t *testing.T) {
		e := valid
		e.Amount.Cents = 0
		if err := e.Validate(); err != nil {
			t.Errorf("zero-amount expense rejected: %v", err)
		}
	})
}

func TestSubscription_Validate(t *testing.T) {
	valid := Subscription{Name: "Streaming", TotalSpend: Money{Cents: 999}, DurationMonths: 1, Category: "entertainment"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid subscription rejected: %v", err)
	}

	s := valid
	s.DurationMonths = -1
	if err := s.Validate(); err == nil {
		t.Error("negative duration must be rejected")
	}
}

func TestIncome_Validate(t *testing.T) {
	valid := Income{Type: "Salary", Amount: Money{Cents: 300000}, Frequency: Monthly}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid income rejected: %v", err)
	}

	i := valid
	i.Frequency = "Daily"
	err := i.Validate()
	if err == nil {
		t.Fatal("unknown frequency must be rejected")
	}
	fieldOf(t, err, "frequency")

	for _, f := range []Frequency{Weekly, BiWeekly, Monthly, Yearly} {
		if !ValidFrequency(f) {
			t.Errorf("ValidFrequency(%q) = false, want true", f)
		}
	}
}

func TestSavingsExpense_RecomputePerYear(t *testing.T) {
	s := SavingsExpense{Category: "vacation", PerMonth: Money{Cents: 5000}, PerYear: Money{Cents: 1}}
	s.RecomputePerYear()
	if s.PerYear.Cents != 60000 {
		t.Errorf("PerYear = %d, want 60000 (stored value must not be trusted)", s.PerYear.Cents)
	}
}

func TestBudget_RecomputeRemaining(t *testing.T) {
	b := Budget{Amount: Money{Cents: 10000}, Spent: Money{Cents: 12500}}
	b.RecomputeRemaining()
	if b.Remaining.Cents != -2500 {
		t.Errorf("Remaining = %d, want -2500 (no clamping on overrun)", b.Remaining.Cents)
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, 3, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2024-03-15"` {
		t.Errorf("Marshal() = %s, want \"2024-03-15\"", b)
	}

	var parsed Date
	if err := json.Unmarshal([]byte(`"2024-03-15"`), &parsed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Errorf("Unmarshal() = %v, want %v", parsed, d)
	}

	var bad Date
	if err := json.Unmarshal([]byte(`"15/03/2024"`), &bad); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Unmarshal of wrong format error = %v, want ErrInvalidDate", err)
	}
}

func TestSameBudgetRef(t *testing.T) {
	one, alsoOne, two := int64(1), int64(1), int64(2)

	tests := []struct {
		name string
		a, b *int64
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, &one, false},
		{"value vs nil", &one, nil, false},
		{"same value distinct pointers", &one, &alsoOne, true},
		{"different values", &one, &two, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameBudgetRef(tt.a, tt.b); got != tt.want {
				t.Errorf("SameBudgetRef() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("empty error = %q", ve.Error())
	}

	ve.Add("b", "second")
	ve.Add("a", "first")
	want := "validation failed: a: first; b: second"
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q (fields sorted)", ve.Error(), want)
	}
}
