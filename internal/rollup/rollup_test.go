package rollup

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

type stamped struct {
	category string
	cents    int64
	when     time.Time
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTotals(t *testing.T) {
	items := []stamped{
		{cents: 1000},
		{cents: 250},
		{cents: 0},
	}

	s := Totals(items, func(x stamped) int64 { return x.cents })
	if s.Total.Cents != 1250 {
		t.Errorf("Totals() total = %d, want 1250", s.Total.Cents)
	}
	if s.Count != 3 {
		t.Errorf("Totals() count = %d, want 3", s.Count)
	}

	empty := Totals(nil, func(x stamped) int64 { return x.cents })
	if empty.Total.Cents != 0 || empty.Count != 0 {
		t.Errorf("Totals(nil) = %+v, want zero summary", empty)
	}
}

func TestCategoryBreakdown_Sparse(t *testing.T) {
	items := []stamped{
		{category: "groceries", cents: 1000},
		{category: "groceries", cents: 500},
		{category: "transport", cents: 300},
	}

	out := CategoryBreakdown(items,
		func(x stamped) string { return x.category },
		func(x stamped) int64 { return x.cents })

	if len(out) != 2 {
		t.Fatalf("CategoryBreakdown() has %d keys, want 2 (absent categories must be omitted)", len(out))
	}
	if got := out["groceries"]; got.Total.Cents != 1500 || got.Count != 2 {
		t.Errorf("groceries = %+v, want total 1500 count 2", got)
	}
	if got := out["transport"]; got.Total.Cents != 300 || got.Count != 1 {
		t.Errorf("transport = %+v, want total 300 count 1", got)
	}
	if _, ok := out["dining"]; ok {
		t.Error("CategoryBreakdown() must not zero-fill absent categories")
	}
}

func TestMonthlyBreakdown_Dense(t *testing.T) {
	items := []stamped{
		{cents: 100, when: day(2024, time.March, 5)},
		{cents: 200, when: day(2024, time.March, 20)},
		{cents: 900, when: day(2023, time.March, 5)}, // other year, ignored
		{cents: 400, when: day(2024, time.November, 1)},
	}

	out := MonthlyBreakdown(items, 2024,
		func(x stamped) time.Time { return x.when },
		func(x stamped) int64 { return x.cents })

	if len(out) != 12 {
		t.Fatalf("MonthlyBreakdown() has %d buckets, want all 12", len(out))
	}
	if got := out[3]; got.Total.Cents != 300 || got.Count != 2 {
		t.Errorf("March = %+v, want total 300 count 2", got)
	}
	if got := out[11]; got.Total.Cents != 400 || got.Count != 1 {
		t.Errorf("November = %+v, want total 400 count 1", got)
	}
	if got := out[1]; got.Total.Cents != 0 || got.Count != 0 {
		t.Errorf("January = %+v, want zero bucket", got)
	}

	empty := MonthlyBreakdown(nil, 2024,
		func(x stamped) time.Time { return x.when },
		func(x stamped) int64 { return x.cents })
	if len(empty) != 12 {
		t.Errorf("MonthlyBreakdown(nil) has %d buckets, want 12", len(empty))
	}
}

func TestTrend(t *testing.T) {
	now := day(2024, time.June, 15)
	items := []stamped{
		{cents: 100, when: day(2024, time.June, 1)},
		{cents: 200, when: day(2024, time.May, 31)},
		{cents: 300, when: day(2024, time.April, 10)},
		{cents: 999, when: day(2024, time.February, 1)}, // outside 3-month window
	}

	buckets := Trend(items, 3, now,
		func(x stamped) time.Time { return x.when },
		func(x stamped) int64 { return x.cents })

	if len(buckets) != 3 {
		t.Fatalf("Trend() has %d buckets, want 3", len(buckets))
	}
	wantLabels := []string{"Apr 2024", "May 2024", "Jun 2024"}
	wantCents := []int64{300, 200, 100}
	for i, b := range buckets {
		if b.Label != wantLabels[i] {
			t.Errorf("bucket %d label = %q, want %q", i, b.Label, wantLabels[i])
		}
		if b.Total.Cents != wantCents[i] {
			t.Errorf("bucket %d total = %d, want %d", i, b.Total.Cents, wantCents[i])
		}
	}

	if got := Trend(items, 0, now, func(x stamped) time.Time { return x.when }, func(x stamped) int64 { return x.cents }); got != nil {
		t.Errorf("Trend() with zero window = %v, want nil", got)
	}
}

// Bucket bounds must be UTC: a clock behind UTC would otherwise push a
// first-of-month UTC-midnight record into the previous month's bucket.
func TestTrend_LocalClockBehindUTC(t *testing.T) {
	behind := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, behind)
	items := []stamped{
		{cents: 500, when: day(2024, time.June, 1)},
	}

	buckets := Trend(items, 2, now,
		func(x stamped) time.Time { return x.when },
		func(x stamped) int64 { return x.cents })

	if len(buckets) != 2 {
		t.Fatalf("Trend() has %d buckets, want 2", len(buckets))
	}
	if buckets[0].Total.Cents != 0 {
		t.Errorf("May bucket total = %d, want 0", buckets[0].Total.Cents)
	}
	if buckets[1].Label != "Jun 2024" || buckets[1].Total.Cents != 500 {
		t.Errorf("June bucket = %+v, want label Jun 2024 with total 500", buckets[1])
	}
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name        string
		budget      int64
		actual      int64
		wantCents   int64
		wantPercent int
	}{
		{"under budget", 10000, 7500, 2500, 25},
		{"over budget", 10000, 12000, -2000, -20},
		{"exact", 5000, 5000, 0, 0},
		{"zero budget guards division", 0, 3000, -3000, 0},
		{"rounding half up", 3000, 2000, 1000, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Variance(tt.budget, tt.actual)
			if got.Variance.Cents != tt.wantCents {
				t.Errorf("Variance(%d, %d).Variance = %d, want %d", tt.budget, tt.actual, got.Variance.Cents, tt.wantCents)
			}
			if got.VariancePct != tt.wantPercent {
				t.Errorf("Variance(%d, %d).VariancePct = %d, want %d", tt.budget, tt.actual, got.VariancePct, tt.wantPercent)
			}
		})
	}
}

func TestUtilization(t *testing.T) {
	tests := []struct {
		name   string
		spent  int64
		amount int64
		want   int
	}{
		{"half", 5000, 10000, 50},
		{"over", 15000, 10000, 150},
		{"zero amount guards division", 5000, 0, 0},
		{"rounds", 3333, 10000, 33},
		{"rounds up", 6666, 10000, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Utilization(tt.spent, tt.amount); got != tt.want {
				t.Errorf("Utilization(%d, %d) = %d, want %d", tt.spent, tt.amount, got, tt.want)
			}
		})
	}

	if got := UtilizationExact(5000, 0); got != 0 {
		t.Errorf("UtilizationExact with zero amount = %v, want 0", got)
	}
	if got := UtilizationExact(2500, 10000); got != 25.0 {
		t.Errorf("UtilizationExact(2500, 10000) = %v, want 25", got)
	}
}

func TestMonthlyIncome(t *testing.T) {
	tests := []struct {
		name    string
		incomes []core.Income
		want    int64
	}{
		{
			name:    "empty",
			incomes: nil,
			want:    0,
		},
		{
			name:    "monthly passes through",
			incomes: []core.Income{{Amount: core.Money{Cents: 300000}, Frequency: core.Monthly}},
			want:    300000,
		},
		{
			name:    "weekly counts 52 payments a year",
			incomes: []core.Income{{Amount: core.Money{Cents: 60000}, Frequency: core.Weekly}},
			want:    60000 * 52 / 12,
		},
		{
			name:    "bi-weekly counts 26 payments a year",
			incomes: []core.Income{{Amount: core.Money{Cents: 120000}, Frequency: core.BiWeekly}},
			want:    120000 * 26 / 12,
		},
		{
			name:    "yearly spreads over twelve months",
			incomes: []core.Income{{Amount: core.Money{Cents: 1200000}, Frequency: core.Yearly}},
			want:    100000,
		},
		{
			name: "mixed frequencies sum",
			incomes: []core.Income{
				{Amount: core.Money{Cents: 300000}, Frequency: core.Monthly},
				{Amount: core.Money{Cents: 1200000}, Frequency: core.Yearly},
			},
			want: 400000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthlyIncome(tt.incomes); got.Cents != tt.want {
				t.Errorf("MonthlyIncome() = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"week", PeriodWeek, false},
		{"month", PeriodMonth, false},
		{"quarter", PeriodQuarter, false},
		{"year", PeriodYear, false},
		{"", PeriodMonth, false},
		{"decade", "", true},
		{"Month", "", true},
	}

	for _, tt := range tests {
		t.Run("period_"+tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2024, time.August, 20, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		period    Period
		wantStart time.Time
	}{
		{PeriodWeek, now.AddDate(0, 0, -7)},
		{PeriodMonth, day(2024, time.August, 1)},
		{PeriodQuarter, day(2024, time.July, 1)},
		{PeriodYear, day(2024, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end := PeriodRange(tt.period, now)
			if !start.Equal(tt.wantStart) {
				t.Errorf("PeriodRange(%s) start = %v, want %v", tt.period, start, tt.wantStart)
			}
			if !end.Equal(now) {
				t.Errorf("PeriodRange(%s) end = %v, want now", tt.period, end)
			}
		})
	}

	// First month of a quarter starts its own block.
	start, _ := PeriodRange(PeriodQuarter, day(2024, time.October, 1))
	if !start.Equal(day(2024, time.October, 1)) {
		t.Errorf("quarter start for October = %v, want Oct 1", start)
	}
}

func TestInRange(t *testing.T) {
	start := day(2024, time.March, 1)
	end := day(2024, time.March, 31)

	if !InRange(start, start, end) {
		t.Error("InRange must include the start boundary")
	}
	if !InRange(end, start, end) {
		t.Error("InRange must include the end boundary")
	}
	if InRange(day(2024, time.April, 1), start, end) {
		t.Error("InRange must exclude times after end")
	}
}

func TestAnalyticsByCategory(t *testing.T) {
	rows := []core.ExpenseAnalytics{
		{Category: "groceries", Month: 1, Budget: core.Money{Cents: 10000}, Actual: core.Money{Cents: 8000}, LastYear: core.Money{Cents: 9000}},
		{Category: "groceries", Month: 2, Budget: core.Money{Cents: 10000}, Actual: core.Money{Cents: 12000}, LastYear: core.Money{Cents: 9500}},
		{Category: "transport", Month: 1, Budget: core.Money{Cents: 0}, Actual: core.Money{Cents: 500}},
	}

	out := AnalyticsByCategory(rows)
	if len(out) != 2 {
		t.Fatalf("AnalyticsByCategory() has %d keys, want 2", len(out))
	}

	g := out["groceries"]
	if g.TotalBudget.Cents != 20000 || g.TotalActual.Cents != 20000 || g.TotalLastYear.Cents != 18500 {
		t.Errorf("groceries totals = %+v", g)
	}
	if g.Variance.Cents != 0 || g.VariancePct != 0 {
		t.Errorf("groceries variance = %d (%d%%), want 0", g.Variance.Cents, g.VariancePct)
	}

	tr := out["transport"]
	if tr.Variance.Cents != -500 {
		t.Errorf("transport variance = %d, want -500", tr.Variance.Cents)
	}
	if tr.VariancePct != 0 {
		t.Errorf("transport variance pct with zero budget = %d, want 0", tr.VariancePct)
	}
}
