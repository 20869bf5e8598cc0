package shop

import (
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseBalance(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Balance: 100", "100"},
		{"Balance:42.75", "42.75"},
		{"Balance:   7   ", "7"},
		{"Balance: 0", "0"},
		{"Balance: -3.5", "-3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseBalance(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseBalance_RoundTrip(t *testing.T) {
	for _, v := range []string{"0", "1", "99.99", "123456.789"} {
		d := decimal.RequireFromString(v)
		got, err := ParseBalance("Balance: " + d.String())
		if err != nil || !got.Equal(d) {
			t.Errorf("Expected %s, got %s (err %v)", d, got, err)
		}
	}
}

func TestParseBalance_Malformed(t *testing.T) {
	for _, raw := range []string{"", "Balance 100", "Balance:", "Balance:   ", "Balance: abc", "Balance: 10 coins"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseBalance(raw)
			var parseErr *ParseError
			if !stderrors.As(err, &parseErr) {
				t.Errorf("Expected ParseError, got %v", err)
			}
		})
	}
}

func TestClassifiers(t *testing.T) {
	debit := MarkerClassifier{Marker: "taken", OnMatch: OutcomeApplied}
	lookup := MarkerClassifier{Marker: "not found", OnMatch: OutcomeRejected}

	tests := []struct {
		name       string
		classifier Classifier
		response   string
		want       Outcome
	}{
		{"debit confirmed", debit, "$10 has been taken from your account", OutcomeApplied},
		{"debit uppercase", debit, "TAKEN", OutcomeApplied},
		{"debit refused", debit, "Error: insufficient funds", OutcomeRejected},
		{"debit empty", debit, "", OutcomeRejected},
		{"lookup missing", lookup, "Error: Player Not Found", OutcomeRejected},
		{"lookup present", lookup, "Balance: 5", OutcomeApplied},
		{"accepting", AcceptingClassifier{}, "Error: anything", OutcomeUnknown},
		{"empty marker never matches", MarkerClassifier{OnMatch: OutcomeApplied}, "taken", OutcomeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.classifier.Classify(tt.response); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	catalog, err := NewCatalog(map[string]decimal.Decimal{
		"mining":  decimal.NewFromInt(2),
		"alchemy": decimal.RequireFromString("1.5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	skills := catalog.Skills()
	if len(skills) != 2 || skills[0].ID != "alchemy" || skills[1].ID != "mining" {
		t.Errorf("Expected sorted skills, got %+v", skills)
	}
	if skills[0].Title() != "Alchemy" {
		t.Errorf("Expected title Alchemy, got %s", skills[0].Title())
	}

	skills[0].ID = "changed"
	if catalog.Skills()[0].ID != "alchemy" {
		t.Error("Expected Skills to return a copy")
	}

	if rate, ok := catalog.Rate("alchemy"); !ok || !rate.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("unexpected rate %s ok=%v", rate, ok)
	}
	if catalog.Has("cooking") {
		t.Error("Expected cooking to be absent")
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := map[string]map[string]decimal.Decimal{
		"empty":         {},
		"zero rate":     {"mining": decimal.Zero},
		"negative rate": {"mining": decimal.NewFromInt(-1)},
		"blank id":      {" ": decimal.NewFromInt(1)},
	}

	for name, rates := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewCatalog(rates); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestXPFor(t *testing.T) {
	tests := []struct {
		amount, rate string
		want         int64
	}{
		{"10", "2", 20},
		{"10.5", "2", 21},
		{"10.99", "2", 21},
		{"0.49", "2", 0},
		{"3", "0.5", 1},
		{"4611686018427387903", "2", 9223372036854775806},
	}

	for _, tt := range tests {
		got, ok := XPFor(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.rate))
		if !ok {
			t.Errorf("XPFor(%s, %s): unexpected overflow", tt.amount, tt.rate)
			continue
		}
		if got != tt.want {
			t.Errorf("XPFor(%s, %s): expected %d, got %d", tt.amount, tt.rate, tt.want, got)
		}
	}
}

func TestXPFor_Overflow(t *testing.T) {
	tests := []struct {
		amount, rate string
	}{
		{"4611686018427387904", "2"},
		{"9223372036854775808", "1"},
		{"1e30", "0.5"},
	}

	for _, tt := range tests {
		if xp, ok := XPFor(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.rate)); ok {
			t.Errorf("XPFor(%s, %s): expected overflow, got %d", tt.amount, tt.rate, xp)
		}
	}
}

func TestCommands_Render(t *testing.T) {
	c := DefaultCommands()

	tests := []struct {
		got, want string
	}{
		{c.Balance("steve"), "bal steve"},
		{c.Withdraw("steve", decimal.RequireFromString("10.50")), "eco take steve 10.5"},
		{c.Deposit("steve", decimal.NewFromInt(10)), "eco give steve 10"},
		{c.GrantXP("steve", "mining", 1234), "skills xp add steve mining 1234"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"steve", "Steve_01", "a.b", "x"}
	invalid := []string{"", "steve op", "steve;op", "a{b}", "thisnameiswaytoolongforanyminecraftplayer"}

	for _, u := range valid {
		if !ValidUsername(u) {
			t.Errorf("Expected %q to be valid", u)
		}
	}
	for _, u := range invalid {
		if ValidUsername(u) {
			t.Errorf("Expected %q to be invalid", u)
		}
	}
}
