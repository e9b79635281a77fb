package classify

import "testing"

func TestClassifyRegulation(t *testing.T) {
	if cat := Classify("SEC sues exchange"); cat != Regulation {
		t.Errorf("expected Regulation, got %s", cat)
	}
	if e := Emoji("SEC sues exchange"); e != "⚖️" {
		t.Errorf("expected ⚖️, got %s", e)
	}
}

func TestClassifyRegulationBeatsMarket(t *testing.T) {
	// "crash" is a market word, but regulation is declared first.
	title := "Bitcoin crash follows SEC lawsuit"
	if cat := Classify(title); cat != Regulation {
		t.Errorf("expected Regulation to take precedence, got %s", cat)
	}
}

func TestClassifySecurity(t *testing.T) {
	if cat := Classify("Bridge exploited for $100M, funds stolen"); cat != Security {
		t.Errorf("expected Security, got %s", cat)
	}
}

func TestClassifyMarket(t *testing.T) {
	if cat := Classify("BTC rallies to new ATH"); cat != Market {
		t.Errorf("expected Market, got %s", cat)
	}
}

func TestClassifyPartnership(t *testing.T) {
	if cat := Classify("Visa partners with Solana for settlements"); cat != Partnership {
		t.Errorf("expected Partnership, got %s", cat)
	}
}

func TestClassifyInstitutional(t *testing.T) {
	if cat := Classify("BlackRock files for new fund"); cat != Institutional {
		t.Errorf("expected Institutional, got %s", cat)
	}
}

func TestClassifyDeFi(t *testing.T) {
	if cat := Classify("Uniswap liquidity hits new levels"); cat != DeFi {
		t.Errorf("expected DeFi, got %s", cat)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if cat := Classify("exchange HACKED overnight"); cat != Security {
		t.Errorf("expected Security, got %s", cat)
	}
}

func TestClassifyWholeWordOnly(t *testing.T) {
	// "second" contains "sec", "banana" contains "ban"
	title := "A second look at banana republics"
	if cat := Classify(title); cat != General {
		t.Errorf("expected General for partial-word matches, got %s", cat)
	}
	if e := Emoji(title); e != DefaultEmoji {
		t.Errorf("expected default emoji, got %s", e)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	if cat := Classify(""); cat != General {
		t.Errorf("expected General for empty input, got %s", cat)
	}
}

func TestRuleOrder(t *testing.T) {
	want := []Category{Regulation, Security, Market, Partnership, Institutional, DeFi}
	if len(Rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(Rules))
	}
	for i, r := range Rules {
		if r.Category != want[i] {
			t.Errorf("rule %d: expected %s, got %s", i, want[i], r.Category)
		}
	}
}
