package catalog

import "testing"

func mustCompile(t *testing.T, raw string) *Trigger {
	t.Helper()
	trigger, err := compileTrigger(raw)
	if err != nil {
		t.Fatalf("compileTrigger(%q) failed: %v", raw, err)
	}
	return trigger
}

func TestCompileTriggerSpecificity(t *testing.T) {
	// 3 literals x2, "nurture" anchor +2, one slot +1
	trigger := mustCompile(t, "move {account} to nurture")
	if trigger.Literals != 3 {
		t.Errorf("Literals = %d, want 3", trigger.Literals)
	}
	if trigger.Specificity != 9 {
		t.Errorf("Specificity = %d, want 9", trigger.Specificity)
	}

	// A bare slot trigger stays less specific than a literal-anchored one.
	bare := mustCompile(t, "nurture {account}")
	if bare.Specificity >= trigger.Specificity {
		t.Errorf("bare trigger specificity %d should be below %d", bare.Specificity, trigger.Specificity)
	}
}

func TestCompileTriggerRejectsDuplicateSlot(t *testing.T) {
	if _, err := compileTrigger("move {account} near {account}"); err == nil {
		t.Error("duplicate slot accepted")
	}
	if _, err := compileTrigger("   "); err == nil {
		t.Error("blank trigger accepted")
	}
}

func TestTriggerMatchCaptures(t *testing.T) {
	trigger := mustCompile(t, "move {account} to nurture")

	match, ok := trigger.MatchMessage("please move Boeing to nurture")
	if !ok {
		t.Fatal("trigger did not match")
	}
	if match.Captures[SlotAccount] != "Boeing" {
		t.Errorf("account capture = %q, want %q", match.Captures[SlotAccount], "Boeing")
	}

	if _, ok := trigger.MatchMessage("move to nurture eventually"); ok {
		t.Error("matched with an empty account span")
	}
}

func TestTriggerMatchCorrectsMisspellings(t *testing.T) {
	trigger := mustCompile(t, "move {account} to nurture")

	match, ok := trigger.MatchMessage("move Boeing to nuture")
	if !ok {
		t.Fatal("misspelled trigger did not match")
	}
	if match.Captures[SlotAccount] != "Boeing" {
		t.Errorf("account capture = %q, want %q", match.Captures[SlotAccount], "Boeing")
	}
}

func TestAccountListRequiresTwoItems(t *testing.T) {
	trigger := mustCompile(t, "move {accountList} to nurture")

	if _, ok := trigger.MatchMessage("move Boeing to nurture"); ok {
		t.Error("single account bound to {accountList}")
	}

	match, ok := trigger.MatchMessage("move Boeing, Toshiba and GE to nurture")
	if !ok {
		t.Fatal("three-account list did not match")
	}
	if match.Captures[SlotAccountList] != "Boeing, Toshiba and GE" {
		t.Errorf("accountList capture = %q", match.Captures[SlotAccountList])
	}
}

func TestPossessiveOwnerSlot(t *testing.T) {
	trigger := mustCompile(t, "show {owner}'s pipeline")

	match, ok := trigger.MatchMessage("show himanshu's pipeline")
	if !ok {
		t.Fatal("possessive owner trigger did not match")
	}
	if match.Captures[SlotOwner] != "himanshu" {
		t.Errorf("owner capture = %q, want %q", match.Captures[SlotOwner], "himanshu")
	}
}

func TestNumberSlot(t *testing.T) {
	trigger := mustCompile(t, "show next {number}")

	match, ok := trigger.MatchMessage("show next 25")
	if !ok {
		t.Fatal("number trigger did not match")
	}
	if match.Captures[SlotNumber] != "25" {
		t.Errorf("number capture = %q, want %q", match.Captures[SlotNumber], "25")
	}

	if _, ok := trigger.MatchMessage("show next steps"); ok {
		t.Error("non-numeric span bound to {number}")
	}
}

func TestAmountSlot(t *testing.T) {
	trigger := mustCompile(t, "deals over {amount}")

	for _, raw := range []string{"$50k", "$1.2m", "50000", "$50,000"} {
		match, ok := trigger.MatchMessage("deals over " + raw)
		if !ok {
			t.Errorf("amount trigger did not match %q", raw)
			continue
		}
		if match.Captures[SlotAmount] == "" {
			t.Errorf("empty amount capture for %q", raw)
		}
	}
}

func TestCorrectKnownMisspellings(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"show pipline", "show pipeline"},
		{"deal histroy for Boeing", "deal history for Boeing"},
		{"reasign Boeing to Sarah", "reassign Boeing to Sarah"},
		{"show pipeline", "show pipeline"},
		// Only whole tokens are corrected
		{"piplines are fine", "piplines are fine"},
	}

	for _, tt := range tests {
		if got := CorrectKnownMisspellings(tt.in); got != tt.want {
			t.Errorf("CorrectKnownMisspellings(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExclusionVetoes(t *testing.T) {
	exclusion, err := compileExclusion("create account")
	if err != nil {
		t.Fatalf("compileExclusion failed: %v", err)
	}

	if !exclusion.Vetoes("please create account for Acme") {
		t.Error("exact phrase not vetoed")
	}
	if !exclusion.Vetoes("Create   Account now") {
		t.Error("case and spacing variants not vetoed")
	}

	// The word "account" alone, or inside a company name, must not veto.
	if exclusion.Vetoes("create opportunity for Eudia Testing Account") {
		t.Error("vetoed a message that merely contains the word account")
	}
	if exclusion.Vetoes("create accountability metrics") {
		t.Error("vetoed a partial-word match")
	}
}
