package catalog

import (
	"strings"
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	intents := cat.Intents()
	if len(intents) == 0 {
		t.Fatal("embedded catalog has no intents")
	}

	for i := 1; i < len(intents); i++ {
		prev, cur := intents[i-1], intents[i]
		if prev.Priority < cur.Priority {
			t.Errorf("intents out of priority order: %s(%d) before %s(%d)",
				prev.ID, prev.Priority, cur.ID, cur.Priority)
		}
		if prev.Priority == cur.Priority && prev.ID >= cur.ID {
			t.Errorf("equal-priority intents not ordered by id: %s before %s", prev.ID, cur.ID)
		}
	}

	for _, id := range []string{
		"batch_move_to_nurture", "move_to_nurture", "reassign_account",
		"create_opportunity", "account_lookup", "pipeline_summary", "help",
	} {
		if cat.Intent(id) == nil {
			t.Errorf("embedded catalog missing intent %q", id)
		}
	}

	if cat.Intent("batch_move_to_nurture").Priority <= cat.Intent("move_to_nurture").Priority {
		t.Error("batch nurture must outrank single nurture")
	}
}

func TestStageLabels(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	tests := []struct {
		ref  string
		want []string
	}{
		{"5", []string{"Negotiation"}},
		{"negotiation", []string{"Negotiation"}},
		{"SQO", []string{"SQO"}},
		{"closed won", []string{"Closed Won"}},
		{"early stage", []string{"Prospecting", "Discovery"}},
		{"mid stage", []string{"SQO", "Proposal"}},
		{"late stage", []string{"Negotiation"}},
		{" Nurture ", []string{"Nurture"}},
	}

	for _, tt := range tests {
		got := cat.StageLabels(tt.ref)
		if len(got) != len(tt.want) {
			t.Errorf("StageLabels(%q) = %v, want %v", tt.ref, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("StageLabels(%q)[%d] = %q, want %q", tt.ref, i, got[i], tt.want[i])
			}
		}
	}

	if labels := cat.StageLabels("stage 99"); labels != nil {
		t.Errorf("unknown stage reference returned %v, want nil", labels)
	}
}

func TestParseRejectsStructuralDefects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"invalid json", `{`},
		{"no patterns", `{"patterns": {}}`},
		{
			"missing priority",
			`{"patterns": {"x": {"description": "d", "triggers": ["help"]}}}`,
		},
		{
			"negative priority",
			`{"patterns": {"x": {"priority": -5, "description": "d", "triggers": ["help"]}}}`,
		},
		{
			"empty description",
			`{"patterns": {"x": {"priority": 10, "description": "  ", "triggers": ["help"]}}}`,
		},
		{
			"no triggers",
			`{"patterns": {"x": {"priority": 10, "description": "d", "triggers": []}}}`,
		},
		{
			"bad slot in trigger",
			`{"patterns": {"x": {"priority": 10, "description": "d", "triggers": ["{account} {account}"]}}}`,
		},
		{
			"empty stage mapping entry",
			`{"patterns": {"x": {"priority": 10, "description": "d", "triggers": ["help"]}}, "stage_mapping": {"1": []}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.json)); err == nil {
				t.Error("Parse accepted a defective catalog")
			}
		})
	}
}

func TestParseDeclarationOrderIndependence(t *testing.T) {
	first := `{"patterns": {
		"aaa": {"priority": 50, "description": "a", "triggers": ["alpha query"]},
		"bbb": {"priority": 50, "description": "b", "triggers": ["beta query"]},
		"top": {"priority": 90, "description": "t", "triggers": ["top query"]}
	}}`
	second := `{"patterns": {
		"top": {"priority": 90, "description": "t", "triggers": ["top query"]},
		"bbb": {"priority": 50, "description": "b", "triggers": ["beta query"]},
		"aaa": {"priority": 50, "description": "a", "triggers": ["alpha query"]}
	}}`

	catA, err := Parse([]byte(first))
	if err != nil {
		t.Fatalf("Parse(first) failed: %v", err)
	}
	catB, err := Parse([]byte(second))
	if err != nil {
		t.Fatalf("Parse(second) failed: %v", err)
	}

	var orderA, orderB []string
	for _, in := range catA.Intents() {
		orderA = append(orderA, in.ID)
	}
	for _, in := range catB.Intents() {
		orderB = append(orderB, in.ID)
	}

	if strings.Join(orderA, ",") != strings.Join(orderB, ",") {
		t.Errorf("declaration order leaked into intent order: %v vs %v", orderA, orderB)
	}
	if orderA[0] != "top" || orderA[1] != "aaa" || orderA[2] != "bbb" {
		t.Errorf("unexpected intent order: %v", orderA)
	}
}

func TestIntentEntityRequirements(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	reassign := cat.Intent("reassign_account")
	if !reassign.Requires(EntityAccounts) || !reassign.Requires(EntityOwner) {
		t.Error("reassign_account must require accounts and owner")
	}

	create := cat.Intent("create_opportunity")
	if !create.Wants(EntityAmount) || create.Requires(EntityAmount) {
		t.Error("create_opportunity amount must be optional")
	}
	if create.Wants(EntityPagination) {
		t.Error("create_opportunity must not want pagination")
	}
}
