package encoder

import (
	"math"
	"strings"
	"testing"

	"github.com/mevdschee/qsbulk/record"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"plain", "plain"},
		{"A'B", `A\'B`},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
		{"line1\nline2\r", `line1\nline2\r`},
		{"nul\x00ctrlz\x1a", `nul\0ctrlz\Z`},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := Escape(tt.in)
			if got != tt.expected {
				t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.expected)
			}
			if back := unescape(got); back != tt.in {
				t.Errorf("unescape(%q) = %q, want %q", got, back, tt.in)
			}
		})
	}
}

func TestEscape_WorstCaseDoublesLength(t *testing.T) {
	in := strings.Repeat("'", 4096)
	got := Escape(in)
	if len(got) != 2*len(in) {
		t.Fatalf("Expected escaped length %d, got %d", 2*len(in), len(got))
	}
	if unescape(got) != in {
		t.Error("Expected escaping to round-trip without loss")
	}
}

func TestEncode_Speech(t *testing.T) {
	rec := record.Speech{From: "A'B", To: "C", Message: "hi", MinStatus: 0, GuildDBID: 5, Type: 1}

	got := Encode(rec)
	if len(got) != 1 {
		t.Fatalf("Expected 1 tuple, got %d", len(got))
	}
	if got[0] != `('A\'B','C','hi',0,5,1)` {
		t.Errorf("Unexpected tuple: %s", got[0])
	}
}

func TestEncode_Tuples(t *testing.T) {
	tests := []struct {
		name     string
		rec      record.Record
		expected []string
	}{
		{
			name: "item delete",
			rec:  record.ItemDelete{CharID: 7, CharSlot: 22, ItemID: 1001, Charges: 1, StackSize: 1, CharCount: 1},
			expected: []string{
				"(7,22,1001,1,1,1,NOW())",
			},
		},
		{
			name: "item move",
			rec: record.ItemMove{CharID: 7, StackSize: 1, CharCount: 2, PostAction: true, Items: []record.MovedItem{
				{FromSlot: 22, ToSlot: 30, ItemID: 1001, Charges: 1},
				{FromSlot: 23, ToSlot: 31, ItemID: 1002, Charges: 0},
			}},
			expected: []string{
				"(7,22,30,1001,1,1,2,1)",
				"(7,23,31,1002,0,1,2,1)",
			},
		},
		{
			name: "merchant transaction",
			rec: record.MerchantTransaction{
				CharID: 7, CharSlot: 22, ItemID: 13005, Charges: 1, ZoneID: 202, MerchantID: 9,
				MerchantMoney: record.Money{Platinum: 1, Gold: 2, Silver: 3, Copper: 4}, MerchantCount: 0,
				CharMoney: record.Money{}, CharCount: 1,
			},
			expected: []string{
				"(7,22,13005,1,202,9,1,2,3,4,0,0,0,0,0,1,NOW())",
			},
		},
		{
			name: "aa rate hourly",
			rec:  record.AARateHourly{CharID: 7, AddPoints: 3},
			expected: []string{
				"(7,3,UNIX_TIMESTAMP() - MOD(UNIX_TIMESTAMP(), 3600))",
			},
		},
		{
			name: "aa purchase",
			rec:  record.AAPurchase{CharID: 7, AAType: "General", AAName: "Innate Strength", AAID: 2, Cost: 1, ZoneID: 202},
			expected: []string{
				"(7,'General','Innate Strength',2,1,202)",
			},
		},
		{
			name: "tradeskill event",
			rec:  record.TradeskillEvent{CharID: 7, ZoneID: 202, Results: "Success", RecipeID: 55, Tradeskill: 60, Trivial: 31, Chance: 0.5},
			expected: []string{
				"(7,202,'Success',55,60,31,0.500000)",
			},
		},
		{
			name: "qglobal update",
			rec:  record.QGlobalUpdate{CharID: 7, Action: "Update", ZoneID: 202, VarName: "flag", NewValue: "it's set"},
			expected: []string{
				`(7,'Update',202,'flag','it\'s set')`,
			},
		},
		{
			name: "loot",
			rec: record.Loot{CharID: 7, CorpseName: "a_gnoll's_corpse", Type: "Item", ZoneID: 54, ItemID: 13073,
				ItemName: "Bone Chips", Charges: 1, Money: record.Money{Copper: 5}},
			expected: []string{
				`(7,'a_gnoll\'s_corpse','Item',54,13073,'Bone Chips',1,0,0,0,5)`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.rec)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d tuples, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Tuple %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestEncode_Filtered(t *testing.T) {
	tests := []struct {
		name string
		rec  record.Record
	}{
		{"nil", nil},
		{"item delete with zero count", record.ItemDelete{CharID: 7, ItemID: 1001}},
		{"item move with zero count", record.ItemMove{CharID: 7, Items: []record.MovedItem{{ItemID: 1}}}},
		{"item move without items", record.ItemMove{CharID: 7, CharCount: 1}},
		{"merchant with both counts zero", record.MerchantTransaction{CharID: 7, ItemID: 1}},
		{"aa rate with zero char", record.AARateHourly{AddPoints: 3}},
		{"aa purchase with zero char", record.AAPurchase{AAName: "x"}},
		{"tradeskill with zero char", record.TradeskillEvent{RecipeID: 1}},
		{"tradeskill with NaN chance", record.TradeskillEvent{CharID: 7, Chance: float32(math.NaN())}},
		{"tradeskill with infinite chance", record.TradeskillEvent{CharID: 7, Chance: float32(math.Inf(1))}},
		{"tradeskill with negative infinite chance", record.TradeskillEvent{CharID: 7, Chance: float32(math.Inf(-1))}},
		{"qglobal with zero char", record.QGlobalUpdate{VarName: "x"}},
		{"loot with zero char", record.Loot{ItemID: 1}},
		{"raw statement is not registered", record.RawStatement{SQL: "SELECT 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.rec); len(got) != 0 {
				t.Errorf("Expected no output, got %v", got)
			}
		})
	}
}

func TestEncode_MerchantOneSideCount(t *testing.T) {
	got := Encode(record.MerchantTransaction{CharID: 7, MerchantCount: 1})
	if len(got) != 1 {
		t.Errorf("Expected merchant-side count alone to produce a tuple, got %v", got)
	}
}

func TestEntry_RejectsForeignRecord(t *testing.T) {
	e, ok := Lookup(record.KindLoot)
	if !ok {
		t.Fatal("Expected loot entry to be registered")
	}
	if got := e.Encode(record.Speech{From: "a"}); got != nil {
		t.Errorf("Expected nil for mismatched record type, got %v", got)
	}
}

func TestEntries_Order(t *testing.T) {
	entries := Entries()
	if len(entries) != record.NumKinds-1 {
		t.Fatalf("Expected %d entries, got %d", record.NumKinds-1, len(entries))
	}
	seen := make(map[string]bool)
	for i, e := range entries {
		if e.Kind != record.Kind(i) {
			t.Errorf("Entry %d: expected kind %v, got %v", i, record.Kind(i), e.Kind)
		}
		if seen[e.Table] {
			t.Errorf("Table %s registered twice", e.Table)
		}
		seen[e.Table] = true
	}
	if _, ok := Lookup(record.KindRawStatement); ok {
		t.Error("Expected raw statements to bypass the registry")
	}
}

func TestBuildInsert(t *testing.T) {
	if stmt, ok := BuildInsert("t", nil); ok || stmt != "" {
		t.Errorf("Expected no statement for empty tuples, got %q", stmt)
	}

	stmt, ok := BuildInsert("t", []string{"(1,2)", "(3,4)"})
	if !ok {
		t.Fatal("Expected a statement")
	}
	if stmt != "INSERT INTO `t` VALUES (1,2),(3,4);" {
		t.Errorf("Unexpected statement: %s", stmt)
	}

	stmt, _ = BuildInsert("we`ird", []string{"(1)"})
	if stmt != "INSERT INTO `we``ird` VALUES (1);" {
		t.Errorf("Expected backtick to be doubled, got %s", stmt)
	}
}

// unescape reverses Escape
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '0':
			b.WriteByte(0)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'Z':
			b.WriteByte(0x1a)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
