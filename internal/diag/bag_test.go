package diag

import (
	"testing"

	"cstrict/internal/source"
)

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Code: StyleLineTooLong, Severity: SevShould, Primary: source.Span{Start: 30, End: 40}})
	b.Add(Diagnostic{Code: SecBannedAPI, Severity: SevMust, Primary: source.Span{Start: 10, End: 14}})
	b.Add(Diagnostic{Code: NamingLocalCase, Severity: SevShould, Primary: source.Span{Start: 10, End: 14}})

	b.Sort()

	items := b.Items()
	if items[0].Code != SecBannedAPI {
		t.Fatalf("expected MUST first on equal span, got %s", items[0].Code)
	}
	if items[1].Code != NamingLocalCase {
		t.Fatalf("expected naming second, got %s", items[1].Code)
	}
	if items[2].Code != StyleLineTooLong {
		t.Fatalf("expected later span last, got %s", items[2].Code)
	}
}

func TestBagCapacity(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{Code: LexUnknownChar}) {
		t.Fatalf("first add should succeed")
	}
	if b.Add(Diagnostic{Code: LexUnknownChar}) {
		t.Fatalf("second add should be dropped")
	}
}

func TestCategoryOfRanges(t *testing.T) {
	cases := []struct {
		code Code
		cat  Category
	}{
		{NamingLocalCase, CatNaming},
		{FuncMultipleReturn, CatFunctions},
		{HeaderMissingGuard, CatHeaders},
		{StyleNullComparison, CatStyle},
		{DebugMacroShape, CatDebugging},
		{SystemMissingGuard, CatSystemUsage},
		{SecFormatTaint, CatSecurity},
		{ErrResourceLeak, CatErrorHandling},
		{CondIfZero, CatCondComp},
		{LexUnterminatedString, CatStyle},
	}
	for _, tc := range cases {
		if got := CategoryOf(tc.code); got != tc.cat {
			t.Fatalf("%s: got %s, want %s", tc.code, got, tc.cat)
		}
	}
}

func TestOverrideReporter(t *testing.T) {
	bag := NewBag(10)
	r := OverrideReporter{
		Next: BagReporter{Bag: bag},
		Overrides: map[Code]SeverityOverride{
			SecDiscouragedAPI: {Severity: SevMust},
			StyleLineTooLong:  {Disabled: true},
		},
	}

	r.Report(SecDiscouragedAPI, SevShould, source.Span{}, "strcpy", nil, nil)
	r.Report(StyleLineTooLong, SevShould, source.Span{}, "long line", nil, nil)
	r.Report(SecBannedAPI, SevMust, source.Span{}, "gets", nil, nil)

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if bag.Items()[0].Severity != SevMust {
		t.Fatalf("override to MUST not applied")
	}
}
