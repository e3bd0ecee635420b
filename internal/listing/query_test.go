package listing

import (
	"testing"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

func TestNewQueryState_Defaults(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{10, 10},
		{0, 20},
		{-3, 20},
		{500, 20},
	}
	for _, tt := range tests {
		q := NewQueryState(tt.size).Query()
		if q.PageSize != tt.want || q.PageIndex != 0 {
			t.Errorf("NewQueryState(%d) = %+v, want size %d on page 0", tt.size, q, tt.want)
		}
	}
	if !NewQueryState(20).Dirty() {
		t.Error("a new query state needs its first fetch")
	}
}

func TestQueryState_SearchAndSizeResetPage(t *testing.T) {
	steps := []struct {
		name   string
		change func(*QueryState) error
	}{
		{"search text", func(s *QueryState) error { s.SetSearchText("doglover"); return nil }},
		{"same search text", func(s *QueryState) error { s.SetSearchText(""); return nil }},
		{"page size", func(s *QueryState) error { return s.SetPageSize(50) }},
		{"same page size", func(s *QueryState) error { return s.SetPageSize(20) }},
	}

	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			s := NewQueryState(20)
			if err := s.SetPageIndex(4); err != nil {
				t.Fatalf("SetPageIndex: %v", err)
			}
			s.markClean()

			if err := tt.change(s); err != nil {
				t.Fatalf("change: %v", err)
			}
			if got := s.Query().PageIndex; got != 0 {
				t.Errorf("PageIndex = %d, want 0", got)
			}
			if !s.Dirty() {
				t.Error("expected dirty after change")
			}
		})
	}
}

func TestQueryState_SetPageIndexKeepsRest(t *testing.T) {
	s := NewQueryState(20)
	s.SetSearchText("cat")
	if err := s.SetPageIndex(3); err != nil {
		t.Fatalf("SetPageIndex: %v", err)
	}
	want := domain.PageQuery{SearchText: "cat", PageIndex: 3, PageSize: 20}
	if got := s.Query(); got != want {
		t.Errorf("Query() = %+v, want %+v", got, want)
	}
}

func TestQueryState_SearchTextSurvivesTheWire(t *testing.T) {
	s := NewQueryState(20)
	s.SetSearchText("  hamster ")
	q := s.Query()
	if q.SearchText != "hamster" {
		t.Fatalf("SearchText = %q, want trimmed", q.SearchText)
	}
	if got := pkg.DecodePageQuery(pkg.EncodePageQuery(q)); got != q {
		t.Errorf("wire round trip gave %+v, want %+v", got, q)
	}
}

func TestQueryState_InvalidValuesChangeNothing(t *testing.T) {
	s := NewQueryState(20)
	if err := s.SetPageIndex(2); err != nil {
		t.Fatal(err)
	}
	s.markClean()
	before := s.Query()

	for _, n := range []int{0, -1, 101} {
		err := s.SetPageSize(n)
		if !domain.IsValidation(err) {
			t.Errorf("SetPageSize(%d): expected validation error, got %v", n, err)
		}
	}
	if err := s.SetPageIndex(-1); !domain.IsValidation(err) {
		t.Errorf("SetPageIndex(-1): expected validation error, got %v", err)
	}
	if s.Query() != before {
		t.Errorf("query changed to %+v", s.Query())
	}
	if s.Dirty() {
		t.Error("invalid input must not mark the query dirty")
	}
}
