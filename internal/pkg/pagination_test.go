package pkg

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	dbtest "gorm.io/gorm/utils/tests"

	"github.com/simp-lee/petadmin/internal/domain"
)

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestParsePageQuery_Defaults(t *testing.T) {
	c := newTestContext(url.Values{})
	q := ParsePageQuery(c)

	if q.PageIndex != 0 {
		t.Errorf("expected PageIndex=0, got %d", q.PageIndex)
	}
	if q.PageSize != 20 {
		t.Errorf("expected PageSize=20, got %d", q.PageSize)
	}
	if q.SearchText != "" {
		t.Errorf("expected empty SearchText, got %q", q.SearchText)
	}
}

func TestParsePageQuery_CustomValues(t *testing.T) {
	c := newTestContext(url.Values{
		"query": {" doglover "},
		"page":  {"3"},
		"size":  {"50"},
	})
	q := ParsePageQuery(c)

	if q.PageIndex != 3 {
		t.Errorf("expected PageIndex=3, got %d", q.PageIndex)
	}
	if q.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", q.PageSize)
	}
	if q.SearchText != "doglover" {
		t.Errorf("expected SearchText=doglover, got %q", q.SearchText)
	}
}

func TestDecodePageQuery_Clamping(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantPage  int
		wantSize  int
	}{
		{"negative page", url.Values{"page": {"-5"}}, 0, 20},
		{"invalid page", url.Values{"page": {"abc"}}, 0, 20},
		{"zero size", url.Values{"size": {"0"}}, 0, 20},
		{"negative size", url.Values{"size": {"-5"}}, 0, 20},
		{"size above maximum", url.Values{"size": {"200"}}, 0, 100},
		{"invalid size", url.Values{"size": {"abc"}}, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := DecodePageQuery(tt.values)
			if q.PageIndex != tt.wantPage {
				t.Errorf("PageIndex: want %d, got %d", tt.wantPage, q.PageIndex)
			}
			if q.PageSize != tt.wantSize {
				t.Errorf("PageSize: want %d, got %d", tt.wantSize, q.PageSize)
			}
		})
	}
}

func TestPageQuery_RoundTrip(t *testing.T) {
	tests := []domain.PageQuery{
		{SearchText: "abc", PageIndex: 2, PageSize: 20},
		{SearchText: "", PageIndex: 0, PageSize: 10},
		{SearchText: "a b&c=d", PageIndex: 7, PageSize: 100},
		{SearchText: " abc", PageIndex: 1, PageSize: 20},
		{SearchText: "abc\t ", PageIndex: 0, PageSize: 20},
	}

	for _, want := range tests {
		encoded := EncodePageQuery(want).Encode()
		parsed, err := url.ParseQuery(encoded)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", encoded, err)
		}
		if got := DecodePageQuery(parsed); got != want {
			t.Errorf("round trip of %+v via %q gave %+v", want, encoded, got)
		}
	}
}

func TestEncodePageQuery_OmitsEmptySearch(t *testing.T) {
	values := EncodePageQuery(domain.PageQuery{PageIndex: 1, PageSize: 20})
	if _, ok := values["query"]; ok {
		t.Error("expected query parameter to be omitted")
	}
	if values.Get("page") != "1" || values.Get("size") != "20" {
		t.Errorf("unexpected values %v", values)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{99, 10, 10},
		{101, 10, 11},
		{5, 0, 0},
		{-1, 10, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d): want %d, got %d", tt.total, tt.pageSize, tt.want, got)
		}
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		items     []string
		total     int64
		page      int
		pageSize  int
		wantPages int
		wantItems int
	}{
		{"exact division", []string{"a", "b"}, 10, 0, 5, 2, 2},
		{"with remainder", []string{"a"}, 11, 2, 5, 3, 1},
		{"zero total", nil, 0, 0, 20, 0, 0},
		{"single page", []string{"a", "b", "c"}, 3, 0, 20, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.PageQuery{PageIndex: tt.page, PageSize: tt.pageSize}
			result := NewPageResult(tt.items, tt.total, q)

			if result.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: want %d, got %d", tt.wantPages, result.TotalPages)
			}
			if len(result.Items) != tt.wantItems {
				t.Errorf("Items count: want %d, got %d", tt.wantItems, len(result.Items))
			}
			if result.TotalItems != tt.total {
				t.Errorf("TotalItems: want %d, got %d", tt.total, result.TotalItems)
			}
			if result.PageIndex != tt.page {
				t.Errorf("PageIndex: want %d, got %d", tt.page, result.PageIndex)
			}
			if result.PageSize != tt.pageSize {
				t.Errorf("PageSize: want %d, got %d", tt.pageSize, result.PageSize)
			}
		})
	}
}

func TestNewPageResult_NilItemsBecomesEmptySlice(t *testing.T) {
	result := NewPageResult[string](nil, 0, domain.PageQuery{PageSize: 10})

	if result.Items == nil {
		t.Error("expected non-nil Items slice")
	}
}

func TestIsAllowed(t *testing.T) {
	allowed := []string{"nickname", "email", "status"}

	if !isAllowed("nickname", allowed) {
		t.Error("expected 'nickname' to be allowed")
	}
	if isAllowed("password_hash", allowed) {
		t.Error("expected 'password_hash' to not be allowed")
	}
	if isAllowed("", allowed) {
		t.Error("expected empty string to not be allowed")
	}
}

func TestValidFieldName(t *testing.T) {
	valid := []string{"id", "nickname", "created_at", "author_id", "_private"}
	invalid := []string{"", "1field", "name;DROP", "field name", "a.b", "a-b"}

	for _, f := range valid {
		if !validFieldName.MatchString(f) {
			t.Errorf("expected %q to be valid", f)
		}
	}
	for _, f := range invalid {
		if validFieldName.MatchString(f) {
			t.Errorf("expected %q to be invalid", f)
		}
	}
}

// --------------- helpers for GORM scope tests ---------------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

// --------------- Sort scope ---------------

func TestSort(t *testing.T) {
	tests := []struct {
		name    string
		sort    string
		allowed []string
		applied bool
	}{
		{"valid field asc", "nickname:asc", []string{"nickname", "email"}, true},
		{"valid field desc", "id:desc", []string{"id", "nickname"}, true},
		{"empty uses default", "", []string{"id"}, true},
		{"field not in allowed list", "password_hash:asc", []string{"nickname"}, false},
		{"malformed no colon", "nickname", []string{"nickname"}, false},
		{"empty direction", "nickname:", []string{"nickname"}, false},
		{"invalid direction", "nickname:up", []string{"nickname"}, false},
		{"sql injection in field", "nickname;DROP TABLE members--:asc", []string{"nickname"}, false},
		{"empty field", ":asc", []string{"nickname"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sort(tt.sort, tt.allowed)(newTestDB(t))
			_, hasOrder := result.Statement.Clauses["ORDER BY"]
			if hasOrder != tt.applied {
				t.Errorf("Order clause applied=%v, want %v", hasOrder, tt.applied)
			}
		})
	}
}

// --------------- Search scope ---------------

func TestSearch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		fields  []string
		applied bool
	}{
		{"single field", "dog", []string{"nickname"}, true},
		{"several fields", "dog", []string{"nickname", "email"}, true},
		{"blank text", "   ", []string{"nickname"}, false},
		{"no fields", "dog", nil, false},
		{"only invalid fields", "dog", []string{"nickname OR 1=1"}, false},
		{"mixed valid and invalid", "dog", []string{"nickname;--", "email"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Search(tt.text, tt.fields...)(newTestDB(t))
			_, hasWhere := result.Statement.Clauses["WHERE"]
			if hasWhere != tt.applied {
				t.Errorf("Where clause applied=%v, want %v", hasWhere, tt.applied)
			}
		})
	}
}

// --------------- Paginate scope ---------------

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
	}{
		{"first page", 0, 10},
		{"second page", 1, 20},
		{"large page number", 100, 50},
		{"zero size falls back", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.PageQuery{PageIndex: tt.page, PageSize: tt.pageSize}
			result := Paginate(q)(newTestDB(t))
			_, hasLimit := result.Statement.Clauses["LIMIT"]
			if !hasLimit {
				t.Error("expected LIMIT clause to be applied")
			}
		})
	}
}
