package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(t *testing.T, url string) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", url, nil)
	return c
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantPage int
		wantSize int
	}{
		{"defaults", "/recipes", 1, DefaultPageSize},
		{"explicit", "/recipes?page=3&page_size=20", 3, 20},
		{"zero page", "/recipes?page=0", 1, DefaultPageSize},
		{"negative size", "/recipes?page_size=-1", 1, DefaultPageSize},
		{"garbage", "/recipes?page=abc&page_size=xyz", 1, DefaultPageSize},
		{"capped", "/recipes?page_size=5000", 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromQuery(testContext(t, tt.url))
			if p.Page != tt.wantPage || p.PageSize != tt.wantSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", p.Page, p.PageSize, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, PageSize: 10}
	if p.Offset() != 20 {
		t.Errorf("Offset() = %d, want 20", p.Offset())
	}
	if p.Limit() != 10 {
		t.Errorf("Limit() = %d, want 10", p.Limit())
	}
}

func TestEnvelope(t *testing.T) {
	c := testContext(t, "/recipes?page=2&page_size=5")
	p := Params{Page: 2, PageSize: 5}

	page := Envelope(c, p, 12, []string{"a"})
	if page.Count != 12 {
		t.Errorf("count = %d", page.Count)
	}
	if page.Next == nil {
		t.Fatal("page 2 of 3 must have a next link")
	}
	if page.Previous == nil {
		t.Fatal("page 2 must have a previous link")
	}

	next := FromQuery(testContext(t, *page.Next))
	if next.Page != 3 || next.PageSize != 5 {
		t.Errorf("next resolves to page=%d size=%d", next.Page, next.PageSize)
	}
	prev := FromQuery(testContext(t, *page.Previous))
	if prev.Page != 1 {
		t.Errorf("previous resolves to page=%d", prev.Page)
	}

	// Last page has no next.
	last := Envelope(c, Params{Page: 3, PageSize: 5}, 12, nil)
	if last.Next != nil {
		t.Error("last page must not have a next link")
	}
	// First page has no previous.
	first := Envelope(c, Params{Page: 1, PageSize: 5}, 12, nil)
	if first.Previous != nil {
		t.Error("first page must not have a previous link")
	}
}
