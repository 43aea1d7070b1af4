package models

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		limit int
		want  int
	}{
		{"empty result still has one page", 0, 10, 1},
		{"exact multiple", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"single item", 1, 100, 1},
		{"limit above cap is clamped", 250, 500, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]int{}, PageRequest{Page: 1, Limit: tt.limit}, tt.total)
			assert.Equal(t, tt.want, p.TotalPage)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestNewPageNilItemsBecomeEmpty(t *testing.T) {
	p := NewPage[string](nil, PageRequest{}, 0)
	require.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageLimit, p.Limit)
}

func TestPageRequestNormalize(t *testing.T) {
	r := PageRequest{Page: -3, Limit: 0, Sort: "sideways"}.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, DefaultPageLimit, r.Limit)
	assert.Equal(t, SortDesc, r.Sort)

	r = PageRequest{Page: 3, Limit: 1000, Sort: SortAsc}.Normalize()
	assert.Equal(t, 3, r.Page)
	assert.Equal(t, MaxPageLimit, r.Limit)
	assert.Equal(t, SortAsc, r.Sort)
}

func TestPageRequestOffsetAndOrder(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, PageRequest{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, (MaxPage-1)*MaxPageLimit, PageRequest{Page: math.MaxInt, Limit: MaxPageLimit}.Offset())
	assert.GreaterOrEqual(t, PageRequest{Page: math.MaxInt / 10, Limit: 1000}.Offset(), 0)
	assert.Equal(t, "created_at DESC", PageRequest{}.OrderBy())
	assert.Equal(t, "created_at ASC", PageRequest{Sort: SortAsc}.OrderBy())
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortAsc, ParseSortOrder(" asc "))
	assert.Equal(t, SortDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
}

func TestParseOfferStatusFilter(t *testing.T) {
	s, ok := ParseOfferStatusFilter("")
	assert.True(t, ok)
	assert.Equal(t, OfferStatusAll, s)

	s, ok = ParseOfferStatusFilter("PENDING")
	assert.True(t, ok)
	assert.Equal(t, OfferStatusPending, s)

	_, ok = ParseOfferStatusFilter("REJECTED")
	assert.False(t, ok)
}

func TestMergeUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, MergeUnique([]string{"a", "b"}, "b", "c", "c"))
	assert.Equal(t, []string{"x"}, MergeUnique(nil, "x", "x"))
	assert.Equal(t, []string{}, MergeUnique(nil))
}

func TestPatchBuilders(t *testing.T) {
	var p Patch
	assert.True(t, p.IsEmpty())
	p.SetField("title", "t").Add("tags", "go", "fiber")
	assert.False(t, p.IsEmpty())
	assert.Equal(t, "t", p.Set["title"])
	assert.Equal(t, []string{"go", "fiber"}, p.AddToSet["tags"])
}

func TestAppErrorHelpers(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewConflictError("post already received"))
	assert.True(t, IsCode(err, CodeConflict))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.Equal(t, CodeConflict, ErrorCode(err))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))

	internal := NewInternalError(errors.New("db down"))
	assert.Equal(t, "Internal server error: db down", internal.Error())
	assert.EqualError(t, errors.Unwrap(internal), "db down")

	nf := NewNotFoundError("Post", "abc")
	assert.Equal(t, "Post with ID abc not found", nf.Error())
}

func TestEnumValidators(t *testing.T) {
	assert.True(t, ValidJobType(JobTypeTester))
	assert.False(t, ValidJobType("plumber"))
	assert.True(t, ValidServiceType(ServiceTypeOther))
	assert.True(t, ValidPostStatus("CLOSED"))
	assert.False(t, ValidPostStatus("closed"))
	assert.True(t, ValidMajor(MajorDesigner))
	assert.False(t, Relation("liked").Valid())
}

func TestUserBeforeCreateDefaults(t *testing.T) {
	u := &User{}
	require.NoError(t, u.BeforeCreate(nil))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "user", u.Claims["customRole"])
	assert.NotNil(t, u.Majors)

	p := &Post{}
	require.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, PostStatusActive, p.Status)

	o := &Offer{}
	require.NoError(t, o.BeforeCreate(nil))
	assert.Equal(t, OfferStatusPending, o.Status)
}
