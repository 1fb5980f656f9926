package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supersignal/internal/contracts"
)

var p = contracts.Ptr[string]

func newMerger(t *testing.T) *Merger {
	t.Helper()
	m, err := New(DefaultPolicy())
	require.NoError(t, err)
	return m
}

func yahooSet() *contracts.RawFieldSet {
	return &contracts.RawFieldSet{
		Source: contracts.SourceYahoo,
		Ticker: "BABA",
		SecurityFields: contracts.SecurityFields{
			Name:        p("Alibaba Group Holding Limited"),
			Country:     p("China"),
			HQAddress:   p("969 West Wen Yi Road, Hangzhou"),
			IsADR:       contracts.Ptr(false),
			FloatShares: contracts.Ptr(int64(2_000_000_000)),
			Price:       contracts.Ptr(80.5),
			Sector:      p("  "), // blank counts as missing
		},
	}
}

func finvizSet() *contracts.RawFieldSet {
	return &contracts.RawFieldSet{
		Source: contracts.SourceFinviz,
		Ticker: "BABA",
		SecurityFields: contracts.SecurityFields{
			Name:          p("Alibaba Group Holding Ltd ADR"),
			IsADR:         contracts.Ptr(true),
			Sector:        p("Consumer Cyclical"),
			ShortPctFloat: contracts.Ptr(0.021),
			Price:         contracts.Ptr(80.1),
		},
	}
}

func TestMerge_PriorityAndProvenance(t *testing.T) {
	rec, err := newMerger(t).Merge("BABA", []*contracts.RawFieldSet{yahooSet(), finvizSet()})
	require.NoError(t, err)

	// yahoo wins by default
	assert.Equal(t, "Alibaba Group Holding Limited", *rec.Name)
	assert.Equal(t, contracts.SourceYahoo, rec.Provenance[contracts.FieldName])
	assert.Equal(t, 80.5, *rec.Price)

	// finviz wins the ADR override
	assert.True(t, *rec.IsADR)
	assert.Equal(t, contracts.SourceFinviz, rec.Provenance[contracts.FieldIsADR])

	// fall through on blank and missing values
	assert.Equal(t, "Consumer Cyclical", *rec.Sector)
	assert.Equal(t, contracts.SourceFinviz, rec.Provenance[contracts.FieldSector])
	assert.Equal(t, contracts.SourceFinviz, rec.Provenance[contracts.FieldShortPctFloat])

	// absent everywhere stays unknown
	assert.Nil(t, rec.HQCountry)
	_, ok := rec.SourceOf(contracts.FieldHQCountry)
	assert.False(t, ok)
}

func TestMerge_ProvenanceMatchesPopulatedFields(t *testing.T) {
	rec, err := newMerger(t).Merge("BABA", []*contracts.RawFieldSet{yahooSet(), finvizSet()})
	require.NoError(t, err)

	populated := map[contracts.Field]bool{
		contracts.FieldName:          rec.Name != nil,
		contracts.FieldCountry:       rec.Country != nil,
		contracts.FieldHQCountry:     rec.HQCountry != nil,
		contracts.FieldHQAddress:     rec.HQAddress != nil,
		contracts.FieldIsADR:         rec.IsADR != nil,
		contracts.FieldFloatShares:   rec.FloatShares != nil,
		contracts.FieldPrice:         rec.Price != nil,
		contracts.FieldSector:        rec.Sector != nil,
		contracts.FieldShortPctFloat: rec.ShortPctFloat != nil,
		contracts.FieldMarketCap:     rec.MarketCap != nil,
		contracts.FieldDirectors:     rec.Directors != nil,
	}
	for f, has := range populated {
		_, inProv := rec.Provenance[f]
		assert.Equal(t, has, inProv, "field %s", f)
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	m := newMerger(t)

	a, err := m.Merge("BABA", []*contracts.RawFieldSet{yahooSet(), finvizSet()})
	require.NoError(t, err)
	b, err := m.Merge("BABA", []*contracts.RawFieldSet{finvizSet(), yahooSet()})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestMerge_UnnamedSourceAppendedLexically(t *testing.T) {
	extra := &contracts.RawFieldSet{
		Source:         contracts.Source("alpha"),
		SecurityFields: contracts.SecurityFields{Name: p("Alpha Name"), Website: p("https://alpha.example")},
	}
	rec, err := newMerger(t).Merge("BABA", []*contracts.RawFieldSet{extra, finvizSet()})
	require.NoError(t, err)

	// finviz is named in the default order, so it beats the unnamed source
	assert.Equal(t, "Alibaba Group Holding Ltd ADR", *rec.Name)
	assert.Equal(t, "https://alpha.example", *rec.Website)
	assert.Equal(t, contracts.Source("alpha"), rec.Provenance[contracts.FieldWebsite])
}

func TestMerge_DirectorsBlankEntriesDropped(t *testing.T) {
	set := yahooSet()
	set.Directors = []string{" ", ""}
	other := finvizSet()
	other.Directors = []string{"Jane Doe – Independent Director"}

	rec, err := newMerger(t).Merge("BABA", []*contracts.RawFieldSet{set, other})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe – Independent Director"}, rec.Directors)
	assert.Equal(t, contracts.SourceFinviz, rec.Provenance[contracts.FieldDirectors])
}

func TestMerge_NoData(t *testing.T) {
	yahooErr := errors.New("yahoo: not found")
	finvizErr := errors.New("finviz: rate limited")

	rec, err := newMerger(t).Merge("ZZZZ", nil, yahooErr, finvizErr)
	assert.Nil(t, rec)

	var mergeErr *MergeError
	require.True(t, errors.As(err, &mergeErr))
	assert.Equal(t, "ZZZZ", mergeErr.Ticker)
	assert.True(t, errors.Is(err, ErrNoData))
	assert.True(t, errors.Is(err, yahooErr))
	assert.True(t, errors.Is(err, finvizErr))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestMerge_DuplicateSource(t *testing.T) {
	_, err := newMerger(t).Merge("BABA", []*contracts.RawFieldSet{yahooSet(), yahooSet()})
	assert.True(t, errors.Is(err, ErrDuplicateSource))
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	set := yahooSet()
	rec, err := newMerger(t).Merge("BABA", []*contracts.RawFieldSet{set})
	require.NoError(t, err)

	*set.Name = "changed"
	assert.Equal(t, "Alibaba Group Holding Limited", *rec.Name)
}
