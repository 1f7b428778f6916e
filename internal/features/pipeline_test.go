package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_recommender/internal/domain"
)

func booking(hotel string, adr float64) domain.BookingRecord {
	return domain.BookingRecord{
		Hotel:               hotel,
		LeadTime:            30,
		ArrivalYear:         2016,
		ArrivalMonth:        "June",
		ArrivalDay:          15,
		WeekendNights:       2,
		WeekNights:          3,
		Adults:              2,
		Children:            ptr(0),
		Country:             ptr("PRT"),
		MarketSegment:       "Online TA",
		DistributionChannel: "TA/TO",
		CustomerType:        "Transient",
		ADR:                 adr,
	}
}

func ptr[T any](v T) *T { return &v }

func col(t *testing.T, names []string, name string) int {
	t.Helper()
	for i, n := range names {
		if n == name {
			return i
		}
	}
	t.Fatalf("column %q not in %v", name, names)
	return -1
}

func TestFromBooking_ResolvesMissingValues(t *testing.T) {
	b := booking("City Hotel", 90)
	b.Children, b.Country, b.Agent, b.Company = nil, nil, nil, nil

	o, err := FromBooking(b)
	require.NoError(t, err)
	assert.Equal(t, 0, o.Children)
	assert.Equal(t, domain.DefaultCountry, o.Country)
	assert.False(t, o.Business)

	p, vs, err := Fit([]domain.BookingRecord{b, booking("Resort Hotel", 120)})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	for _, v := range vs {
		require.Len(t, v, len(Schema))
		for i, x := range v {
			assert.False(t, math.IsNaN(x) || math.IsInf(x, 0), "component %s is %v", Schema[i], x)
		}
	}
	classes, _ := p.Vocabulary(ColCountry)
	assert.Equal(t, []string{"PRT", "Unknown"}, classes.Classes())
}

func TestFromBooking_EmptyCategoriesBecomeUnknown(t *testing.T) {
	b := booking("", 90)
	b.MarketSegment, b.DistributionChannel, b.CustomerType = "", "", ""

	o, err := FromBooking(b)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategory, o.Hotel)
	assert.Equal(t, domain.DefaultCategory, o.MarketSegment)
	assert.Equal(t, domain.DefaultCategory, o.DistributionChannel)
	assert.Equal(t, domain.DefaultCategory, o.CustomerType)

	p, _, err := Fit([]domain.BookingRecord{b, booking("City Hotel", 120)})
	require.NoError(t, err)
	for _, c := range []string{ColHotel, ColMarketSegment, ColDistributionChannel, ColCustomerType} {
		v, ok := p.Vocabulary(c)
		require.True(t, ok, c)
		_, known := v.Code("")
		assert.False(t, known, "%s learned an empty class", c)
		_, known = v.Code(domain.DefaultCategory)
		assert.True(t, known, c)
	}
}

func TestTransform_IsDeterministic(t *testing.T) {
	p, _, err := Fit([]domain.BookingRecord{booking("City Hotel", 80), booking("Resort Hotel", 200)})
	require.NoError(t, err)

	pref := domain.UserPreference{Budget: ptr(150.0), Adults: ptr(3)}
	a, err := p.TransformPreference(pref)
	require.NoError(t, err)
	b, err := p.TransformPreference(pref)
	require.NoError(t, err)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]), "component %d", i)
	}
}

func TestSeasonFlags(t *testing.T) {
	for m := 1; m <= 12; m++ {
		s, w := IsSummer(m), IsWinter(m)
		assert.False(t, s && w, "month %d is both summer and winter", m)
		switch m {
		case 6, 7, 8:
			assert.True(t, s, "month %d", m)
		case 12, 1, 2:
			assert.True(t, w, "month %d", m)
		default:
			assert.False(t, s || w, "month %d should be shoulder season", m)
		}
	}
}

func TestDerivedFeatures(t *testing.T) {
	p := &Pipeline{names: Schema, vocab: map[string]Vocabulary{
		ColHotel:   FitVocabulary([]string{"City Hotel"}),
		ColCountry: FitVocabulary([]string{"PRT"}),
	}}

	b := booking("City Hotel", 100)
	b.WeekendNights, b.WeekNights = 0, 0
	b.Children = ptr(1)
	b.Babies = 1
	b.Company = ptr(42)
	b.ArrivalMonth = "December"
	o, err := FromBooking(b)
	require.NoError(t, err)
	row, err := p.project(o)
	require.NoError(t, err)

	assert.Equal(t, 0.0, row[col(t, Schema, ColTotalRevenue)], "zero nights means zero revenue")
	assert.Equal(t, 12.0, row[col(t, Schema, ColArrivalMonth)])
	assert.Equal(t, 0.0, row[col(t, Schema, ColIsSummer)])
	assert.Equal(t, 1.0, row[col(t, Schema, ColIsWinter)])
	assert.Equal(t, 4.0, row[col(t, Schema, ColTotalGuests)])
	assert.Equal(t, 1.0, row[col(t, Schema, ColIsFamily)])
	assert.Equal(t, 1.0, row[col(t, Schema, ColIsBusiness)])

	o2, err := FromPreference(domain.UserPreference{
		Budget: ptr(50.0), WeekendNights: ptr(1), WeekNights: ptr(1),
		Adults: ptr(0), TripType: ptr("Business"),
	})
	require.NoError(t, err)
	row, err = p.project(o2)
	require.NoError(t, err)
	assert.Equal(t, 100.0, row[col(t, Schema, ColTotalRevenue)])
	assert.Equal(t, 0.0, row[col(t, Schema, ColTotalGuests)])
	assert.Equal(t, 1.0, row[col(t, Schema, ColIsBusiness)])
	assert.Equal(t, 1.0, row[col(t, Schema, ColIsSummer)], "default arrival month is June")
}

func TestCategoricalEncoding(t *testing.T) {
	p, _, err := Fit([]domain.BookingRecord{
		booking("Resort Hotel", 100),
		booking("City Hotel", 110),
		booking("Resort Hotel", 120),
	})
	require.NoError(t, err)

	hotels, ok := p.Vocabulary(ColHotel)
	require.True(t, ok)
	code, known := hotels.Code("City Hotel")
	assert.True(t, known)
	assert.Equal(t, 0, code)
	code, known = hotels.Code("Resort Hotel")
	assert.True(t, known)
	assert.Equal(t, 1, code)

	// unseen values fall back to the default code instead of failing
	unseen, err := p.TransformPreference(domain.UserPreference{Country: ptr("ZZZ"), Hotel: ptr("Motel")})
	require.NoError(t, err)
	omitted, err := p.TransformPreference(domain.UserPreference{})
	require.NoError(t, err)
	assert.Equal(t, omitted, unseen)

	known2, err := p.TransformPreference(domain.UserPreference{Hotel: ptr("Resort Hotel")})
	require.NoError(t, err)
	assert.NotEqual(t, omitted[col(t, p.Names(), ColHotel)], known2[col(t, p.Names(), ColHotel)])
}

func TestArrivalDate(t *testing.T) {
	d, err := ArrivalDate(2016, "February", 29)
	require.NoError(t, err)
	assert.Equal(t, 2, int(d.Month()))

	_, err = ArrivalDate(2015, "February", 29)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	_, err = ArrivalDate(2015, "Smarch", 1)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	_, err = ArrivalDate(2015, "13", 1)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

	for in, want := range map[string]int{"July": 7, "jul": 7, "7": 7, " december ": 12} {
		m, err := ParseMonth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, int(m), in)
	}
}

func TestFit_EmptyCorpus(t *testing.T) {
	_, _, err := Fit(nil)
	assert.ErrorIs(t, err, domain.ErrInputNotFound)
}

func TestFit_BadRecordFailsWholeFit(t *testing.T) {
	bad := booking("City Hotel", 10)
	bad.ArrivalDay = 31
	bad.ArrivalMonth = "April"
	_, _, err := Fit([]domain.BookingRecord{booking("City Hotel", 10), bad})
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestFromModel_SchemaChecks(t *testing.T) {
	p, _, err := Fit([]domain.BookingRecord{booking("City Hotel", 80), booking("Resort Hotel", 90)})
	require.NoError(t, err)
	sc := p.Scaler()
	good := &domain.FittedModel{
		FeatureNames: p.Names(),
		Means:        sc.Mean,
		Scales:       sc.Scale,
		Vocabularies: p.Vocabularies(),
	}
	_, err = FromModel(good)
	require.NoError(t, err)

	_, err = FromModel(&domain.FittedModel{})
	assert.ErrorIs(t, err, domain.ErrModelNotFitted)

	noVocab := *good
	noVocab.Vocabularies = map[string][]string{ColHotel: {"City Hotel"}}
	_, err = FromModel(&noVocab)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

	unknown := *good
	unknown.FeatureNames = append(append([]string(nil), good.FeatureNames[:22]...), "room_view")
	_, err = FromModel(&unknown)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

	short := *good
	short.Means = good.Means[:3]
	_, err = FromModel(&short)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestScaler(t *testing.T) {
	sc, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, sc.Mean)
	assert.Equal(t, []float64{1, 1}, sc.Scale, "zero variance keeps scale 1")

	out, err := sc.Apply([]float64{4, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, out)

	_, err = sc.Apply([]float64{1})
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}
