package query_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/query"
)

func TestNew(t *testing.T) {
	t.Run("Should ignore empty parameters", func(t *testing.T) {
		f := query.New("", "")
		assert.Equal(t, bson.D{}, f.BSON())
		assert.True(t, f.Match(model.Tyre{Brand: "MRF", Size: "400*8"}))
	})

	t.Run("Should filter on size alone", func(t *testing.T) {
		f := query.New("", "275*18")
		assert.Equal(t, bson.D{
			{Key: "size", Value: bson.D{
				{Key: "$regex", Value: `275\*18`},
				{Key: "$options", Value: "i"},
			}},
		}, f.BSON())
	})
}

func TestFilter_BSON(t *testing.T) {
	f := query.New("mrf", "90/100*10")

	expected := bson.D{
		{Key: "brand", Value: bson.D{
			{Key: "$regex", Value: "mrf"},
			{Key: "$options", Value: "i"},
		}},
		{Key: "size", Value: bson.D{
			{Key: "$regex", Value: `90/100\*10`},
			{Key: "$options", Value: "i"},
		}},
	}
	assert.Equal(t, expected, f.BSON())
}

func TestFilter_BSON_EscapesPatternSyntax(t *testing.T) {
	inputs := []string{
		"400*8",
		".*",
		"^MRF$",
		"(a|b)",
		"[A-Z]+",
		`back\slash`,
		"a{2,}",
		"?",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			doc := query.New(in, "").BSON()
			require.Len(t, doc, 1)

			cond, ok := doc[0].Value.(bson.D)
			require.True(t, ok)
			pattern, ok := cond[0].Value.(string)
			require.True(t, ok)

			re := regexp.MustCompile("(?i)" + pattern)
			assert.True(t, re.MatchString("xx"+in+"yy"), "escaped pattern must match the literal")
			assert.Equal(t, []int{2, 2 + len(in)}, re.FindStringIndex("xx"+in+"yy"))
		})
	}
}

func TestFilter_SQL(t *testing.T) {
	t.Run("Should render TRUE for empty filter", func(t *testing.T) {
		where, args := query.New("", "").SQL(1)
		assert.Equal(t, "TRUE", where)
		assert.Empty(t, args)
	})

	t.Run("Should AND conditions and escape wildcards", func(t *testing.T) {
		where, args := query.New("50%_off", `a\b`).SQL(3)
		assert.Equal(t,
			`brand ILIKE '%' || $3 || '%' ESCAPE '\' AND size ILIKE '%' || $4 || '%' ESCAPE '\'`,
			where)
		assert.Equal(t, []any{`50\%\_off`, `a\\b`}, args)
	})
}

func TestFilter_Match(t *testing.T) {
	tyre := model.Tyre{Brand: "TVS", Size: "275*18"}

	cases := []struct {
		name  string
		brand string
		size  string
		want  bool
	}{
		{name: "empty filter", want: true},
		{name: "brand case insensitive", brand: "tvs", want: true},
		{name: "size substring", size: "5*1", want: true},
		{name: "both conditions", brand: "TV", size: "275*18", want: true},
		{name: "one condition fails", brand: "TVS", size: "300*18", want: false},
		{name: "pattern is literal", brand: "T.S", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, query.New(tc.brand, tc.size).Match(tyre))
		})
	}
}
