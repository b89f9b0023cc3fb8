package filter

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   url.Values
	}{
		{
			name:   "zero filter encodes to nothing",
			filter: Filter{},
			want:   url.Values{},
		},
		{
			name:   "default sort is omitted",
			filter: Filter{Sort: SortName},
			want:   url.Values{},
		},
		{
			name: "every field",
			filter: Filter{
				Name:        "soup",
				MaxDiet:     valueobjects.DietVegetarian,
				MaxPrepTime: valueobjects.PrepTime15To30,
				Tags:        []string{"quick", "cheap"},
				Seasons:     []valueobjects.Season{valueobjects.SeasonWinter, valueobjects.SeasonFall},
				Sort:        SortCreatedDesc,
			},
			want: url.Values{
				"name":     {"soup"},
				"diet":     {"vegetarian"},
				"prepTime": {"15to30"},
				"tags":     {"quick", "cheap"},
				"seasons":  {"fall", "winter"},
				"sort":     {"-created"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.filter)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Filter
	}{
		{
			name:  "empty query",
			query: "",
			want:  Filter{Sort: SortName},
		},
		{
			name:  "repeated keys",
			query: "tags=a&tags=b&seasons=spring&seasons=summer",
			want: Filter{
				Tags:    []string{"a", "b"},
				Seasons: []valueobjects.Season{valueobjects.SeasonSpring, valueobjects.SeasonSummer},
				Sort:    SortName,
			},
		},
		{
			name:  "bracket keys",
			query: "tags[]=a&tags[]=b",
			want:  Filter{Tags: []string{"a", "b"}, Sort: SortName},
		},
		{
			name:  "comma separated lists",
			query: "tags=a,b,,a&seasons=winter,autumn",
			want: Filter{
				Tags:    []string{"a", "b"},
				Seasons: []valueobjects.Season{valueobjects.SeasonFall, valueobjects.SeasonWinter},
				Sort:    SortName,
			},
		},
		{
			name:  "enum values are case insensitive",
			query: "diet=Vegan&prepTime=UNDER15&sort=-Diet",
			want: Filter{
				MaxDiet:     valueobjects.DietVegan,
				MaxPrepTime: valueobjects.PrepTimeUnder15,
				Sort:        SortDietDesc,
			},
		},
		{
			name:  "unknown keys are ignored",
			query: "page=2&pageSize=10&name=+stew+&utm_source=mail",
			want:  Filter{Name: "stew", Sort: SortName},
		},
		{
			name:  "empty values are dropped",
			query: "name=&diet=&tags=&sort=",
			want:  Filter{Sort: SortName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := Decode(values)

			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_RejectsBadEnums(t *testing.T) {
	values, err := url.ParseQuery("diet=pescatarian&prepTime=slow&seasons=spring,monsoon&sort=stars&name=ok")
	require.NoError(t, err)

	_, err = Decode(values)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	fields := pkgerrors.GetAppError(err).Details["fields"].(map[string][]string)
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, KeyDiet)
	assert.Contains(t, fields, KeyPrepTime)
	assert.Contains(t, fields, KeySeasons)
	assert.Contains(t, fields, KeySort)
}

func TestCodec_RoundTrip(t *testing.T) {
	filters := []Filter{
		{},
		{Name: "Pad Thai"},
		{Name: "  mac & cheese  ", MaxDiet: valueobjects.DietOmnivore},
		{MaxPrepTime: valueobjects.PrepTimeOver60, Sort: SortPrepTimeDesc},
		{Tags: []string{"weeknight", "one pot", "weeknight"}},
		{Tags: []string{"salt & pepper", "a;b", "[]"}},
		{Seasons: []valueobjects.Season{valueobjects.SeasonWinter, valueobjects.SeasonSpring}},
		{
			Name:        "ümlaut/100%",
			MaxDiet:     valueobjects.DietVegan,
			MaxPrepTime: valueobjects.PrepTimeUnder15,
			Tags:        []string{"a=b", "c&d", "é"},
			Seasons:     []valueobjects.Season{valueobjects.SeasonSummer},
			Sort:        SortCreated,
		},
	}

	for _, f := range filters {
		t.Run(QueryString(f), func(t *testing.T) {
			got, err := FromURL(QueryString(f))
			require.NoError(t, err)

			if diff := cmp.Diff(f.Normalize(), got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_CanonicalKeyWins(t *testing.T) {
	tests := []struct {
		query string
		want  Filter
	}{
		{
			query: "name=a&NAME=b&Name=c",
			want:  Filter{Name: "a", Sort: SortName},
		},
		{
			query: "prepTime=under15&preptime=over60&PREPTIME=15to30",
			want:  Filter{MaxPrepTime: valueobjects.PrepTimeUnder15, Sort: SortName},
		},
		{
			query: "tags=a&tags[]=b&TAGS=c",
			want:  Filter{Tags: []string{"c", "b", "a"}, Sort: SortName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			// map iteration order varies between runs
			for i := 0; i < 50; i++ {
				got, err := Decode(values)
				require.NoError(t, err)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Fatalf("decode mismatch on attempt %d (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestCodec_CommaTagFailsValidation(t *testing.T) {
	f := Filter{Tags: []string{"salt, pepper"}}

	err := f.Validate()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	got, err := FromURL(QueryString(f))
	require.NoError(t, err)
	assert.NotEqual(t, f.Normalize(), got)
}

func TestFromURL(t *testing.T) {
	want := Filter{Name: "soup", Tags: []string{"quick"}, Sort: SortName}

	inputs := []string{
		"https://recipes.example.com/?name=soup&tags=quick",
		"/recipes?name=soup&tags=quick#top",
		"?name=soup&tags=quick",
		"name=soup&tags=quick",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := FromURL(in)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}

	t.Run("blank input", func(t *testing.T) {
		got, err := FromURL("  ")
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("malformed escape", func(t *testing.T) {
		_, err := FromURL("name=%zz")
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestWithQuery(t *testing.T) {
	base, err := url.Parse("https://recipes.example.com/list?page=3&name=old&tags[]=x")
	require.NoError(t, err)

	got := WithQuery(base, Filter{Name: "new", MaxDiet: valueobjects.DietVegan})

	q := got.Query()
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "new", q.Get("name"))
	assert.Equal(t, "vegan", q.Get("diet"))
	assert.NotContains(t, q, "tags[]")
	assert.Equal(t, "https://recipes.example.com/list?page=3&name=old&tags[]=x", base.String())
}
