package filter

import (
	"net/url"
	"sort"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/gorilla/schema"

	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// Query string keys
const (
	KeyName     = "name"
	KeyDiet     = "diet"
	KeyPrepTime = "prepTime"
	KeyTags     = "tags"
	KeySeasons  = "seasons"
	KeySort     = "sort"
)

// params is the flat wire form shared by the encoder and the decoder
type params struct {
	Name     string   `url:"name,omitempty" schema:"name"`
	Diet     string   `url:"diet,omitempty" schema:"diet"`
	PrepTime string   `url:"prepTime,omitempty" schema:"prepTime"`
	Tags     []string `url:"tags,omitempty" schema:"tags"`
	Seasons  []string `url:"seasons,omitempty" schema:"seasons"`
	Sort     string   `url:"sort,omitempty" schema:"sort"`
}

var listKeys = map[string]bool{KeyTags: true, KeySeasons: true}

var scalarKeys = map[string]bool{KeyName: true, KeyDiet: true, KeyPrepTime: true, KeySort: true}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}

// Encode converts a filter into query values. Empty criteria and the
// default sort are omitted; lists use repeated keys.
func Encode(f Filter) url.Values {
	n := f.Normalize()

	p := params{
		Name:     n.Name,
		Diet:     string(n.MaxDiet),
		PrepTime: string(n.MaxPrepTime),
		Tags:     n.Tags,
	}
	for _, season := range n.Seasons {
		p.Seasons = append(p.Seasons, string(season))
	}
	if n.Sort != DefaultSort {
		p.Sort = string(n.Sort)
	}

	values, err := query.Values(p)
	if err != nil {
		// params only holds strings and string slices
		return url.Values{}
	}
	return values
}

// QueryString renders the filter as an encoded query string without a leading "?"
func QueryString(f Filter) string {
	return Encode(f).Encode()
}

// Decode parses query values into a normalized filter.
//
// Lists may be given as repeated keys, as "key[]" keys or as comma separated
// values. Keys that are not part of a filter, such as pagination, are
// ignored. Unknown enum values are rejected with a validation error that
// names every bad field.
func Decode(values url.Values) (Filter, error) {
	var p params
	if err := decoder.Decode(&p, canonicalValues(values)); err != nil {
		return Filter{}, pkgerrors.NewValidationError("malformed filter query").WithCause(err)
	}

	verrs := pkgerrors.NewValidationErrors()
	f := Filter{
		Name: p.Name,
		Tags: p.Tags,
	}

	if p.Diet != "" {
		diet, err := valueobjects.ParseDiet(p.Diet)
		if err != nil {
			verrs.Add(KeyDiet, err.Error())
		}
		f.MaxDiet = diet
	}
	if p.PrepTime != "" {
		prepTime, err := valueobjects.ParsePrepTime(p.PrepTime)
		if err != nil {
			verrs.Add(KeyPrepTime, err.Error())
		}
		f.MaxPrepTime = prepTime
	}
	for _, raw := range p.Seasons {
		season, err := valueobjects.ParseSeason(raw)
		if err != nil {
			verrs.Add(KeySeasons, err.Error())
			continue
		}
		f.Seasons = append(f.Seasons, season)
	}
	sortOrder, err := ParseSort(p.Sort)
	if err != nil {
		verrs.Addf(KeySort, "invalid sort %q", p.Sort)
	}
	f.Sort = sortOrder

	if err := verrs.ErrOrNil(); err != nil {
		return Filter{}, err
	}

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// FromURL decodes the filter held in a shareable link. It accepts a full
// URL, a path with a query or a bare query string.
func FromURL(raw string) (Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Filter{}.Normalize(), nil
	}

	rawQuery := raw
	if strings.Contains(raw, "?") || strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Filter{}, pkgerrors.NewValidationError("malformed filter link").WithCause(err)
		}
		rawQuery = u.RawQuery
	}
	rawQuery = strings.TrimPrefix(rawQuery, "?")

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Filter{}, pkgerrors.NewValidationError("malformed filter query").WithCause(err)
	}
	return Decode(values)
}

// WithQuery returns base with its query replaced by the encoded filter.
// Query keys that are not part of a filter are kept.
func WithQuery(base *url.URL, f Filter) *url.URL {
	u := *base
	q := u.Query()
	for key := range q {
		if isFilterKey(canonicalKey(key)) {
			q.Del(key)
		}
	}
	for key, vals := range Encode(f) {
		q[key] = vals
	}
	u.RawQuery = q.Encode()
	return &u
}

// canonicalValues folds bracket keys onto plain keys, splits comma
// separated lists and keeps the last non-empty value of scalar keys.
// Keys are visited in a fixed order with the canonical spelling of each key
// last, so it wins over variants such as "NAME" or "tags[]".
func canonicalValues(values url.Values) map[string][]string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := canonicalKey(keys[i]), canonicalKey(keys[j])
		if ci != cj {
			return ci < cj
		}
		if (keys[i] == ci) != (keys[j] == cj) {
			return keys[j] == cj
		}
		return keys[i] < keys[j]
	})

	out := make(map[string][]string, len(values))
	for _, raw := range keys {
		vals := values[raw]
		key := canonicalKey(raw)
		switch {
		case listKeys[key]:
			for _, v := range vals {
				for _, part := range strings.Split(v, valueobjects.TagSeparator) {
					if part = strings.TrimSpace(part); part != "" {
						out[key] = append(out[key], part)
					}
				}
			}
		case scalarKeys[key]:
			for _, v := range vals {
				if v = strings.TrimSpace(v); v != "" {
					out[key] = []string{v}
				}
			}
		}
	}
	return out
}

func canonicalKey(key string) string {
	key = strings.TrimSuffix(strings.TrimSpace(key), "[]")
	if strings.EqualFold(key, KeyPrepTime) {
		return KeyPrepTime
	}
	return strings.ToLower(key)
}

func isFilterKey(key string) bool {
	return listKeys[key] || scalarKeys[key]
}
