package locale

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Country is an ISO 3166-1 alpha-2 code as used in the country selector.
type Country string

const (
	Korea       Country = "KR"
	Japan       Country = "JP"
	UnitedState Country = "US"
	China       Country = "CN"
	Russia      Country = "RU"
	Germany     Country = "DE"
	Vietnam     Country = "VN"
	Philippines Country = "PH"
)

// DefaultEngineLabel names the primary series for countries without their own engine.
const DefaultEngineLabel = "Bing"

// Entry is one row of the country table.
type Entry struct {
	Code Country
	Name string
	// Substitute replaces the user's keyword before querying the provider.
	// Empty keeps the user's keyword.
	Substitute  string
	EngineLabel string
	MapImageURL string
}

// Resolved carries both keywords through the pipeline: DisplayKeyword is what
// the user typed, QueryKeyword is what the provider receives.
type Resolved struct {
	Country        Country
	DisplayKeyword string
	QueryKeyword   string
}

// Table is an immutable, ordered country lookup.
type Table struct {
	defaultCode Country
	entries     []Entry
	byCode      map[Country]Entry
}

// DefaultEntries is the built-in eight-country table.
func DefaultEntries() []Entry {
	return []Entry{
		{Code: Korea, Name: "South Korea", EngineLabel: "Naver", MapImageURL: "https://i.imgur.com/86Gejzb.png"},
		{Code: Japan, Name: "Japan", Substitute: "anime", EngineLabel: "Yahoo", MapImageURL: "https://i.imgur.com/89MbWyI.png"},
		{Code: UnitedState, Name: "United States", Substitute: "AI", EngineLabel: DefaultEngineLabel, MapImageURL: "https://i.imgur.com/Ve5n6sa.png"},
		{Code: China, Name: "China", Substitute: "음악", EngineLabel: "Baidu", MapImageURL: "https://i.imgur.com/8YsocN4.png"},
		{Code: Russia, Name: "Russia", Substitute: "music", EngineLabel: "Yandex", MapImageURL: "https://i.imgur.com/CSuVmOQ.png"},
		{Code: Germany, Name: "Germany (Europe)", Substitute: "news", EngineLabel: DefaultEngineLabel, MapImageURL: "https://i.imgur.com/mkJqi3D.png"},
		{Code: Vietnam, Name: "Vietnam", Substitute: "travel", EngineLabel: DefaultEngineLabel, MapImageURL: "https://i.imgur.com/IZ0UF3X.png"},
		{Code: Philippines, Name: "Philippines", Substitute: "sports", EngineLabel: DefaultEngineLabel, MapImageURL: "https://i.imgur.com/AFRp2tu.png"},
	}
}

// DefaultTable returns the built-in table with Korea as the default locale.
func DefaultTable() *Table {
	t, err := NewTable(Korea, DefaultEntries())
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable validates entries and builds a table. Codes must be ISO 3166
// regions, unique, and include defaultCode.
func NewTable(defaultCode Country, entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("country table is empty")
	}

	entries = append([]Entry(nil), entries...)
	byCode := make(map[Country]Entry, len(entries))
	for i, e := range entries {
		code := Country(strings.ToUpper(string(e.Code)))
		if _, err := language.ParseRegion(string(code)); err != nil {
			return nil, fmt.Errorf("entry %d: invalid country code %q: %w", i, e.Code, err)
		}
		if _, dup := byCode[code]; dup {
			return nil, fmt.Errorf("entry %d: duplicate country code %q", i, code)
		}
		e.Code = code
		if e.Name == "" {
			e.Name = string(code)
		}
		if e.EngineLabel == "" {
			e.EngineLabel = DefaultEngineLabel
		}
		entries[i] = e
		byCode[code] = e
	}

	defaultCode = Country(strings.ToUpper(string(defaultCode)))
	if _, ok := byCode[defaultCode]; !ok {
		return nil, fmt.Errorf("default country %q is not in the table", defaultCode)
	}

	return &Table{
		defaultCode: defaultCode,
		entries:     entries,
		byCode:      byCode,
	}, nil
}

func (t *Table) Default() Country {
	return t.defaultCode
}

// Entries returns the table in selector order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Codes returns every known country code in selector order.
func (t *Table) Codes() []Country {
	return lo.Map(t.entries, func(e Entry, _ int) Country { return e.Code })
}

func (t *Table) Lookup(code Country) (Entry, bool) {
	e, ok := t.byCode[Country(strings.ToUpper(string(code)))]
	return e, ok
}

// Contains reports whether code is a known country.
func (t *Table) Contains(code string) bool {
	_, ok := t.Lookup(Country(code))
	return ok
}

// EngineLabel is the display label of the primary series for country.
func (t *Table) EngineLabel(code Country) string {
	if e, ok := t.Lookup(code); ok {
		return e.EngineLabel
	}
	return DefaultEngineLabel
}

// Resolve splits the user's keyword into display and query keywords. The
// display keyword is the input exactly as typed. The default locale queries
// the normalized keyword; any other country queries its substitute when one
// is configured.
func (t *Table) Resolve(keyword string, code Country) (Resolved, error) {
	e, ok := t.Lookup(code)
	if !ok {
		return Resolved{}, fmt.Errorf("unknown country %q", code)
	}

	r := Resolved{
		Country:        e.Code,
		DisplayKeyword: keyword,
		QueryKeyword:   NormalizeKeyword(keyword),
	}
	if e.Code != t.defaultCode && e.Substitute != "" {
		r.QueryKeyword = e.Substitute
	}
	return r, nil
}

// NormalizeKeyword trims surrounding space and composes Hangul and other
// decomposed input into NFC so the provider sees one canonical spelling.
func NormalizeKeyword(keyword string) string {
	return norm.NFC.String(strings.TrimSpace(keyword))
}
