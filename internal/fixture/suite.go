package fixture

import (
	"fmt"
	"sort"

	"github.com/utafrali/catalog-fixtures/pkg/config"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

// Entry is one fixture invocation within a suite.
type Entry struct {
	Fixture  string
	Priority int
	Options  Options
}

// Suite is a named, ordered list of fixture invocations.
type Suite struct {
	Name    string
	Entries []Entry
}

type entryDocument struct {
	Priority int     `yaml:"priority"`
	Options  Options `yaml:"options"`
}

type suiteDocument struct {
	Fixtures map[string]*entryDocument `yaml:"fixtures"`
}

type suitesDocument struct {
	Suites map[string]suiteDocument `yaml:"suites"`
}

// Suites holds the suites of one configuration document.
type Suites map[string]Suite

// ParseSuites decodes a suites document:
//
//	suites:
//	  default:
//	    fixtures:
//	      tshirt_product:
//	        priority: 10
//	        options:
//	          amount: 90
//
// Entries are ordered by descending priority, then by fixture name.
func ParseSuites(data []byte) (Suites, error) {
	var doc suitesDocument
	if err := config.DecodeYAML(data, &doc); err != nil {
		return nil, apperrors.InvalidConfiguration("suites", err)
	}
	return doc.build(), nil
}

// LoadSuites reads and parses the suites document at path.
func LoadSuites(path string) (Suites, error) {
	var doc suitesDocument
	if err := config.LoadYAMLFile(path, &doc); err != nil {
		return nil, apperrors.InvalidConfiguration("suites", err)
	}
	return doc.build(), nil
}

func (d suitesDocument) build() Suites {
	suites := make(Suites, len(d.Suites))
	for name, sd := range d.Suites {
		s := Suite{Name: name, Entries: make([]Entry, 0, len(sd.Fixtures))}
		for fixture, ed := range sd.Fixtures {
			e := Entry{Fixture: fixture}
			if ed != nil {
				e.Priority = ed.Priority
				e.Options = ed.Options
			}
			s.Entries = append(s.Entries, e)
		}
		sort.SliceStable(s.Entries, func(i, j int) bool {
			if s.Entries[i].Priority != s.Entries[j].Priority {
				return s.Entries[i].Priority > s.Entries[j].Priority
			}
			return s.Entries[i].Fixture < s.Entries[j].Fixture
		})
		suites[name] = s
	}
	return suites
}

// Get returns the suite called name.
func (s Suites) Get(name string) (Suite, error) {
	suite, ok := s[name]
	if !ok {
		return Suite{}, apperrors.NotFound("suite", name)
	}
	return suite, nil
}

// Names returns the suite names in sorted order.
func (s Suites) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every entry names a registered fixture.
func (s Suite) Validate(reg *Registry) error {
	for _, e := range s.Entries {
		if _, err := reg.Get(e.Fixture); err != nil {
			return apperrors.InvalidConfiguration(e.Fixture, fmt.Errorf("suite %q: unknown fixture", s.Name))
		}
	}
	return nil
}
