// package units/service.go
package units

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"dashboard-service/internal/domain"
	"dashboard-service/internal/metrics"
)

const defaultSuggestions = 5

// Service finds business units ("sucursales") across the loaded record sets.
type Service interface {
	ListBusinessUnits(sets domain.Sets) []string
	Resolve(sets domain.Sets, selected string) *domain.View
	Suggest(names []string, selected string, n int) []string
}

type service struct {
	registry []domain.SheetSpec
}

// NewService creates a unit service over the kinds of the registry that declare
// a name field.
func NewService(registry []domain.SheetSpec) Service {
	var named []domain.SheetSpec
	for _, spec := range registry {
		if spec.HasNameField() {
			named = append(named, spec)
		}
	}
	return &service{registry: named}
}

// ListBusinessUnits returns every distinct, trimmed name-field value, keeping
// the original casing, sorted ascending.
func (s *service) ListBusinessUnits(sets domain.Sets) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, spec := range s.registry {
		for _, r := range sets.Records(spec.Kind) {
			if r.IsNull(spec.NameField) {
				continue
			}
			name := strings.TrimSpace(r.Text(spec.NameField))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve collects, per kind, the records whose name field contains the
// selection, ignoring case. Kinds without matches are left out. A short
// selection can match several unrelated units.
func (s *service) Resolve(sets domain.Sets, selected string) *domain.View {
	view := &domain.View{Unit: strings.TrimSpace(selected), Sets: make(domain.Sets)}

	needle := strings.ToUpper(strings.TrimSpace(selected))
	if needle != "" {
		for _, spec := range s.registry {
			rs, ok := sets[spec.Kind]
			if !ok || rs == nil {
				continue
			}
			field := spec.NameField
			subset := rs.Filter(func(r domain.Record) bool {
				return !r.IsNull(field) && strings.Contains(strings.ToUpper(r.Text(field)), needle)
			})
			if subset.Len() > 0 {
				view.Sets[spec.Kind] = subset
			}
		}
	}

	metrics.RecordUnitResolution(!view.Empty())
	if view.Empty() && needle != "" {
		view.Suggestions = s.Suggest(s.ListBusinessUnits(sets), selected, defaultSuggestions)
	}
	return view
}

// Suggest returns up to n known names closest to the selection, compared
// without accents or case.
func (s *service) Suggest(names []string, selected string, n int) []string {
	key := normalizeText(selected)
	if key == "" || len(names) == 0 || n <= 0 {
		return nil
	}

	byKey := make(map[string]string, len(names))
	var keys []string
	for _, name := range names {
		k := normalizeText(name)
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; !ok {
			byKey[k] = name
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	cm := closestmatch.New(keys, []int{2, 3})
	var out []string
	for _, match := range cm.ClosestN(key, n) {
		if name, ok := byKey[match]; ok && match != "" {
			out = append(out, name)
		}
	}
	return out
}

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
