package homepage

import (
	"sort"
	"strings"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

// Inputs flattens the config into create requests. The group name becomes
// a tag, abbr a second one. Entries without href are skipped; the result
// follows file order except within one group map, which is sorted by name.
func Inputs(cfg Config) []domain.BookmarkInput {
	out := make([]domain.BookmarkInput, 0)

	for _, group := range cfg {
		for _, groupName := range sortedKeys(group) {
			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					entries := item[name]
					if len(entries) == 0 || strings.TrimSpace(entries[0].Href) == "" {
						continue
					}
					out = append(out, toInput(groupName, name, entries[0]))
				}
			}
		}
	}
	return out
}

func toInput(group, name string, e Entry) domain.BookmarkInput {
	tags := []string{}
	if g := strings.TrimSpace(group); g != "" {
		tags = append(tags, g)
	}
	if a := strings.TrimSpace(e.Abbr); a != "" && !strings.EqualFold(a, group) {
		tags = append(tags, a)
	}

	title := strings.TrimSpace(name)
	if title == "" {
		title = strings.TrimSpace(e.Href)
	}

	return domain.BookmarkInput{
		URL:     strings.TrimSpace(e.Href),
		Title:   title,
		Tags:    tags,
		Note:    strings.TrimSpace(e.Description),
		Favicon: e.Icon,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
