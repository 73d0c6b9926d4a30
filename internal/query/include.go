package query

import (
	"sort"
	"strings"

	"github.com/stelform/adminkit/internal/domain"
)

// includeGraph walks the descriptors for dotted relation paths
// ("Route.name") and builds the minimal eager-load graph: each relation
// appears once no matter how many fields request it, with its attribute set
// deduplicated and sorted.
func includeGraph(fields []domain.FieldDescriptor) []domain.IncludePath {
	relations := make(map[string]map[string]struct{})

	add := func(path string) {
		relation, attribute, ok := strings.Cut(path, ".")
		if !ok || relation == "" || attribute == "" {
			return
		}
		if relations[relation] == nil {
			relations[relation] = make(map[string]struct{})
		}
		relations[relation][attribute] = struct{}{}
	}

	for _, field := range fields {
		add(field.ID)
		if field.Select != nil && field.Select.Query != nil {
			for _, path := range field.Select.Query.Include {
				add(path)
			}
		}
	}

	if len(relations) == 0 {
		return nil
	}

	names := make([]string, 0, len(relations))
	for name := range relations {
		names = append(names, name)
	}
	sort.Strings(names)

	graph := make([]domain.IncludePath, 0, len(names))
	for _, name := range names {
		attributes := make([]string, 0, len(relations[name]))
		for attribute := range relations[name] {
			attributes = append(attributes, attribute)
		}
		sort.Strings(attributes)
		graph = append(graph, domain.IncludePath{Relation: name, Attributes: attributes})
	}
	return graph
}
