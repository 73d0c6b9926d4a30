package domain

import "sort"

// CodeEntry is one value of a shared enumerated code table.
type CodeEntry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Sort  int    `json:"sort"`
}

// CodeTable is a named, ordered list of codes shared across entity shapes
// (statuses, regions, vehicle classes). Tables are registered in-process and
// resolved without touching the persistence engine.
type CodeTable struct {
	Name    string      `json:"name"`
	Entries []CodeEntry `json:"entries"`
}

// Options renders the table as select options in sort order.
func (t CodeTable) Options() []Option {
	entries := append([]CodeEntry(nil), t.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Sort < entries[j].Sort })

	options := make([]Option, 0, len(entries))
	for _, e := range entries {
		options = append(options, Option{Value: e.Code, Label: e.Label})
	}
	return options
}

// CodeRegistry holds the code tables known to one application.
type CodeRegistry struct {
	tables map[string]CodeTable
}

// NewCodeRegistry builds a registry from literal tables.
func NewCodeRegistry(tables ...CodeTable) *CodeRegistry {
	registry := &CodeRegistry{tables: make(map[string]CodeTable, len(tables))}
	for _, table := range tables {
		registry.tables[table.Name] = table
	}
	return registry
}

// Lookup returns the named table.
func (r *CodeRegistry) Lookup(name string) (CodeTable, bool) {
	if r == nil {
		return CodeTable{}, false
	}
	table, ok := r.tables[name]
	return table, ok
}
