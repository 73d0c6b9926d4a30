package domain

import "fmt"

// PipelineError reports a configuration mistake detected while building or
// transforming a pipeline. These are programmer errors and surface
// synchronously, before any query is compiled.
type PipelineError struct {
	FieldID    string
	Dependency string
	Reason     string
}

func (e *PipelineError) Error() string {
	if e.Dependency != "" {
		return fmt.Sprintf("pipeline field %q: %s (dependency %q)", e.FieldID, e.Reason, e.Dependency)
	}
	return fmt.Sprintf("pipeline field %q: %s", e.FieldID, e.Reason)
}

// Pipeline is the ordered 2-D layout of field descriptors for one entity
// shape. The outer dimension is visual rows, the inner dimension columns
// within a row. Pipelines are immutable values: every transform returns a
// new pipeline and the receiver is never modified, so one base layout can
// safely seed several derived pipelines.
type Pipeline struct {
	entityType   string
	rows         [][]FieldDescriptor
	defaultOrder []OrderTerm
}

// NewPipeline validates the layout and constructs a pipeline. Duplicate
// field ids, unknown field types and dependency references that do not point
// at an earlier field are all build errors.
func NewPipeline(entityType string, rows [][]FieldDescriptor) (Pipeline, error) {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, field := range row {
			if field.ID == "" {
				return Pipeline{}, &PipelineError{FieldID: field.ID, Reason: "field id is required"}
			}
			if _, dup := seen[field.ID]; dup {
				return Pipeline{}, &PipelineError{FieldID: field.ID, Reason: "duplicate field id"}
			}
			if _, ok := knownFieldTypes[field.Type]; !ok {
				return Pipeline{}, &PipelineError{FieldID: field.ID, Reason: fmt.Sprintf("unknown field type %q", field.Type)}
			}
			for _, dep := range field.dependsOn() {
				if _, ok := seen[dep]; !ok {
					return Pipeline{}, &PipelineError{FieldID: field.ID, Dependency: dep, Reason: "depends on a field that is not declared earlier in the pipeline"}
				}
			}
			seen[field.ID] = struct{}{}
		}
	}

	return Pipeline{entityType: entityType, rows: copyRows(rows)}, nil
}

// EntityType returns the entity shape this pipeline describes.
func (p Pipeline) EntityType() string {
	return p.entityType
}

// Rows returns a defensive copy of the layout.
func (p Pipeline) Rows() [][]FieldDescriptor {
	return copyRows(p.rows)
}

// Flatten returns the descriptors in row-major order.
func (p Pipeline) Flatten() []FieldDescriptor {
	var out []FieldDescriptor
	for _, row := range p.rows {
		out = append(out, row...)
	}
	return out
}

// FieldByID looks a descriptor up by id.
func (p Pipeline) FieldByID(id string) (FieldDescriptor, bool) {
	for _, row := range p.rows {
		for _, field := range row {
			if field.ID == id {
				return field, true
			}
		}
	}
	return FieldDescriptor{}, false
}

// Transpose converts the layout between column-major and row-major. Ragged
// layouts transpose positionally: element (i,j) moves to (j,i) and missing
// cells are skipped, so the element set and per-axis order are preserved.
func (p Pipeline) Transpose() Pipeline {
	width := 0
	for _, row := range p.rows {
		if len(row) > width {
			width = len(row)
		}
	}

	transposed := make([][]FieldDescriptor, 0, width)
	for j := 0; j < width; j++ {
		var col []FieldDescriptor
		for _, row := range p.rows {
			if j < len(row) {
				col = append(col, row[j])
			}
		}
		if len(col) > 0 {
			transposed = append(transposed, col)
		}
	}

	out := p
	out.rows = transposed
	return out
}

// MapFields applies mapper to every descriptor, preserving position. The
// field id is pinned: a mapper cannot rename a field, which keeps the
// build-time validation of ids and dependencies intact.
func (p Pipeline) MapFields(mapper func(FieldDescriptor) FieldDescriptor) Pipeline {
	rows := make([][]FieldDescriptor, len(p.rows))
	for i, row := range p.rows {
		rows[i] = make([]FieldDescriptor, len(row))
		for j, field := range row {
			mapped := mapper(field)
			mapped.ID = field.ID
			rows[i][j] = mapped
		}
	}

	out := p
	out.rows = rows
	return out
}

// WithGroup tags every field currently in the pipeline with a shared group
// label. Grouping is presentation-only and carries no compilation semantics.
func (p Pipeline) WithGroup(name string) Pipeline {
	return p.MapFields(func(f FieldDescriptor) FieldDescriptor {
		f.Group = name
		return f
	})
}

// SummaryOptions configures WithSummary.
type SummaryOptions struct {
	ID          string
	Label       string
	SourceIDs   []string
	Separator   string
	HideSources bool
}

// WithSummary appends a read-only composite field whose display value joins
// the source fields' values. Source fields stay in the pipeline — hidden
// when requested — so their ids keep participating in compilation.
func (p Pipeline) WithSummary(opts SummaryOptions) (Pipeline, error) {
	if opts.ID == "" {
		return Pipeline{}, &PipelineError{Reason: "summary field id is required"}
	}
	if _, exists := p.FieldByID(opts.ID); exists {
		return Pipeline{}, &PipelineError{FieldID: opts.ID, Reason: "duplicate field id"}
	}
	for _, src := range opts.SourceIDs {
		if _, ok := p.FieldByID(src); !ok {
			return Pipeline{}, &PipelineError{FieldID: opts.ID, Dependency: src, Reason: "summary references an unknown source field"}
		}
	}

	out := p
	if opts.HideSources {
		hidden := make(map[string]struct{}, len(opts.SourceIDs))
		for _, src := range opts.SourceIDs {
			hidden[src] = struct{}{}
		}
		out = out.MapFields(func(f FieldDescriptor) FieldDescriptor {
			if _, ok := hidden[f.ID]; !ok {
				return f
			}
			cell := CellDirectives{}
			if f.Cell != nil {
				cell = *f.Cell
			}
			cell.Hidden = true
			f.Cell = &cell
			return f
		})
	}

	summary := FieldDescriptor{
		ID:        opts.ID,
		Label:     opts.Label,
		Type:      FieldTypeText,
		Cell:      &CellDirectives{InlineEdit: false},
		SummaryOf: append([]string(nil), opts.SourceIDs...),
		Separator: opts.Separator,
	}

	rows := copyRows(out.rows)
	rows = append(rows, []FieldDescriptor{summary})
	out.rows = rows
	return out, nil
}

// WithDefaultOrder declares the ordering the compiler falls back to when a
// request does not name a sort column.
func (p Pipeline) WithDefaultOrder(terms ...OrderTerm) Pipeline {
	out := p
	out.defaultOrder = append([]OrderTerm(nil), terms...)
	return out
}

// DefaultOrder returns the declared fallback ordering.
func (p Pipeline) DefaultOrder() []OrderTerm {
	return append([]OrderTerm(nil), p.defaultOrder...)
}

func copyRows(rows [][]FieldDescriptor) [][]FieldDescriptor {
	out := make([][]FieldDescriptor, len(rows))
	for i, row := range rows {
		out[i] = append([]FieldDescriptor(nil), row...)
	}
	return out
}
