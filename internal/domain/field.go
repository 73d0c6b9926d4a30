package domain

// FieldType represents the semantic kind of a field. It determines how the
// query compiler shapes filter clauses and how the form layer formats and
// validates input; it says nothing about storage, which is always JSONB.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypePrice       FieldType = "price"
	FieldTypeDate        FieldType = "date"
	FieldTypeMonth       FieldType = "month"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeFile        FieldType = "file"
	FieldTypeTextArea    FieldType = "textarea"
	FieldTypeRichText    FieldType = "richtext"
)

// knownFieldTypes is the closed set accepted at pipeline build time.
var knownFieldTypes = map[FieldType]struct{}{
	FieldTypeText:        {},
	FieldTypeNumber:      {},
	FieldTypePrice:       {},
	FieldTypeDate:        {},
	FieldTypeMonth:       {},
	FieldTypeBoolean:     {},
	FieldTypeSelect:      {},
	FieldTypeMultiSelect: {},
	FieldTypeFile:        {},
	FieldTypeTextArea:    {},
	FieldTypeRichText:    {},
}

// FieldDescriptor is the atomic declarative unit describing one attribute of
// an entity shape. Descriptors are pure data; application packages author
// them as literals and the engine compiles them.
type FieldDescriptor struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Type   FieldType       `json:"type"`
	Form   *FormDirectives `json:"form,omitempty"`
	Select *SelectSource   `json:"select,omitempty"`
	Search bool            `json:"search,omitempty"`
	Cell   *CellDirectives `json:"cell,omitempty"`
	Group  string          `json:"group,omitempty"`
	// SummaryOf marks a synthesized composite field and names the source
	// fields whose values it joins with Separator.
	SummaryOf []string `json:"summary_of,omitempty"`
	Separator string   `json:"separator,omitempty"`
}

// FormDirectives carries optional editing behaviour for a field.
type FormDirectives struct {
	Default  string            `json:"default,omitempty"`
	Required bool              `json:"required,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
}

// CellDirectives carries display-only behaviour; the compiler ignores it
// except that hidden summary sources must keep participating in compilation.
type CellDirectives struct {
	Hidden     bool   `json:"hidden,omitempty"`
	InlineEdit bool   `json:"inline_edit,omitempty"`
	RowColor   string `json:"row_color,omitempty"`
}

// Option is one selectable value for select / multi-select fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SelectSource declares where a select field's options come from. Exactly
// one of Options, Query or CodeTable is set.
type SelectSource struct {
	Options   []Option     `json:"options,omitempty"`
	Query     *OptionQuery `json:"query,omitempty"`
	CodeTable string       `json:"code_table,omitempty"`
	// DependsOn names earlier fields whose submitted values constrain the
	// option fetch (cascading selection). Referenced ids must appear before
	// this field in the pipeline.
	DependsOn []string `json:"depends_on,omitempty"`
}

// OptionQuery describes a declarative option fetch against another entity
// shape. Where terms are narrow, enumerated predicate shapes rather than
// callbacks so they can be validated when the pipeline is built.
type OptionQuery struct {
	EntityType string          `json:"entity_type"`
	Where      []WhereTemplate `json:"where,omitempty"`
	OrderBy    string          `json:"order_by,omitempty"`
	LabelField string          `json:"label_field,omitempty"`
	// Include names dotted relation paths (e.g. "Route.name") whose records
	// must be fetched alongside the options.
	Include []string `json:"include,omitempty"`
}

// WhereTemplate is one predicate term of an option query. Value and
// FromField are mutually exclusive: FromField names a dependency field whose
// submitted value is substituted at resolution time.
type WhereTemplate struct {
	Field     string    `json:"field"`
	Op        CompareOp `json:"op"`
	Value     any       `json:"value,omitempty"`
	FromField string    `json:"from_field,omitempty"`
}

// HiddenInCell reports whether the field is display-hidden. Hidden fields
// still compile: summary synthesis hides its sources without dropping them.
func (f FieldDescriptor) HiddenInCell() bool {
	return f.Cell != nil && f.Cell.Hidden
}

// dependsOn returns the declared dependency ids, nil when the field has no
// select source.
func (f FieldDescriptor) dependsOn() []string {
	if f.Select == nil {
		return nil
	}
	return f.Select.DependsOn
}
