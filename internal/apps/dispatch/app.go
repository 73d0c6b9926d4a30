// Package dispatch declares the sample transport-dispatch application: a
// literal field pipeline for its order shape, the shared code tables it
// references and the quick filters its listing offers. The engine packages
// consume these declarations; nothing here executes queries itself.
package dispatch

import (
	"github.com/stelform/adminkit/internal/domain"
	"github.com/stelform/adminkit/internal/relation"
)

const (
	// EntityType is the dispatch order shape.
	EntityType = "order"

	// RouteEntityType backs the cascading route/vehicle selects.
	RouteEntityType = "route"

	// VehicleEntityType rows are scoped to a route.
	VehicleEntityType = "vehicle"

	// TagEntityType is the shape tags live in; TagJoin links orders to them.
	TagEntityType = "tag"
)

// TagJoin names the join shape realising the order/tag association.
var TagJoin = relation.JoinSpec{
	EntityType:  "order_tag",
	ParentField: "order_id",
	OtherField:  "tag_id",
}

// Codes returns the code tables the order pipeline references.
func Codes() *domain.CodeRegistry {
	return domain.NewCodeRegistry(
		domain.CodeTable{
			Name: "order_status",
			Entries: []domain.CodeEntry{
				{Code: "draft", Label: "Draft", Sort: 1},
				{Code: "assigned", Label: "Assigned", Sort: 2},
				{Code: "in_transit", Label: "In transit", Sort: 3},
				{Code: "delivered", Label: "Delivered", Sort: 4},
				{Code: "cancelled", Label: "Cancelled", Sort: 5},
			},
		},
		domain.CodeTable{
			Name: "cargo_class",
			Entries: []domain.CodeEntry{
				{Code: "general", Label: "General", Sort: 1},
				{Code: "chilled", Label: "Chilled", Sort: 2},
				{Code: "hazardous", Label: "Hazardous", Sort: 3},
			},
		},
	)
}

// Pipeline returns the order listing's field layout. The route select is
// unconstrained; the vehicle select cascades from it, so a vehicle can only
// be chosen once its route is.
func Pipeline() (domain.Pipeline, error) {
	rows := [][]domain.FieldDescriptor{
		{
			{
				ID:     "reference",
				Label:  "Order no.",
				Type:   domain.FieldTypeText,
				Search: true,
				Form:   &domain.FormDirectives{Required: true},
			},
			{
				ID:     "status",
				Label:  "Status",
				Type:   domain.FieldTypeSelect,
				Search: true,
				Select: &domain.SelectSource{CodeTable: "order_status"},
				Form:   &domain.FormDirectives{Default: "draft"},
			},
			{
				ID:     "cargo_class",
				Label:  "Cargo",
				Type:   domain.FieldTypeSelect,
				Search: true,
				Select: &domain.SelectSource{CodeTable: "cargo_class"},
			},
		},
		{
			{
				ID:     "route",
				Label:  "Route",
				Type:   domain.FieldTypeSelect,
				Search: true,
				Select: &domain.SelectSource{
					Query: &domain.OptionQuery{
						EntityType: RouteEntityType,
						LabelField: "name",
						OrderBy:    "name",
					},
				},
			},
			{
				ID:    "vehicle",
				Label: "Vehicle",
				Type:  domain.FieldTypeSelect,
				Select: &domain.SelectSource{
					DependsOn: []string{"route"},
					Query: &domain.OptionQuery{
						EntityType: VehicleEntityType,
						LabelField: "registration",
						OrderBy:    "registration",
						Where: []domain.WhereTemplate{
							{Field: "route_id", Op: domain.OpEq, FromField: "route"},
						},
					},
				},
			},
		},
		{
			{
				ID:     "origin",
				Label:  "Origin",
				Type:   domain.FieldTypeText,
				Search: true,
			},
			{
				ID:     "destination",
				Label:  "Destination",
				Type:   domain.FieldTypeText,
				Search: true,
			},
		},
		{
			{
				ID:     "price",
				Label:  "Price",
				Type:   domain.FieldTypePrice,
				Search: true,
			},
			{
				ID:     "dispatch_date",
				Label:  "Dispatch date",
				Type:   domain.FieldTypeDate,
				Search: true,
			},
			{
				ID:    "note",
				Label: "Note",
				Type:  domain.FieldTypeTextArea,
				Cell:  &domain.CellDirectives{Hidden: true},
			},
		},
	}

	p, err := domain.NewPipeline(EntityType, rows)
	if err != nil {
		return domain.Pipeline{}, err
	}

	p, err = p.WithSummary(domain.SummaryOptions{
		ID:          "leg",
		Label:       "Leg",
		SourceIDs:   []string{"origin", "destination"},
		Separator:   " - ",
		HideSources: true,
	})
	if err != nil {
		return domain.Pipeline{}, err
	}

	return p.WithDefaultOrder(domain.OrderTerm{
		FieldID:   "dispatch_date",
		Direction: domain.SortDirectionDesc,
	}), nil
}

// QuickFilters returns the one-click predicates the order listing offers.
func QuickFilters() map[string]domain.Condition {
	return map[string]domain.Condition{
		"open":      domain.In("status", "draft", "assigned", "in_transit"),
		"delivered": domain.Eq("status", "delivered"),
		"cancelled": domain.Eq("status", "cancelled"),
		"unpriced": domain.AllOf(
			domain.In("status", "draft", "assigned"),
			domain.Eq("price", ""),
		),
	}
}
