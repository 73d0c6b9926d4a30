package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestOperationValidate(t *testing.T) {
	id := uuid.New()

	valid := []Operation{
		NewCreate("order", "", map[string]any{"status": "draft"}),
		NewCreate("order", "ORD-1", map[string]any{}),
		NewUpdate("order", id, map[string]any{"status": "assigned"}),
		NewUpsert("order", "ORD-1", map[string]any{"a": 1}, map[string]any{"b": 2}),
		NewDelete("order", id),
		NewDeleteByReference("order_tag", "p:t"),
		NewDeleteMany("order", Eq("status", "cancelled")),
	}
	for _, op := range valid {
		if err := op.Validate(); err != nil {
			t.Fatalf("%s: expected valid, got %v", op.Method, err)
		}
	}

	invalid := []Operation{
		{Method: MethodCreate, EntityType: "order"},
		{Method: MethodCreate, Properties: map[string]any{}},
		{Method: MethodUpdate, EntityType: "order", Properties: map[string]any{}},
		{Method: MethodUpdate, EntityType: "order", ID: id},
		{Method: MethodUpsert, EntityType: "order", CreateBody: map[string]any{}, UpdateBody: map[string]any{}},
		{Method: MethodUpsert, EntityType: "order", Reference: "r", CreateBody: map[string]any{}},
		{Method: MethodDelete, EntityType: "order"},
		{Method: MethodDeleteMany, EntityType: "order"},
		{Method: Method("truncate"), EntityType: "order"},
	}
	for _, op := range invalid {
		if err := op.Validate(); err == nil {
			t.Fatalf("%s: expected validation error, got nil (%+v)", op.Method, op)
		}
	}
}

func TestConditionNormalization(t *testing.T) {
	if !AllOf().IsZero() {
		t.Fatal("empty AllOf must be zero")
	}
	if !AllOf(Condition{}, Condition{}).IsZero() {
		t.Fatal("AllOf over zero members must be zero")
	}

	single := AllOf(Condition{}, Eq("status", "draft"))
	if len(single.And) != 0 || single.Field != "status" {
		t.Fatalf("single survivor must be unwrapped, got %+v", single)
	}

	pair := AnyOf(Eq("a", 1), Eq("b", 2))
	if len(pair.Or) != 2 {
		t.Fatalf("expected two disjuncts, got %+v", pair)
	}
}
