package types

import (
	"encoding/json"
	"testing"
)

func TestFlexFloat64(t *testing.T) {
	var body struct {
		A FlexFloat64 `json:"a"`
		B FlexFloat64 `json:"b"`
		C FlexFloat64 `json:"c"`
		D FlexFloat64 `json:"d"`
		E FlexFloat64 `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"a": 150, "b": "28.5", "c": null, "d": ""}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !body.A.Set || body.A.Value != 150 {
		t.Errorf("a: got %+v", body.A)
	}
	if !body.B.Set || body.B.Value != 28.5 {
		t.Errorf("b: got %+v", body.B)
	}
	if body.C.Set || body.D.Set || body.E.Set {
		t.Errorf("null, empty string and missing should be unset: %+v %+v %+v", body.C, body.D, body.E)
	}
	if body.C.Or(100) != 100 {
		t.Errorf("expected default 100, got %v", body.C.Or(100))
	}
	if body.C.Ptr() != nil {
		t.Error("expected nil pointer for unset value")
	}
}

func TestFlexFloat64Invalid(t *testing.T) {
	var f FlexFloat64
	if err := json.Unmarshal([]byte(`"abc"`), &f); err == nil {
		t.Error("expected error for non numeric string")
	}
	if err := json.Unmarshal([]byte(`true`), &f); err == nil {
		t.Error("expected error for boolean")
	}
	for _, s := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Infinity"`, `"+Inf"`, `"1e400"`, `1e400`} {
		if err := json.Unmarshal([]byte(s), &f); err == nil {
			t.Errorf("expected error for %s, got %+v", s, f)
		}
	}
}

func TestFlexBool(t *testing.T) {
	var body struct {
		A FlexBool `json:"a"`
		B FlexBool `json:"b"`
		C FlexBool `json:"c"`
		D FlexBool `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a": false, "b": "true", "c": null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.A.Set || body.A.Value {
		t.Errorf("a: got %+v", body.A)
	}
	if !body.B.Or(false) {
		t.Errorf("b: got %+v", body.B)
	}
	if body.C.Set || body.D.Set {
		t.Errorf("null and missing should be unset: %+v %+v", body.C, body.D)
	}
	if !body.D.Or(true) {
		t.Error("expected the default for a missing flag")
	}

	var f FlexBool
	if err := json.Unmarshal([]byte(`"maybe"`), &f); err == nil {
		t.Error("expected error for a non boolean string")
	}
}

func TestFlexFloat64IntPtr(t *testing.T) {
	f := FlexFloat64{Value: 187.5, Set: true}
	if got := *f.IntPtr(); got != 188 {
		t.Errorf("expected 188, got %d", got)
	}
}

func TestFlexUint64(t *testing.T) {
	var body struct {
		ID    FlexUint64 `json:"id"`
		Other FlexUint64 `json:"other"`
	}
	if err := json.Unmarshal([]byte(`{"id": "42"}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.ID.Ptr() == nil || *body.ID.Ptr() != 42 {
		t.Errorf("expected 42, got %+v", body.ID)
	}
	if body.Other.Ptr() != nil {
		t.Error("expected missing id to be unset")
	}

	out, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"id":42,"other":null}` {
		t.Errorf("unexpected marshal output %s", out)
	}
}

func TestFlexListSingleObject(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	var list FlexList[item]
	if err := json.Unmarshal([]byte(`{"name":"oats"}`), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 || list[0].Name != "oats" {
		t.Errorf("unexpected list %+v", list)
	}

	if err := json.Unmarshal([]byte(`[{"name":"a"},{"name":"b"}]`), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Slice()) != 2 {
		t.Errorf("expected 2 items, got %d", len(list))
	}
}

func TestFlexListProvided(t *testing.T) {
	var body struct {
		Steps FlexList[string] `json:"steps"`
		Meals FlexList[int]    `json:"meals"`
		Items FlexList[int]    `json:"items"`
	}
	if err := json.Unmarshal([]byte(`{"steps":"Grill","meals":[],"items":""}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Steps.Provided() || body.Steps[0] != "Grill" {
		t.Errorf("expected a single step, got %v", body.Steps)
	}
	if !body.Meals.Provided() || len(body.Meals) != 0 {
		t.Errorf("expected an empty but provided list, got %#v", body.Meals)
	}
	if body.Items.Provided() {
		t.Errorf("expected a blank list to be unset, got %#v", body.Items)
	}

	if err := json.Unmarshal([]byte(`{"meals":["x"]}`), &body); err == nil {
		t.Error("expected an error for a mistyped element")
	}
}
