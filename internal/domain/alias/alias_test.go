package alias

import (
	"reflect"
	"testing"
)

func TestResolve_BlankOrAbsent(t *testing.T) {
	inputs := []any{nil, "", "   ", "\t\n", []string{}, []string(nil)}
	for _, in := range inputs {
		got := Resolve(in)
		if got == nil || len(got) != 0 {
			t.Errorf("Resolve(%#v) = %#v, want empty non-nil list", in, got)
		}
	}
}

func TestResolve_StringSplitsAndTrims(t *testing.T) {
	got := Resolve("a, b, b")
	want := []string{"a", "b", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolve_StringKeepsInteriorEmptyComponents(t *testing.T) {
	got := Resolve("red,, blue , ,")
	want := []string{"red", "", "blue", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolve_SliceIsCopied(t *testing.T) {
	in := []string{"x", "y"}
	got := Resolve(in)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("Resolve = %v, want %v", got, in)
	}

	got[0] = "mutated"
	if in[0] != "x" {
		t.Error("Resolve result aliases caller slice")
	}
}

func TestResolve_UnsupportedTypes(t *testing.T) {
	inputs := []any{42, 3.14, true, []int{1, 2}, []any{"a", 1}, map[string]string{"a": "b"}}
	for _, in := range inputs {
		if got := Resolve(in); len(got) != 0 {
			t.Errorf("Resolve(%#v) = %v, want empty", in, got)
		}
	}
}

func TestResolve_DecodedList(t *testing.T) {
	got := Resolve([]any{"x", "y"})
	want := []string{"x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestTitles_DedupAndSkipBlank(t *testing.T) {
	got := Titles("Roses", []string{"red", "", "blue", "red", " ", "Roses"})
	want := []string{"red", "blue", "Roses"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Titles = %v, want %v", got, want)
	}
}

func TestTitles_BlankTitle(t *testing.T) {
	got := Titles("", nil)
	if len(got) != 0 {
		t.Errorf("Titles = %v, want empty", got)
	}
}
