package extract

import (
	"reflect"
	"testing"
)

func TestLayoutLines(t *testing.T) {
	lines := [][]span{
		{{X: 50, W: 120, S: "COVID-19 Daily Data Summary"}},
		{{X: 50, W: 40, S: "Age Group"}},
		{
			{X: 60, W: 8, S: "0"}, {X: 70, W: 8, S: "to"}, {X: 80, W: 8, S: "17"},
			{X: 200, W: 5, S: "1"}, {X: 205, W: 5, S: "2"}, {X: 210, W: 5, S: "0"},
			{X: 280, W: 10, S: "12"},
		},
		{
			{X: 60, W: 8, S: "18"}, {X: 70, W: 8, S: "to"}, {X: 80, W: 8, S: "44"},
			{X: 190, W: 25, S: "1,204"},
		},
		{{X: 50, W: 15, S: "Sex"}},
		{{X: 60, W: 30, S: "Female"}, {X: 285, W: 5, S: "7"}},
	}

	got := layoutLines(lines)
	want := [][]string{
		{"COVID-19 Daily Data Summary", "", ""},
		{"Age Group", "", ""},
		{"0 to 17", "120", "12"},
		{"18 to 44", "1,204", ""},
		{"Sex", "", ""},
		{"Female", "", "7"},
	}
	if len(got) != len(want) {
		t.Fatalf("rows=%d want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !reflect.DeepEqual([]string(got[i]), want[i]) {
			t.Fatalf("row %d = %q want %q", i, got[i], want[i])
		}
	}
}

func TestClusterEdges(t *testing.T) {
	got := clusterEdges([]float64{290, 215, 214, 216, 291})
	if len(got) != 2 {
		t.Fatalf("columns=%v", got)
	}
	if got[0] != 215 || got[1] != 290.5 {
		t.Fatalf("columns=%v", got)
	}
}
