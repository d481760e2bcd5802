package paths

import (
	"reflect"
	"testing"
)

func TestFindCollisions_NoCollisions(t *testing.T) {
	got := FindCollisions([]string{"/a/cat.png", "/a/dog.png", "/b/orders.json"})
	if len(got) != 0 {
		t.Errorf("expected no collisions, got %v", got)
	}
}

func TestFindCollisions_SingleFile(t *testing.T) {
	if got := FindCollisions([]string{"/a/cat.png"}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestFindCollisions_CaseInsensitive(t *testing.T) {
	got := FindCollisions([]string{"/a/cat.png", "/b/dog.png", "/c/CAT.png"})

	want := []Collision{{Name: "cat.png", Paths: []string{"/a/cat.png", "/c/CAT.png"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindCollisions = %v, want %v", got, want)
	}
	if CollisionCount(got) != 2 {
		t.Errorf("CollisionCount = %d, want 2", CollisionCount(got))
	}
}

func TestFindCollisions_SortedGroups(t *testing.T) {
	got := FindCollisions([]string{
		"x/z.json", "y/z.json",
		"x/a.png", "y/a.png", "w/a.png",
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Name != "a.png" || got[1].Name != "z.json" {
		t.Errorf("groups not sorted: %v", got)
	}
	if CollisionCount(got) != 5 {
		t.Errorf("CollisionCount = %d, want 5", CollisionCount(got))
	}
}
