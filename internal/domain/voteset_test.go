package domain

import "testing"

func TestVoteSet_AddRemove(t *testing.T) {
	var v VoteSet
	if !v.Add("u1") || v.Add("u1") {
		t.Fatalf("Add should insert once")
	}
	v.Add("u2")
	if v.Len() != 2 || !v.Has("u2") {
		t.Fatalf("unexpected set %v", v)
	}
	if !v.Remove("u1") || v.Remove("u1") {
		t.Fatalf("Remove should delete once")
	}
	if v.Len() != 1 || v[0] != "u2" {
		t.Fatalf("unexpected set after remove %v", v)
	}
}

func TestVoteSet_RemoveDoesNotAliasClone(t *testing.T) {
	v := VoteSet{"a", "b", "c"}
	c := v.Clone()
	v.Remove("a")
	if c.Len() != 3 || c[0] != "a" {
		t.Fatalf("clone changed: %v", c)
	}
}

func TestVoteSet_ScanDedupes(t *testing.T) {
	var v VoteSet
	if err := v.Scan([]byte(`["u1","u2","u1"]`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if v.Len() != 2 {
		t.Fatalf("expected dedupe, got %v", v)
	}
	if err := v.Scan(nil); err != nil || v == nil || v.Len() != 0 {
		t.Fatalf("nil scan should yield empty set, got %v %v", v, err)
	}
	if err := v.Scan(""); err != nil || v.Len() != 0 {
		t.Fatalf("empty scan should yield empty set, got %v %v", v, err)
	}
	if err := v.Scan(42); err == nil {
		t.Fatalf("expected error for int column")
	}
}

func TestVoteSet_Value(t *testing.T) {
	var v VoteSet
	got, err := v.Value()
	if err != nil || got != "[]" {
		t.Fatalf("nil value = %v, %v", got, err)
	}
	got, _ = VoteSet{"x"}.Value()
	if got != `["x"]` {
		t.Fatalf("value = %v", got)
	}
}

func TestDirection_Sets(t *testing.T) {
	s := &Suggestion{Upvotes: VoteSet{"u"}, Downvotes: VoteSet{}}
	target, opp := Up.Sets(s)
	if !target.Has("u") || opp.Len() != 0 {
		t.Fatalf("Up.Sets wrong")
	}
	target, opp = Down.Sets(s)
	target.Add("d")
	opp.Remove("u")
	if !s.Downvotes.Has("d") || s.Upvotes.Has("u") {
		t.Fatalf("Down.Sets must alias suggestion fields")
	}
	if Up.String() != "up" || Down.String() != "down" {
		t.Fatalf("direction strings")
	}
}
