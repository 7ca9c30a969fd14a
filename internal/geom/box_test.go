package geom

import "testing"

func TestFromRect(t *testing.T) {
	b := FromRect(10, 20, 100, 50)
	if b.MinX != 10 || b.MinY != 20 || b.MaxX != 110 || b.MaxY != 70 {
		t.Fatalf("unexpected box %+v", b)
	}
	if b.Width() != 100 || b.Height() != 50 {
		t.Errorf("size = %.0fx%.0f, want 100x50", b.Width(), b.Height())
	}
	if b.CenterX() != 60 || b.CenterY() != 45 {
		t.Errorf("center = (%.0f, %.0f), want (60, 45)", b.CenterX(), b.CenterY())
	}
}

func TestUnion(t *testing.T) {
	a := FromRect(0, 0, 10, 10)
	b := FromRect(20, -5, 10, 10)
	got := a.Union(b)
	want := Box{MinX: 0, MinY: -5, MaxX: 30, MaxY: 10}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestOverlaps(t *testing.T) {
	a := FromRect(0, 0, 10, 10)
	tests := []struct {
		name string
		b    Box
		want bool
	}{
		{"inside", FromRect(2, 2, 2, 2), true},
		{"partial", FromRect(5, 5, 10, 10), true},
		{"touching edge", FromRect(10, 0, 10, 10), false},
		{"disjoint", FromRect(20, 20, 5, 5), false},
	}
	for _, tt := range tests {
		if got := a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestContainsWithin(t *testing.T) {
	outer := FromRect(0, 0, 100, 100)
	if !outer.Contains(FromRect(0, 0, 100, 100)) {
		t.Error("box should contain itself")
	}
	if outer.Contains(FromRect(-0.5, 0, 10, 10)) {
		t.Error("box sticking out by 0.5 should not be contained")
	}
	if !outer.ContainsWithin(FromRect(-0.5, 0, 10, 10), 1) {
		t.Error("box sticking out by 0.5 should be contained with tolerance 1")
	}
}

func TestVerticalOverlap(t *testing.T) {
	b := FromRect(0, 100, 10, 100)
	if got := b.VerticalOverlap(150, 300); got != 50 {
		t.Errorf("VerticalOverlap = %.0f, want 50", got)
	}
	if got := b.VerticalOverlap(300, 400); got != 0 {
		t.Errorf("VerticalOverlap disjoint = %.0f, want 0", got)
	}
}

func TestInsetAndTranslate(t *testing.T) {
	b := FromRect(0, 0, 100, 100).Inset(10, 20, 30, 40).Translate(5, 5)
	want := Box{MinX: 25, MinY: 15, MaxX: 65, MaxY: 75}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
	if FromRect(0, 0, 10, 10).Inset(6, 0, 6, 0).Empty() != true {
		t.Error("over-inset box should be empty")
	}
}
