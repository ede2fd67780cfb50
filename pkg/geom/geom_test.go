package geom

import "testing"

func TestRuleResolve(t *testing.T) {
	parent := Rect{X: 100, Y: 50, Width: 800, Height: 400}

	tests := []struct {
		name string
		rule Rule
		want Rect
	}{
		{"full", Percent(0, 0, 100, 100), parent},
		{"quarter", Percent(50, 50, 50, 50), Rect{X: 500, Y: 250, Width: 400, Height: 200}},
		{"degenerate", Percent(10, 10, 0, -10), Rect{X: 180, Y: 90, Width: 0, Height: -40}},
		{"row with span", Row(1, 10, 80).WithSpan(5, 28), Rect{X: 140, Y: 90, Width: 224, Height: 320}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Resolve(parent); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleResolveZeroParent(t *testing.T) {
	got := Percent(10, 20, 50, 50).Resolve(Rect{})
	if !got.IsZero() {
		t.Errorf("Resolve(zero) = %v, want zero rect", got)
	}
}

func TestRectContains(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	tests := []struct {
		name  string
		inner Rect
		want  bool
	}{
		{"same", outer, true},
		{"inside", Rect{X: 10, Y: 10, Width: 20, Height: 20}, true},
		{"overflow right", Rect{X: 90, Y: 10, Width: 20, Height: 20}, false},
		{"overflow top", Rect{X: 10, Y: -1, Width: 20, Height: 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	if r.Right() != 40 || r.Bottom() != 60 {
		t.Errorf("Right/Bottom = %v/%v, want 40/60", r.Right(), r.Bottom())
	}
	if got := r.Translate(5, -5); got != (Rect{X: 15, Y: 15, Width: 30, Height: 40}) {
		t.Errorf("Translate() = %v", got)
	}
	if r.Area() != 1200 {
		t.Errorf("Area() = %v, want 1200", r.Area())
	}
	if (Rect{Width: -1, Height: 5}).Area() != 0 {
		t.Error("Area() of degenerate rect should be 0")
	}
	if r.Origin() != (Point{X: 10, Y: 20}) {
		t.Errorf("Origin() = %v", r.Origin())
	}
	if r.String() != "{10,20,30,40}" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestRuleKindString(t *testing.T) {
	if RulePercent.String() != "percent" || RuleRow.String() != "row" {
		t.Errorf("String() = %q/%q", RulePercent, RuleRow)
	}
}
