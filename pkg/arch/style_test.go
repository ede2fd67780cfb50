package arch

import "testing"

func TestFillColor(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"sky", "#E3F2FD"},
		{"Sky", "#E3F2FD"},
		{"하늘색", "#E3F2FD"},
		{"green", "#C8E6C9"},
		{"#e3f2fd", "#E3F2FD"},
		{"rgb(255, 224, 178)", "#FFE0B2"},
		{"chartreuse", FallbackFill},
		{"", FallbackFill},
	}

	for _, tt := range tests {
		if got := FillColor(tt.token); got != tt.want {
			t.Errorf("FillColor(%q) = %s, want %s", tt.token, got, tt.want)
		}
	}
}

func TestBorderColor(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"darkblue", "#1976D2"},
		{"진한빨강", "#D32F2F"},
		{"gray", "#999999"},
		{"dimgray", "#666666"},
		{"nope", FallbackBorder},
	}

	for _, tt := range tests {
		if got := BorderColor(tt.token); got != tt.want {
			t.Errorf("BorderColor(%q) = %s, want %s", tt.token, got, tt.want)
		}
	}
}

func TestReverseLookup(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) string
		color string
		want  string
	}{
		{"fill exact", FillToken, "#E3F2FD", "sky"},
		{"fill lowercase", FillToken, "#e8f5e9", "lime"},
		{"fill bare hex", FillToken, "FFE0B2", "orange"},
		{"fill rgb", FillToken, "rgb(245,245,245)", "lightgray"},
		{"fill unknown", FillToken, "#123456", "white"},
		{"fill none", FillToken, "none", "white"},
		{"border exact", BorderToken, "#388E3C", "darkgreen"},
		{"border unknown", BorderToken, "#ABCDEF", "gray"},
		{"border none", BorderToken, "none", "gray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.color); got != tt.want {
				t.Errorf("lookup(%q) = %s, want %s", tt.color, got, tt.want)
			}
		})
	}
}

func TestRoundTripTokens(t *testing.T) {
	for token := range fillColors {
		if got := FillToken(FillColor(token)); got != token {
			t.Errorf("FillToken(FillColor(%q)) = %q", token, got)
		}
	}
	for token := range borderColors {
		if got := BorderToken(BorderColor(token)); got != token {
			t.Errorf("BorderToken(BorderColor(%q)) = %q", token, got)
		}
	}
}

func TestShapeStyle(t *testing.T) {
	tests := []struct {
		shape string
		want  string
	}{
		{"database", "shape=cylinder3;whiteSpace=wrap;html=1;boundedLbl=1;"},
		{"데이터베이스", "shape=cylinder3;whiteSpace=wrap;html=1;boundedLbl=1;"},
		{"service", "rounded=1;whiteSpace=wrap;html=1;arcSize=10;"},
		{"box", "rounded=0;whiteSpace=wrap;html=1;"},
		{"hexagon", "rounded=0;whiteSpace=wrap;html=1;"},
	}

	for _, tt := range tests {
		if got := ShapeStyle(tt.shape); got != tt.want {
			t.Errorf("ShapeStyle(%q) = %q, want %q", tt.shape, got, tt.want)
		}
	}
}

func TestConnectionStyle(t *testing.T) {
	if s := ConnectionStyle("stream"); s.EndArrow != "block" || s.Style != EdgeBase+"strokeWidth=3;" {
		t.Errorf("stream = %+v", s)
	}
	if s := ConnectionStyle("양방향"); s.StartArrow != "classic" {
		t.Errorf("bidirectional alias = %+v", s)
	}
	if s := ConnectionStyle("unknown"); s != ConnectionStyle(ConnDataflow) {
		t.Errorf("unknown kind = %+v, want dataflow", s)
	}
}

func TestLineStyle(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"solid", ""},
		{"dotted", "dashed=1;dashPattern=3 3;"},
		{"굵은실선", "strokeWidth=3;"},
		{"double", "strokeWidth=1;"},
		{"wavy", ""},
	}

	for _, tt := range tests {
		if got := LineStyle(tt.line); got != tt.want {
			t.Errorf("LineStyle(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
