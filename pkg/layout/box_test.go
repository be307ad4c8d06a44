package layout

import "testing"

func TestBoxWidth(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want float64
	}{
		{
			name: "positive width",
			box:  Box{Left: 10, Right: 50},
			want: 40,
		},
		{
			name: "zero width",
			box:  Box{Left: 10, Right: 10},
			want: 0,
		},
		{
			name: "from origin",
			box:  Box{Left: 0, Right: 100},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Width(); got != tt.want {
				t.Errorf("Width() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoxHeight(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want float64
	}{
		{
			name: "positive height",
			box:  Box{Top: 20, Bottom: 80},
			want: 60,
		},
		{
			name: "zero height",
			box:  Box{Top: 50, Bottom: 50},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Height(); got != tt.want {
				t.Errorf("Height() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoxCenter(t *testing.T) {
	b := Rect("a", 10, 20, 40, 60)
	if got := b.CenterX(); got != 30 {
		t.Errorf("CenterX() = %v, want 30", got)
	}
	if got := b.CenterY(); got != 50 {
		t.Errorf("CenterY() = %v, want 50", got)
	}
}

func TestBoxTranslate(t *testing.T) {
	got := Rect("a", 10, 20, 40, 60).Translate(-10, 5)
	want := Box{NodeID: "a", Left: 0, Top: 25, Right: 40, Bottom: 85}
	if got != want {
		t.Errorf("Translate() = %+v, want %+v", got, want)
	}
}

func TestBoxUnion(t *testing.T) {
	got := Rect("a", 0, 0, 10, 10).Union(Rect("b", 5, -5, 10, 10))
	want := Box{NodeID: "a", Left: 0, Top: -5, Right: 15, Bottom: 10}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
}
