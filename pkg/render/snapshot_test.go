// pkg/render/snapshot_test.go
package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSnapshotSurface_RejectsBadSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		zoom          float32
	}{
		{"zero_width", 0, 10, 1},
		{"negative_height", 10, -1, 1},
		{"zero_zoom", 10, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSnapshotSurface(tt.width, tt.height, tt.zoom); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSnapshotSurface_FillsCircle(t *testing.T) {
	s, err := NewSnapshotSurface(64, 64, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Clear(color.RGBA{A: 255})
	s.SetStyle(Style{Fill: color.RGBA{R: 255, A: 255}})
	s.Circle(0, 0, 1)

	img := s.Image()
	r, g, _, _ := img.At(32, 32).RGBA()
	if r>>8 < 200 || g>>8 > 50 {
		t.Errorf("expected red at center, got r=%d g=%d", r>>8, g>>8)
	}
	r, _, _, _ = img.At(2, 2).RGBA()
	if r>>8 > 50 {
		t.Errorf("expected background at corner, got r=%d", r>>8)
	}
	if s.Depth() != -1 {
		t.Errorf("Depth() = %v", s.Depth())
	}
}

func TestSnapshotSurface_SavePNG(t *testing.T) {
	s, err := NewSnapshotSurface(32, 32, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Clear(color.RGBA{R: 20, G: 20, B: 30, A: 255})
	s.Line(-2, -2, 2, 2, 0.5)
	s.Rect(-1, -1, 2, 2)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty PNG")
	}
}
