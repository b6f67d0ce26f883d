package staticmap

import (
	"math"
	"testing"
)

func TestProjection_WorldCenter(t *testing.T) {
	for _, zoom := range []int{0, 1, 5, 12} {
		half := worldSize(zoom) / 2
		if x := lonToX(0, zoom); math.Abs(x-half) > 1e-6 {
			t.Fatalf("lonToX(0, %d) = %v, want %v", zoom, x, half)
		}
		if y := latToY(0, zoom); math.Abs(y-half) > 1e-6 {
			t.Fatalf("latToY(0, %d) = %v, want %v", zoom, y, half)
		}
	}
}

func TestProjection_Edges(t *testing.T) {
	if x := lonToX(-180, 3); math.Abs(x) > 1e-6 {
		t.Fatalf("lonToX(-180) = %v, want 0", x)
	}
	if x := lonToX(180, 3); math.Abs(x-worldSize(3)) > 1e-6 {
		t.Fatalf("lonToX(180) = %v, want %v", x, worldSize(3))
	}
	// poles clamp to the mercator cutoff and stay finite
	if y := latToY(90, 4); math.IsInf(y, 0) || math.IsNaN(y) || y < 0 {
		t.Fatalf("latToY(90) = %v", y)
	}
	if y := latToY(-90, 4); math.IsInf(y, 0) || math.IsNaN(y) || y > worldSize(4) {
		t.Fatalf("latToY(-90) = %v", y)
	}
}

func TestProjection_Monotonic(t *testing.T) {
	// y grows southward in tile space
	if latToY(40, 6) >= latToY(30, 6) {
		t.Fatalf("latToY not decreasing with latitude")
	}
	if lonToX(-82.49, 6) >= lonToX(-81.00, 6) {
		t.Fatalf("lonToX not increasing with longitude")
	}
}

func TestProviderURL(t *testing.T) {
	p, err := Provider("")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if p.Name != "osm" {
		t.Fatalf("default provider = %q, want osm", p.Name)
	}
	got := p.URL(12, 1130, 1710)
	want := "https://tile.openstreetmap.org/12/1130/1710.png"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}

	if _, err := Provider("mapquest"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
