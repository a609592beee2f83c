package implicit

import "math"

// Sphere is x² + y² + z² - r².
func Sphere(x, y, z, r float64) float64 {
	return x*x + y*y + z*z - r*r
}

// Torus is (√(x²+y²) - R)² + z² - r², a ring around the z axis.
func Torus(x, y, z, R, r float64) float64 {
	d := math.Sqrt(x*x+y*y) - R
	return d*d + z*z - r*r
}

// Heart is (x² + 9y²/4 + z² - 1)³ - x²z³ - 9y²z³/80.
func Heart(x, y, z float64) float64 {
	x2, y2, z2 := x*x, y*y, z*z
	term := x2 + 2.25*y2 + z2 - 1
	return term*term*term - x2*z2*z - 0.1125*y2*z2*z
}

// Goursat is x⁴ + y⁴ + z⁴ - a·r⁴ - b·r² + c where r² = x² + y² + z².
func Goursat(x, y, z, a, b, c float64) float64 {
	r2 := x*x + y*y + z*z
	return x*x*x*x + y*y*y*y + z*z*z*z - a*r2*r2 - b*r2 + c
}

// KleinBottle is (r²+2y-1)·[(r²-2y-1)² - 8z²] + 16xz(r²-2y-1)
// where r² = x² + y² + z². The surface is non-orientable so meshes
// extracted from it need double sided rendering.
func KleinBottle(x, y, z float64) float64 {
	r2 := x*x + y*y + z*z
	t1 := r2 + 2*y - 1
	t2 := r2 - 2*y - 1
	return t1*(t2*t2-8*z*z) + 16*x*z*t2
}
