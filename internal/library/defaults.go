package library

// Canned landmark arrays for the built-in poses, in the flat
// [x,y,z, ...] layout with one triple per anatomical joint (wrist first).
// Coordinates are in the detector's normalized image space.

var palmLandmarks = []float64{
	0.5, 0.5, 0.0, // wrist
	0.6, 0.4, 0.0, 0.7, 0.3, 0.0, 0.8, 0.3, 0.0, 0.9, 0.3, 0.0, // thumb
	0.5, 0.4, 0.0, 0.5, 0.3, 0.0, 0.5, 0.2, 0.0, 0.5, 0.1, 0.0, // index
	0.4, 0.4, 0.0, 0.4, 0.3, 0.0, 0.4, 0.2, 0.0, 0.4, 0.1, 0.0, // middle
	0.3, 0.4, 0.0, 0.3, 0.3, 0.0, 0.3, 0.2, 0.0, 0.3, 0.1, 0.0, // ring
	0.2, 0.5, 0.0, 0.2, 0.4, 0.0, 0.2, 0.3, 0.0, 0.2, 0.2, 0.0, // pinky
}

var fistLandmarks = []float64{
	0.5, 0.5, 0.0, // wrist
	0.6, 0.4, 0.0, 0.7, 0.3, 0.0, 0.8, 0.3, 0.0, 0.9, 0.3, 0.0, // thumb
	0.5, 0.4, 0.0, 0.5, 0.5, 0.0, 0.5, 0.6, 0.0, 0.5, 0.7, 0.0, // index, folded
	0.4, 0.4, 0.0, 0.4, 0.5, 0.0, 0.4, 0.6, 0.0, 0.4, 0.7, 0.0, // middle, folded
	0.3, 0.4, 0.0, 0.3, 0.5, 0.0, 0.3, 0.6, 0.0, 0.3, 0.7, 0.0, // ring, folded
	0.2, 0.5, 0.0, 0.2, 0.5, 0.0, 0.2, 0.6, 0.0, 0.2, 0.7, 0.0, // pinky, folded
}

var pointUpLandmarks = []float64{
	0.5, 0.5, 0.0, // wrist
	0.6, 0.4, 0.0, 0.7, 0.3, 0.0, 0.8, 0.3, 0.0, 0.9, 0.3, 0.0, // thumb
	0.5, 0.2, 0.0, 0.5, 0.1, 0.0, 0.5, 0.0, 0.0, 0.5, -0.1, 0.0, // index, extended
	0.4, 0.4, 0.0, 0.4, 0.5, 0.0, 0.4, 0.6, 0.0, 0.4, 0.7, 0.0, // middle, folded
	0.3, 0.4, 0.0, 0.3, 0.5, 0.0, 0.3, 0.6, 0.0, 0.3, 0.7, 0.0, // ring, folded
	0.2, 0.5, 0.0, 0.2, 0.5, 0.0, 0.2, 0.6, 0.0, 0.2, 0.7, 0.0, // pinky, folded
}

// Defaults returns the built-in pose set used to seed a fresh or corrupted
// store. Creation time 0 marks them as predating any enrolled pose.
func Defaults() []*ReferencePose {
	return []*ReferencePose{
		{
			ID:        "fist_default",
			Name:      "✊ Fist",
			Landmarks: append([]float64(nil), fistLandmarks...),
			Message:   "I NEED HELP",
			CreatedAt: 0,
			IsDefault: true,
		},
		{
			ID:        "point_up_default",
			Name:      "👆 Point Up",
			Landmarks: append([]float64(nil), pointUpLandmarks...),
			Message:   "I HAVE A DOUBT",
			CreatedAt: 0,
			IsDefault: true,
		},
		{
			ID:        "palm_default",
			Name:      "🖐️ Palm",
			Landmarks: append([]float64(nil), palmLandmarks...),
			Message:   "WAIT A MINUTE",
			CreatedAt: 0,
			IsDefault: true,
		},
	}
}

// DefaultLibrary returns a Library seeded with the built-in poses.
func DefaultLibrary() *Library {
	l := New()
	for _, p := range Defaults() {
		l.Add(p)
	}
	return l
}
