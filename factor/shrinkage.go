package factor

// ShrinkWeight returns the trust placed in a raw park factor given its
// sample size n and the regression constant k: n / (n + k), bounded to
// [0, 1]. At n == k the raw estimate and the neutral prior carry equal
// weight. A non-positive k disables shrinkage entirely for any n > 0.
func ShrinkWeight(n int, k float64) float64 {
	if n <= 0 {
		return 0
	}
	if k <= 0 {
		return 1
	}

	w := float64(n) / (float64(n) + k)
	if w > 1 {
		w = 1
	}
	return w
}

// Shrink regresses a team-adjusted factor toward the neutral value 1.0 in
// proportion to sample size. As n approaches 0 the result approaches 1.0;
// as n grows it converges to the unshrunk factor.
func Shrink(adjusted float64, n int, k float64) float64 {
	w := ShrinkWeight(n, k)
	return w*adjusted + (1-w)*1.0
}

// Confidence converts sample size into the [0, 1] trust signal exposed to
// consumers: min(1, n/c) where c is the saturation sample size. It is a
// separate knob from the shrinkage weight so reporting trust can be tuned
// independently of the regression itself.
func Confidence(n int, c float64) float64 {
	if n <= 0 {
		return 0
	}
	if c <= 0 {
		return 1
	}

	conf := float64(n) / c
	if conf > 1 {
		conf = 1
	}
	return conf
}
