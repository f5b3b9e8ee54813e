// Package axismask builds per-dimension output-validity masks for strided,
// padded convolutions. It is the collaborator the fold package consumes to
// decide which output taps along a single axis are structurally defined.
package axismask

// Builder computes axis masks for symmetric zero padding. The filter's
// center tap is lower-biased (filterLen/2), matching the fold package's
// center convention.
type Builder struct{}

// BuildAxisMasks returns one boolean sequence per output tap t in
// [0, inputLen), each of length inputLen.
//
// A tap is valid when its filter window [t-k, t-k+filterLen-1] stays inside
// the padded extent [-padding, inputLen-1+padding] and t lies on the stride
// phase. The phase is the first output position whose window the padding
// fully absorbs: (k - min(padding, k)) % stride. For a valid tap the
// sequence marks the real input cells under the window; for an invalid tap
// it is all false.
func (Builder) BuildAxisMasks(inputLen, filterLen, stride, padding int) [][]bool {
	k := filterLen / 2
	phase := (k - min(padding, k)) % stride

	masks := make([][]bool, inputLen)
	for t := 0; t < inputLen; t++ {
		mask := make([]bool, inputLen)
		lo := t - k
		hi := t - k + filterLen - 1
		inBounds := lo >= -padding && hi <= inputLen-1+padding
		onPhase := t >= phase && (t-phase)%stride == 0
		if inBounds && onPhase {
			for j := max(lo, 0); j <= min(hi, inputLen-1); j++ {
				mask[j] = true
			}
		}
		masks[t] = mask
	}
	return masks
}

// Valid reduces the axis masks to one tap-validity bit per output position.
func Valid(inputLen, filterLen, stride, padding int) []bool {
	masks := Builder{}.BuildAxisMasks(inputLen, filterLen, stride, padding)
	valid := make([]bool, len(masks))
	for t, mask := range masks {
		for _, b := range mask {
			if b {
				valid[t] = true
				break
			}
		}
	}
	return valid
}
