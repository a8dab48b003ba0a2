package utils

//Window returns the last 'length' entries of seq ending at index 'end' (inclusive).
//In case there are not enough entries before 'end', a shorter window is returned.
//The returned slice shares memory with seq and must not be modified.
func Window[T any](seq []T, end, length int) []T {
	if end < 0 || length <= 0 || len(seq) == 0 {
		return nil
	}

	if end >= len(seq) {
		end = len(seq) - 1
	}

	start := end - length + 1
	if start < 0 {
		start = 0
	}

	return seq[start : end+1]
}

//AnyInRange returns true if any flag in [from, to) is set. Bounds are clamped to flags length
func AnyInRange(flags []bool, from, to int) bool {
	if from < 0 {
		from = 0
	}

	if to > len(flags) {
		to = len(flags)
	}

	for i := from; i < to; i++ {
		if flags[i] {
			return true
		}
	}

	return false
}
