package bookmark

// widthTracker keeps the widest field among live bookmarks. Every width is
// counted in a histogram so removing the widest entry finds the next one even
// when several entries share the maximum.
type widthTracker struct {
	counts  []int
	longest int
}

func newWidthTracker(limit int) widthTracker {
	return widthTracker{counts: make([]int, limit+1)}
}

// Longest returns the current maximum width, 0 when empty.
func (w *widthTracker) Longest() int {
	return w.longest
}

func (w *widthTracker) add(width int) {
	width = w.clamp(width)
	w.counts[width]++
	if width > w.longest {
		w.longest = width
	}
}

func (w *widthTracker) remove(width int) {
	width = w.clamp(width)
	if w.counts[width] == 0 {
		return
	}
	w.counts[width]--
	if w.counts[width] > 0 || width != w.longest {
		return
	}
	for i := width - 1; i > 0; i-- {
		if w.counts[i] > 0 {
			w.longest = i
			return
		}
	}
	w.longest = 0
}

func (w *widthTracker) clamp(width int) int {
	return max(0, min(width, len(w.counts)-1))
}
