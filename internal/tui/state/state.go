package state

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// NearEnd reports whether the cursor is within lookahead rows of the last
// item, which is when the next batch should be requested. An empty queue is
// never near its end; the initial load covers that case.
func NearEnd(cursor, size, lookahead int) bool {
	if size <= 0 {
		return false
	}
	if lookahead < 0 {
		lookahead = 0
	}
	return ClampCursor(cursor, size) >= size-1-lookahead
}

// CursorForIndex finds the row showing item index, or -1.
func CursorForIndex(indices []int, index int) int {
	for i, idx := range indices {
		if idx == index {
			return i
		}
	}
	return -1
}
