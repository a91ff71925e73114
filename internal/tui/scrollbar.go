package tui

// ScrollbarMetrics computes a scrollbar "car" (thumb) position and size,
// ported from original_source/scroll_car.cpp's calc_scroll_car_size /
// calc_scroll_car_offset. Only the single whole-line-character style is
// carried over; the original's half/eighth-block glyph variants are
// terminal-rendering detail out of this package's scope (left to the
// collaborator that owns glyph selection).
type ScrollbarMetrics struct {
	// CarSize is how many rows the thumb occupies, 0 if no scrollbar is
	// needed (content fits entirely within the viewport).
	CarSize int
	// CarOffset is the thumb's row offset from the top of the track.
	CarOffset int
}

// ComputeScrollbar computes the thumb geometry for a viewport of `rows`
// visible rows, scrolled to `top`, over `total` total rows.
func ComputeScrollbar(top, rows, total int) ScrollbarMetrics {
	size := calcCarSize(rows, total)
	if size <= 0 {
		return ScrollbarMetrics{}
	}
	return ScrollbarMetrics{CarSize: size, CarOffset: calcCarOffset(top, rows, total, size)}
}

func calcCarSize(rows, total int) int {
	if rows <= 0 || rows >= total {
		return 0
	}
	size := (rows*rows + total/2) / total
	if size < 1 {
		size = 1
	}
	if size > rows {
		size = rows
	}
	return size
}

func calcCarOffset(top, rows, total, carSize int) int {
	if carSize <= 0 {
		return 0
	}
	carPositions := rows + 1 - carSize
	if carPositions <= 0 {
		return 0
	}
	perCarPosition := float64(total-rows) / float64(carPositions)
	if perCarPosition <= 0 {
		return 0
	}
	offset := int(float64(top) / perCarPosition)
	if max := rows - carSize; offset > max {
		offset = max
	}
	return offset
}

// IsRowOnCar reports whether row (0-based, within the track) falls on the
// scrollbar thumb, for rendering a distinct glyph there.
func (m ScrollbarMetrics) IsRowOnCar(row int) bool {
	return m.CarSize > 0 && row >= m.CarOffset && row < m.CarOffset+m.CarSize
}
