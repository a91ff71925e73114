package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeScrollbar_FitsEntirely(t *testing.T) {
	m := ComputeScrollbar(0, 20, 10)
	assert.Equal(t, 0, m.CarSize)
}

func TestComputeScrollbar_ProducesThumb(t *testing.T) {
	m := ComputeScrollbar(0, 10, 100)
	assert.Greater(t, m.CarSize, 0)
	assert.Equal(t, 0, m.CarOffset)
}

func TestComputeScrollbar_OffsetAdvancesWithScroll(t *testing.T) {
	top := ComputeScrollbar(0, 10, 100)
	bottom := ComputeScrollbar(90, 10, 100)
	assert.Greater(t, bottom.CarOffset, top.CarOffset)
}

func TestIsRowOnCar(t *testing.T) {
	m := ScrollbarMetrics{CarSize: 3, CarOffset: 2}
	assert.False(t, m.IsRowOnCar(1))
	assert.True(t, m.IsRowOnCar(2))
	assert.True(t, m.IsRowOnCar(4))
	assert.False(t, m.IsRowOnCar(5))
}
