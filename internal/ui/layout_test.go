package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(60, 20)
	header := l.RenderHeader("PulsePH", "polling")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "PulsePH")
	assert.Contains(t, header, "polling")
}

func TestRenderWithFramePinsStatusBar(t *testing.T) {
	l := NewLayout(40, 10)
	out := l.RenderWithFrame("head", "one\ntwo", l.RenderStatusBar("q quit"))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, lines[len(lines)-1], "q quit")
}

func TestOverlayPlacesBoxTopRight(t *testing.T) {
	base := strings.Repeat(".", 20) + "\n" + strings.Repeat(".", 20)
	out := Overlay(base, "AB\nCD", 20)
	lines := strings.Split(out, "\n")
	assert.Equal(t, strings.Repeat(".", 18)+"AB", lines[0])
	assert.Equal(t, strings.Repeat(".", 18)+"CD", lines[1])
}

func TestOverlayExtendsShortBase(t *testing.T) {
	out := Overlay("x", "A\nB", 4)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "x  A", lines[0])
	assert.Equal(t, "   B", lines[1])
}

func TestOverlayEmptyBox(t *testing.T) {
	assert.Equal(t, "base", Overlay("base", "", 10))
}
