package home

import (
	"charm.land/lipgloss/v2"

	"github.com/mezotv/skill-tree/internal/ui/theme"
)

const bannerArt = `
 ███████╗██╗  ██╗██╗██╗     ██╗         ████████╗██████╗ ███████╗███████╗
 ██╔════╝██║ ██╔╝██║██║     ██║         ╚══██╔══╝██╔══██╗██╔════╝██╔════╝
 ███████╗█████╔╝ ██║██║     ██║            ██║   ██████╔╝█████╗  █████╗
 ╚════██║██╔═██╗ ██║██║     ██║            ██║   ██╔══██╗██╔══╝  ██╔══╝
 ███████║██║  ██╗██║███████╗███████╗       ██║   ██║  ██║███████╗███████╗
 ╚══════╝╚═╝  ╚═╝╚═╝╚══════╝╚══════╝       ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝`

const bannerCompact = "S K I L L   T R E E"

// bannerWidth is the widest line of bannerArt.
const bannerWidth = 74

// RenderBanner returns the banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
