package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func renderSearchHelp(keys SearchKeyMap, width int) string {
	return renderHelpLine([]string{
		bindingHelp(keys.Apply),
		bindingHelp(keys.Cancel),
		bindingHelp(keys.Clear),
		helpKey("type", "filter rows"),
	}, width)
}

func bindingHelp(b key.Binding) string {
	h := b.Help()
	return helpKey(h.Key, h.Desc)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(keys KeyMap, width, height int) string {
	content := lipgloss.NewStyle().
		Width(max(width-4, 0)).
		Height(max(height-6, 0)).
		Padding(1, 2)

	sections := []string{
		titleSection("Rows and Columns"),
		helpSection([]helpItem{
			{"j / ↓", "Move down, continuing onto the next page"},
			{"k / ↑", "Move up, continuing onto the previous page"},
			{"tab / shift+tab", "Cycle active column"},
			{"c / C", "Hide active column / show all"},
		}),
		titleSection("Sorting"),
		helpSection([]helpItem{
			{"enter / o", "Cycle active column: asc, desc, unsorted"},
			{"s / S", "Sort active column asc / desc"},
		}),
		titleSection("Search"),
		helpSection([]helpItem{
			{"/", "Search all searchable columns"},
			{"enter / esc", "Leave the search box, keeping the filter"},
			{"ctrl+l", "Clear search"},
		}),
		titleSection("Pages"),
		helpSection([]helpItem{
			{"n / → / pgdown", "Next page"},
			{"p / ← / pgup", "Previous page"},
			{"g / G", "First / last page"},
			{"1-9", "Go to page"},
			{"+ / -", "Longer / shorter pages"},
		}),
		titleSection("General"),
		helpSection([]helpItem{
			{"t / T", "Next / previous table"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		renderHelpLine([]string{helpKey("esc", "close help"), bindingHelp(keys.Quit)}, width),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
