package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/sortit/internal/dataset"
	"github.com/Veraticus/sortit/internal/guide"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/rules"
)

const maxBarWidth = 30

// RenderResult renders one classification as a card. With explain set, the
// deciding step and the matching label and keyword are included.
func RenderResult(name string, result *model.ClassificationResult, explain bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", FormatCategory(result.Category))
	fmt.Fprintf(&b, "%s\n", BoldStyle.Render(result.Disposal.Title))
	fmt.Fprintf(&b, "%s\n", result.Disposal.Guide)
	if result.Disposal.BinImage != "" {
		fmt.Fprintf(&b, "%s\n", SubtleStyle.Render("Bin: "+result.Disposal.BinImage))
	}

	if len(result.Labels) > 0 {
		fmt.Fprintf(&b, "\n%s %s\n", SubtleStyle.Render("Labels:"), formatLabels(result.Labels))
	} else {
		fmt.Fprintf(&b, "\n%s\n", SubtleStyle.Render("No labels detected"))
	}

	if explain {
		fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Step:"), result.Step)
		if result.MatchedLabel != "" {
			fmt.Fprintf(&b, "%s %q matched keyword %q\n",
				SubtleStyle.Render("Match:"), result.MatchedLabel, result.MatchedKeyword)
		}
		fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Source:"), result.Source)
	}

	title := "Classification"
	if name != "" {
		title = name
	}
	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}

func formatLabels(ls model.LabelSet) string {
	parts := make([]string, 0, len(ls))
	for _, l := range ls {
		if l.Confidence != nil {
			parts = append(parts, fmt.Sprintf("%s (%.0f%%)", l.Name, *l.Confidence*100))
			continue
		}
		parts = append(parts, l.Name)
	}
	return strings.Join(parts, ", ")
}

// RenderTable renders rows under a header using the shared table styles.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return t.Render()
}

// RenderRules lists every category with its keywords and disposal title.
func RenderRules(rs *rules.RuleSet, guides *guide.Table) string {
	rows := make([][]string, 0, len(model.AllCategories()))
	for _, entry := range rs.Entries() {
		keywords := strings.Join(entry.Keywords, ", ")
		if keywords == "" {
			keywords = SubtleStyle.Render("(fallback)")
		}
		rows = append(rows, []string{
			FormatCategory(entry.Category),
			keywords,
			guides.Lookup(entry.Category).Title,
		})
	}

	var b strings.Builder
	b.WriteString(FormatTitle(CategoryIcon(model.Recyclable) + " Category rules"))
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"Category", "Keywords", "Disposal"}, rows))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("Container words: " + strings.Join(rs.ContainerWords(), ", ")))
	return b.String()
}

// RenderDistribution draws a bar per dataset class.
func RenderDistribution(counts []dataset.ClassCount) string {
	maxImages := 0
	for _, c := range counts {
		if c.Images > maxImages {
			maxImages = c.Images
		}
	}

	rows := make([][]string, 0, len(counts)+1)
	for _, c := range counts {
		rows = append(rows, []string{c.Class, strconv.Itoa(c.Images), bar(c.Images, maxImages)})
	}
	rows = append(rows, []string{BoldStyle.Render("total"), BoldStyle.Render(strconv.Itoa(dataset.Total(counts))), ""})

	return FormatTitle(ChartIcon+" Dataset distribution") + "\n" +
		RenderTable([]string{"Class", "Images", ""}, rows)
}

// RenderCounts draws a bar per category, largest first.
func RenderCounts(counts map[model.Category]int) string {
	cats := model.AllCategories()
	sort.SliceStable(cats, func(i, j int) bool {
		return counts[cats[i]] > counts[cats[j]]
	})

	maxCount, total := 0, 0
	for _, c := range cats {
		total += counts[c]
		if counts[c] > maxCount {
			maxCount = counts[c]
		}
	}

	rows := make([][]string, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, []string{
			FormatCategory(c),
			strconv.Itoa(counts[c]),
			CategoryStyle(c).Render(bar(counts[c], maxCount)),
		})
	}
	rows = append(rows, []string{BoldStyle.Render("total"), BoldStyle.Render(strconv.Itoa(total)), ""})

	return FormatTitle(ChartIcon+" Classification history") + "\n" +
		RenderTable([]string{"Category", "Count", ""}, rows)
}

// RenderHistory lists stored results, one row each.
func RenderHistory(results []model.ClassificationResult) string {
	if len(results) == 0 {
		return FormatInfo("No classifications recorded yet")
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.ClassifiedAt.Local().Format("2006-01-02 15:04"),
			FormatCategory(r.Category),
			formatLabels(r.Labels),
			r.Source,
			SubtleStyle.Render(r.ID),
		})
	}
	return RenderTable([]string{"When", "Category", "Labels", "Source", "ID"}, rows)
}

func bar(n, maxN int) string {
	if maxN <= 0 || n <= 0 {
		return ""
	}
	width := n * maxBarWidth / maxN
	if width == 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}
