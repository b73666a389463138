package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/clusters/pkg/clusters"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

var (
	colorMuted  = lipgloss.Color("#6c757d")
	colorAccent = lipgloss.Color("#5f9fb0")
	colorWarn   = lipgloss.Color("#f39c12")
)

// styles are bound to one writer so colour is only emitted to terminals.
type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	muted    lipgloss.Style
	archived lipgloss.Style
	header   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(colorAccent),
		label:    r.NewStyle().Bold(true),
		muted:    r.NewStyle().Foreground(colorMuted),
		archived: r.NewStyle().Foreground(colorWarn),
		header:   r.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
	}
}

// relTime renders t as "3 minutes ago".
func relTime(t time.Time) string {
	return humanize.Time(t)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	return nil
}

// clusterView is the JSON shape of a cluster.
type clusterView struct {
	ClusterID  string      `json:"cluster_id"`
	Name       string      `json:"name"`
	CreatedAt  time.Time   `json:"created_at"`
	FieldCount int         `json:"field_count"`
	ItemCount  int         `json:"item_count"`
	Fields     []fieldView `json:"fields,omitempty"`
	Items      []itemView  `json:"items,omitempty"`
}

type fieldView struct {
	FieldID string `json:"field_id"`
	Name    string `json:"name"`
	Order   int    `json:"order"`
}

// itemView is the JSON shape of an item with its values split into active
// and archived entries.
type itemView struct {
	ItemID    string            `json:"item_id"`
	ClusterID string            `json:"cluster_id"`
	CreatedAt time.Time         `json:"created_at"`
	Preview   string            `json:"preview"`
	Values    map[string]string `json:"values,omitempty"`
	Archived  map[string]string `json:"archived,omitempty"`
}

func newFieldViews(defs []*types.FieldDefinition) []fieldView {
	out := make([]fieldView, len(defs))
	for i, d := range defs {
		out[i] = fieldView{FieldID: d.FieldID, Name: d.FieldName, Order: d.Order}
	}
	return out
}

func newSummaryView(s clusters.ClusterSummary) clusterView {
	return clusterView{
		ClusterID:  s.Cluster.ClusterID,
		Name:       s.Cluster.Name,
		CreatedAt:  s.Cluster.CreatedAt,
		FieldCount: s.FieldCount,
		ItemCount:  s.ItemCount,
	}
}

// newItemView projects item against the cluster's current fields. With
// detail unset only the preview is filled in.
func newItemView(item *types.Item, defs []*types.FieldDefinition, detail bool) itemView {
	v := itemView{
		ItemID:    item.ItemID,
		ClusterID: item.ClusterID,
		CreatedAt: item.CreatedAt,
		Preview:   item.Preview(defs),
	}
	if !detail {
		return v
	}
	v.Values = map[string]string{}
	for _, fv := range item.ActiveFields(defs) {
		v.Values[fv.Name] = fv.Value
	}
	if archived := item.ArchivedFields(defs); len(archived) > 0 {
		v.Archived = map[string]string{}
		for _, fv := range archived {
			v.Archived[fv.Name] = fv.Value
		}
	}
	return v
}

// renderSummaries prints the cluster list as a table.
func renderSummaries(w io.Writer, sums []clusters.ClusterSummary) {
	st := newStyles(w)
	if len(sums) == 0 {
		fmt.Fprintln(w, st.muted.Render("No clusters yet. Create one with: clusters cluster create <name> --field <field>"))
		return
	}
	rows := make([][]string, len(sums))
	for i, s := range sums {
		rows[i] = []string{
			s.Cluster.Name,
			fmt.Sprint(s.FieldCount),
			fmt.Sprint(s.ItemCount),
			relTime(s.Cluster.CreatedAt),
			s.Cluster.ClusterID,
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("NAME", "FIELDS", "ITEMS", "CREATED", "ID").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

// renderCluster prints one cluster with its fields and item previews.
func renderCluster(w io.Writer, c *types.Cluster, defs []*types.FieldDefinition, items []*types.Item) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render(c.Name))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("ID:     "), c.ClusterID)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Created:"), relTime(c.CreatedAt))

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.label.Render(fmt.Sprintf("Fields (%d)", len(defs))))
	for _, d := range defs {
		fmt.Fprintf(w, "  %d. %s\n", d.Order+1, d.FieldName)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.label.Render(fmt.Sprintf("Items (%d)", len(items))))
	for _, it := range items {
		fmt.Fprintf(w, "  %s  %s\n", it.Preview(defs), st.muted.Render(it.ItemID))
	}
}

// renderItem prints an item's active values in field order, then any
// archived values.
func renderItem(w io.Writer, item *types.Item, defs []*types.FieldDefinition) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render(item.Preview(defs)))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("ID:     "), item.ItemID)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Created:"), relTime(item.CreatedAt))
	fmt.Fprintln(w)
	for _, fv := range item.ActiveFields(defs) {
		value := fv.Value
		if value == "" {
			value = st.muted.Render("(empty)")
		}
		fmt.Fprintf(w, "%s %s\n", st.label.Render(fv.Name+":"), value)
	}

	archived := item.ArchivedFields(defs)
	if len(archived) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.archived.Render("Archived"))
	for _, fv := range archived {
		fmt.Fprintf(w, "%s %s\n", st.muted.Render(fv.Name+":"), fv.Value)
	}
}
