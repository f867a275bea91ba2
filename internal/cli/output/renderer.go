// Package output renders CLI results as tables, markdown, JSON or YAML.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/fbdialect/pkg/core"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeTable    Mode = "table"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
	ModeMarkdown Mode = "markdown"
)

// Renderer writes command output in one mode.
type Renderer struct {
	out  io.Writer
	err  io.Writer
	mode Mode
}

// NewRenderer creates a renderer. ModeAuto resolves to a table on a
// terminal and to markdown otherwise.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == ModeAuto || mode == "" {
		mode = ModeMarkdown
		if isTerminal(out) {
			mode = ModeTable
		}
	}
	return &Renderer{out: out, err: errOut, mode: mode}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Mode returns the resolved output mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Structured reports whether the mode is machine readable.
func (r *Renderer) Structured() bool {
	return r.mode == ModeJSON || r.mode == ModeYAML
}

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Warn writes a warning to the error stream.
func (r *Renderer) Warn(format string, a ...any) {
	_, _ = fmt.Fprintf(r.err, "Warning: "+format+"\n", a...)
}

// Value encodes v as JSON or YAML. Other modes print it with %v.
func (r *Renderer) Value(v any) error {
	switch r.mode {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		r.Printf("%v\n", v)
		return nil
	}
}

// Table renders headers and rows as a table or markdown. Structured modes
// encode the rows as a list of objects keyed by header.
func (r *Renderer) Table(headers []string, rows [][]any) error {
	if r.Structured() {
		records := make([]map[string]any, len(rows))
		for i, row := range rows {
			rec := make(map[string]any, len(headers))
			for j, h := range headers {
				if j < len(row) {
					rec[h] = plain(row[j])
				}
			}
			records[i] = rec
		}
		return r.Value(records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		t.AppendRow(cells)
	}

	if r.mode == ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	return nil
}

// ResultSet renders a query result.
func (r *Renderer) ResultSet(rs *core.ResultSet) error {
	headers := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		headers[i] = c.Name
	}
	if len(headers) == 0 && len(rs.Rows) > 0 {
		for k := range rs.Rows[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}

	rows := make([][]any, len(rs.Rows))
	for i, row := range rs.Rows {
		rows[i] = make([]any, len(headers))
		for j, h := range headers {
			rows[i][j] = row[h]
		}
	}
	if err := r.Table(headers, rows); err != nil {
		return err
	}
	if !r.Structured() {
		r.Printf("(%d rows)\n", len(rows))
	}
	return nil
}

// FormatValue renders a cell for table and markdown output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("\\x%x", x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// plain converts values without a natural JSON/YAML form.
func plain(v any) any {
	switch x := v.(type) {
	case []byte:
		return FormatValue(x)
	case decimal.Decimal:
		return x.String()
	default:
		return v
	}
}

type rendererKey struct{}

// WithRenderer stores r in ctx.
func WithRenderer(ctx context.Context, r *Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// FromContext retrieves the renderer stored by WithRenderer. Without one it
// returns an auto-mode renderer on the standard streams.
func FromContext(ctx context.Context) *Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*Renderer); ok {
		return r
	}
	return NewRenderer(os.Stdout, os.Stderr, ModeAuto)
}
