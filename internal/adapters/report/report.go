// Package report renders a daily result for the console.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/dailyboss/internal/app"
	"github.com/okian/dailyboss/internal/domain/model"
	"github.com/okian/dailyboss/internal/domain/types"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by Render for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// PausePrompt is printed before waiting for Enter.
const PausePrompt = "Press Enter to exit..."

// Build converts a result into its wire shape.
func Build(res app.DailyResult) types.Report {
	r := types.Report{
		Date:     model.FormatDate(res.Date),
		Replayed: res.Replayed,
		RunID:    res.RunID,
		Picks:    make([]types.Entry, 0, len(res.Picks)),
	}
	if res.HistorySince != nil {
		since := model.FormatDate(*res.HistorySince)
		r.HistorySince = &since
	}
	for i, p := range res.Picks {
		r.Picks = append(r.Picks, types.Entry{Rank: i + 1, Region: p.Region, Name: p.Name})
	}
	return r
}

// Supported reports whether format is a known output format.
func Supported(format string) bool {
	switch format {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// Render writes res to w in format.
func Render(w io.Writer, format string, res app.DailyResult) error {
	switch format {
	case FormatJSON:
		return JSON(w, res)
	case FormatText, "":
		return Text(w, res)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSON writes res as one indented JSON document.
func JSON(w io.Writer, res app.DailyResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(res))
}

// Text writes res as a short human-readable listing.
func Text(w io.Writer, res app.DailyResult) error {
	r := Build(res)

	var b strings.Builder
	if r.Replayed {
		fmt.Fprintf(&b, "Bosses for %s (already drawn today):\n", r.Date)
	} else {
		fmt.Fprintf(&b, "Bosses for %s:\n", r.Date)
	}
	if len(r.Picks) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, e := range r.Picks {
		region := e.Region
		if region == "" {
			region = "?"
		}
		fmt.Fprintf(&b, "  %d. [%s] %s\n", e.Rank, region, e.Name)
	}
	if r.HistorySince != nil {
		fmt.Fprintf(&b, "History since %s\n", *r.HistorySince)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Pause prints PausePrompt to w and blocks until a line or EOF is read from r.
func Pause(r io.Reader, w io.Writer) {
	_, _ = fmt.Fprintln(w, PausePrompt)
	_, _ = bufio.NewReader(r).ReadString('\n')
}
