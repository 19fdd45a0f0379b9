package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render prints rows as an aligned table using the visible columns, followed
// by a page footer.
func Render(w io.Writer, cols Columns, rows []Row, page, pageSize, total int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	visible := cols.Visible()

	titles := make([]string, len(visible))
	for i, c := range visible {
		titles[i] = c.Title
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, r := range rows {
		line := strings.Join(visible.Render(r.User), "\t")
		if r.State != Viewing {
			line += "\t(" + r.State.String() + ")"
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	_, err := fmt.Fprintf(w, "page %d/%d, %d users\n", page+1, pages, total)
	return err
}
