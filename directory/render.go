package directory

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Render writes persons as an aligned ID/NAME/NUMBER table.
func Render(w io.Writer, persons []Person) error {
	if len(persons) == 0 {
		_, err := fmt.Fprintln(w, "no persons")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint: mnd // padding
	fmt.Fprintln(tw, "ID\tNAME\tNUMBER")
	for _, p := range persons {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Number)
	}
	return tw.Flush()
}
