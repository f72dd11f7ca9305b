package launcher

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var faultLabel = color.New(color.FgRed, color.Bold)

// reportFault writes a launcher failure to w.
func reportFault(w io.Writer, err error) {
	faultLabel.Fprint(w, "cljloader:")
	fmt.Fprintf(w, " %v\n", err)
}
