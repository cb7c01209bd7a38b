package interp

import (
	"bufio"
	"io"
)

// Marker prefixes interpreted lines in text output.
const Marker = "    ;> "

// Render writes original lines verbatim and interpreted lines indented
// behind Marker, one per output line.
func Render(w io.Writer, lines []AnnotatedLine) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if l.Kind == Interpreted {
			bw.WriteString(Marker)
		}
		bw.WriteString(l.Text)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
