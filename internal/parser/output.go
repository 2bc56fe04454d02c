package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteResult writes the total energy on the first line and the removal
// order as space-separated positions on the second, with no trailing
// separator. An empty order yields an empty second line.
func WriteResult(w io.Writer, energy uint64, order []int) error {
	bw := bufio.NewWriter(w)

	buf := make([]byte, 0, 24+len(order)*6)
	buf = strconv.AppendUint(buf, energy, 10)
	buf = append(buf, '\n')
	buf = AppendOrder(buf, order)
	buf = append(buf, '\n')

	if _, err := bw.Write(buf); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

// AppendOrder appends the space-separated order to buf.
func AppendOrder(buf []byte, order []int) []byte {
	for i, k := range order {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(k), 10)
	}
	return buf
}

// FormatOrder renders the order as it appears on the second output line.
func FormatOrder(order []int) string {
	return string(AppendOrder(nil, order))
}
