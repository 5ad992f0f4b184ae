// package stats tracks syscall latencies
package stats

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/rodaine/table"
)

type Op struct {
	count uint32
	nanos uint64
}

func (op *Op) Record(start time.Time) {
	op.count = op.count + 1
	dur := time.Since(start)
	op.nanos = op.nanos + uint64(dur.Nanoseconds())
}

func (op Op) MicrosPerOp() float64 {
	if op.count == 0 {
		return 0
	}
	return float64(op.nanos) / float64(op.count) / 1e3
}

func WriteTable(names []string, ops []Op, w io.Writer) {
	if len(names) != len(ops) {
		panic("mismatched names and ops lists")
	}
	tbl := table.New("op", "count", "us")
	var totalOp Op
	for i := range ops {
		totalOp.count += ops[i].count
		totalOp.nanos += ops[i].nanos
	}
	for i, name := range names {
		micros := fmt.Sprintf("%0.1f us/op", ops[i].MicrosPerOp())
		tbl.AddRow(name, ops[i].count, micros)
	}
	totalMicros := float64(totalOp.nanos) / 1e3
	tbl.AddRow("total", totalOp.count, fmt.Sprintf("%0.1f us", totalMicros))
	tbl.WithWriter(w).Print()
}

func FormatTable(names []string, ops []Op) string {
	buf := new(bytes.Buffer)
	WriteTable(names, ops, buf)
	return buf.String()
}
