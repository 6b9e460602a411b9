// Package cleanup backs the shmrpc-cleanup CLI: it scans /dev/shm for
// objects matching a name prefix and either reports or unlinks them.
//
// Discovered names are staged in a FIFO before the unlink pass runs, the
// same "enqueue work, drain from one place" shape as the teacher's
// concurrency.Executor task queue, repurposed here from one task per
// queued item to one candidate object name per queued item.
package cleanup

import (
	"io"

	"github.com/eapache/queue"
	"github.com/olekukonko/tablewriter"

	"github.com/nunoatgithub/shm-rpc-bridge/internal/ipc"
)

// Scan lists every stale object under /dev/shm whose name starts with
// prefix.
func Scan(prefix string) ([]ipc.StaleObject, error) {
	return ipc.Scan(prefix)
}

// Failure records one object that could not be unlinked.
type Failure struct {
	Name string
	Kind ipc.ObjectKind
	Err  error
}

// Report summarizes an unlink pass.
type Report struct {
	Unlinked int
	Failures []Failure
}

// Unlink scans for objects matching prefix, stages them in a FIFO, and
// unlinks each in turn, continuing past individual failures so one
// missing object never aborts the rest of the pass.
func Unlink(prefix string) (Report, error) {
	objs, err := ipc.Scan(prefix)
	if err != nil {
		return Report{}, err
	}

	q := queue.New()
	for _, obj := range objs {
		q.Add(obj)
	}

	var report Report
	for q.Length() > 0 {
		obj, ok := q.Remove().(ipc.StaleObject)
		if !ok {
			continue
		}
		if err := ipc.Unlink(obj); err != nil {
			report.Failures = append(report.Failures, Failure{Name: obj.Name, Kind: obj.Kind, Err: err})
			continue
		}
		report.Unlinked++
	}
	return report, nil
}

// PrintTable renders the scanned objects in the teacher's borderless
// table style (internal/cli/output.PrintTable).
func PrintTable(w io.Writer, objs []ipc.StaleObject) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"kind", "name", "path"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, obj := range objs {
		table.Append([]string{string(obj.Kind), obj.Name, obj.Path})
	}
	table.Render()
	return nil
}
