package session

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ginjaninja78/transfer-pricing/internal/csvcodec"
	"github.com/ginjaninja78/transfer-pricing/internal/ledger"
	"github.com/ginjaninja78/transfer-pricing/internal/pivot"
)

// Command names accepted by the shell.
const (
	CmdAdd      = "add"
	CmdList     = "list"
	CmdCrosstab = "crosstab"
	CmdImport   = "import"
	CmdExport   = "export"
	CmdWorkbook = "workbook"
	CmdSuggest  = "suggest"
	CmdHelp     = "help"
	CmdQuit     = "quit"
)

const usage = `commands:
  add <provider> <service> <price> <receiver> <quantity> [date]
  list
  crosstab [quantity|amount]
  import <file.csv|file.xlsx>
  export
  workbook
  suggest <provider|service|receiver> [text]
  help
  quit
values containing spaces must be quoted: add "IT แผนก" "บริการ IT Support" 1500 "สาขา A" 2
`

var errQuit = errors.New("quit")

// Shell is a line-oriented host for a Session. Each input line is one
// command; every command runs to completion before the next line is read.
type Shell struct {
	sess *Session
	out  io.Writer
}

// NewShell creates a shell writing its output to out.
func NewShell(sess *Session, out io.Writer) *Shell {
	return &Shell{sess: sess, out: out}
}

// Run reads commands from in until EOF, "quit" or context cancellation.
// Cancellation is a normal stop and returns nil, even while a read is
// pending. Command failures are reported to the output and do not stop the
// shell.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprint(sh.out, "> ")
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(sh.out)
			return nil
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(sh.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			err := sh.Execute(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(sh.out, Describe(err))
			}
			fmt.Fprint(sh.out, "> ")
		}
	}
}

// Execute runs a single command line.
func (sh *Shell) Execute(line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return fmt.Errorf("cannot read command: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	name, args := strings.ToLower(args[0]), args[1:]
	switch name {
	case CmdAdd:
		return sh.add(args)
	case CmdList:
		RenderRecords(sh.out, sh.sess.Store().Columns(), sh.sess.ListRecords())
		return nil
	case CmdCrosstab:
		measure := ""
		if len(args) > 0 {
			measure = args[0]
		}
		m, err := pivot.ParseMeasure(measure)
		if err != nil {
			return err
		}
		RenderCrosstab(sh.out, sh.sess.ShowCrosstab(m))
		return nil
	case CmdImport:
		return sh.importFile(args)
	case CmdExport:
		path, err := sh.sess.Export()
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "exported %d record(s) to %s\n", sh.sess.Store().Len(), path)
		return nil
	case CmdWorkbook:
		path, err := sh.sess.ExportWorkbook()
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "workbook written to %s\n", path)
		return nil
	case CmdSuggest:
		return sh.suggest(args)
	case CmdHelp:
		fmt.Fprint(sh.out, usage)
		return nil
	case CmdQuit, "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command '%s' (type help)", name)
	}
}

func (sh *Shell) add(args []string) error {
	if len(args) < 5 || len(args) > 6 {
		return fmt.Errorf("usage: add <provider> <service> <price> <receiver> <quantity> [date]")
	}
	form := Form{
		ProviderDept: args[0],
		ServiceName:  args[1],
		UnitPrice:    args[2],
		ReceiverDept: args[3],
		Quantity:     args[4],
	}
	if len(args) == 6 {
		form.Date = args[5]
	}

	rec, err := sh.sess.AddRecord(form)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "added: %s total %s (%d record(s))\n",
		strings.Join(rec.Values([]string{"date", "providerDept", "serviceName", "receiverDept"}), " | "),
		rec.TotalAmount.StringFixed(2), sh.sess.Store().Len())
	return nil
}

func (sh *Shell) importFile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: import <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	n, err := sh.sess.Import(f, filepath.Base(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "imported %d record(s)\n", n)
	return nil
}

func (sh *Shell) suggest(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: suggest <provider|service|receiver> [text]")
	}
	text := strings.Join(args[1:], " ")
	choices, err := sh.sess.Suggest(args[0], text)
	if err != nil {
		return err
	}
	if len(choices) == 0 {
		fmt.Fprintln(sh.out, "no suggestions")
		return nil
	}
	for _, c := range choices {
		fmt.Fprintln(sh.out, c)
	}
	return nil
}

// splitArgs splits a command line on spaces; double-quoted values may
// contain spaces, and "" is an empty argument.
func splitArgs(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	r := csv.NewReader(strings.NewReader(collapseSpaces(line)))
	r.Comma = ' '
	return r.Read()
}

// collapseSpaces turns every run of spaces outside double quotes into a
// single separator.
func collapseSpaces(line string) string {
	var b strings.Builder
	inQuotes := false
	prevSpace := false
	for _, c := range line {
		if c == '"' {
			inQuotes = !inQuotes
		}
		if c == ' ' && !inQuotes {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(c)
	}
	return b.String()
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// Describe turns a command error into the message shown to the user.
func Describe(err error) string {
	var (
		vErr *ledger.ValidationError
		sErr *ledger.SchemaError
		pErr *csvcodec.ParseError
	)
	switch {
	case errors.As(err, &vErr):
		return "warning: please complete the form: " + vErr.Error()
	case errors.As(err, &sErr):
		if len(sErr.Missing) > 0 {
			return "error: invalid file header: missing " + strings.Join(sErr.Missing, ", ")
		}
		return "error: import rejected: " + sErr.Error()
	case errors.As(err, &pErr):
		return "error: " + pErr.Error()
	default:
		return "error: " + err.Error()
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderRecords prints the record list as an aligned table.
func RenderRecords(w io.Writer, columns []string, records []ledger.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no records yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, rec := range records {
		fmt.Fprintln(tw, strings.Join(rec.Values(columns), "\t"))
	}
	tw.Flush()
}

// RenderCrosstab prints the crosstab with row and column totals.
func RenderCrosstab(w io.Writer, ct *pivot.Crosstab) {
	if ct.IsEmpty() {
		fmt.Fprintln(w, "no data to display")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := append([]string{"providerDept", "serviceName", "unitPrice"}, ct.Columns...)
	fmt.Fprintln(tw, strings.Join(append(header, "total"), "\t")+"\t")

	rowTotals := ct.RowTotals()
	for i, key := range ct.Rows {
		cells := []string{key.ProviderDept, key.ServiceName, key.UnitPrice.String()}
		for _, v := range ct.Cells[i] {
			cells = append(cells, v.String())
		}
		cells = append(cells, rowTotals[i].String())
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}

	footer := []string{"total", "", ""}
	for _, v := range ct.ColumnTotals() {
		footer = append(footer, v.String())
	}
	footer = append(footer, ct.GrandTotal().String())
	fmt.Fprintln(tw, strings.Join(footer, "\t")+"\t")
	tw.Flush()
}
