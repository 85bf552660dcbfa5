package massmail

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jtuomist/massmail/types"
)

// Preview is what the operator gets to see before anything is sent: the
// rendered sample plus the count of recipients that survived filtering.
type Preview struct {
	Subject string
	From    string
	Sample  types.RenderedMail
	Count   int
}

// Confirmer is the synchronous boundary between rendering and sending. It
// blocks until the operator answers; a false return means nothing may be
// sent. There is no timeout on the wait.
type Confirmer func(Preview) (bool, error)

// AlwaysConfirm skips the prompt. Used for --yes and in tests.
func AlwaysConfirm(Preview) (bool, error) {
	return true, nil
}

// TerminalConfirmer prints the preview to out and reads a single y/N answer
// from in. Anything but an affirmative answer, including EOF, declines.
func TerminalConfirmer(in io.Reader, out io.Writer) Confirmer {
	return func(p Preview) (bool, error) {
		fmt.Fprintln(out, "==== BEGIN MESSAGE ====")
		fmt.Fprintf(out, "Subject: %s\n", p.Subject)
		fmt.Fprintf(out, "From: %s\n", p.From)
		if p.Count > 0 {
			fmt.Fprintf(out, "To: %s\n", p.Sample.To)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, p.Sample.Body)
		fmt.Fprintln(out, "==== END MESSAGE ====")
		fmt.Fprintf(out, "Send the above message to the %d people found in the address list? [y/N] ", p.Count)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "Y", "YES":
			return true, nil
		}
		return false, nil
	}
}

// StdioConfirmer is the TerminalConfirmer on the process's own terminal.
func StdioConfirmer() Confirmer {
	return TerminalConfirmer(os.Stdin, os.Stdout)
}
