package picker

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/term"
)

var (
	ErrCancelled   = errors.New("selection cancelled")
	ErrNotTerminal = errors.New("input is not a terminal")
)

// Choose shows items as an arrow-key list on a raw terminal and returns the
// chosen index. Esc, q and Ctrl+C cancel.
func Choose(fd int, in io.Reader, out io.Writer, title string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	if !term.IsTerminal(fd) {
		return -1, ErrNotTerminal
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return -1, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderList := func() {
		fmt.Fprint(out, "\r\x1b[J")
		fmt.Fprintf(out, "%s (↑/↓, Enter to confirm, Esc to cancel):\r\n\r\n", title)
		for i, item := range items {
			if i == cursor {
				fmt.Fprintf(out, "  \x1b[1;36m▶ %s\x1b[0m\r\n", item)
			} else {
				fmt.Fprintf(out, "    %s\r\n", item)
			}
		}
	}
	renderList()

	buf := make([]byte, 3)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return -1, fmt.Errorf("reading input: %w", err)
		}

		switch key(buf[:n]) {
		case keyEnter:
			fmt.Fprint(out, "\r\n")
			return cursor, nil
		case keyCancel:
			fmt.Fprint(out, "\r\n")
			return -1, ErrCancelled
		case keyDown:
			if cursor < len(items)-1 {
				cursor++
			}
		case keyUp:
			if cursor > 0 {
				cursor--
			}
		}

		fmt.Fprintf(out, "\x1b[%dA", len(items)+2)
		renderList()
	}
}

type keyPress int

const (
	keyOther keyPress = iota
	keyEnter
	keyCancel
	keyUp
	keyDown
)

func key(b []byte) keyPress {
	if len(b) == 1 {
		switch b[0] {
		case 13:
			return keyEnter
		case 3, 27, 'q':
			return keyCancel
		case 'j':
			return keyDown
		case 'k':
			return keyUp
		}
		return keyOther
	}
	if len(b) == 3 && b[0] == 0x1b && b[1] == '[' {
		switch b[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		}
	}
	return keyOther
}
