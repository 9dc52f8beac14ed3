package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetOptionalText reads a single line like GetSimpleText but treats an empty
// answer as "keep the current value". The second return value reports whether
// the user entered anything.
func GetOptionalText(reader *bufio.Reader, prompt string, w io.Writer) (string, bool, error) {
	s, err := GetSimpleText(reader, prompt+" (empty to skip)", w)
	if err != nil {
		return "", false, err
	}
	return s, s != "", nil
}

// GetPIN prints a prompt to w and reads a PIN from the user's terminal
// without echo. A newline is printed after the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPIN(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pin, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pin, nil
}

// timeLayouts lists the accepted input formats, most specific first.
var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses user-entered date/time text in local time. Date-only input
// resolves to midnight.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date/time %q, use YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
}

// GetTime prompts for a date/time and parses it. An empty answer returns a
// zero time with ok=false so the caller can treat it as skipped.
func GetTime(reader *bufio.Reader, prompt string, w io.Writer) (time.Time, bool, error) {
	s, entered, err := GetOptionalText(reader, prompt, w)
	if err != nil || !entered {
		return time.Time{}, false, err
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
