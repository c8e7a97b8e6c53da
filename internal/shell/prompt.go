package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// prompt reads one line. Returns false when input is exhausted.
// An empty answer takes the default.
func (s *Shell) prompt(label, def string) (string, bool) {
	if def != "" {
		fmt.Fprintf(s.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(s.out, "%s: ", label)
	}
	if !s.in.Scan() {
		return "", false
	}
	answer := strings.TrimSpace(s.in.Text())
	if answer == "" {
		return def, true
	}
	return answer, true
}

// isCancel reports whether the operator asked to back out of the current step.
func isCancel(answer string) bool {
	switch strings.ToLower(answer) {
	case "b", "back", "cancel":
		return true
	}
	return false
}

// selectFromList shows a numbered list and resolves the operator's answer to an
// index. A number picks directly; anything else is a case-insensitive substring
// search over searchNames. One match selects it, several matches open a
// sub-prompt over just those, zero matches re-asks. Returns false on cancel.
func (s *Shell) selectFromList(display, searchNames []string, label string) (int, bool) {
	for i, name := range display {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, name)
	}

	for {
		answer, ok := s.prompt(label, "")
		if !ok || isCancel(answer) || answer == "" {
			return 0, false
		}

		if n, err := strconv.Atoi(answer); err == nil {
			if n >= 1 && n <= len(display) {
				return n - 1, true
			}
			fmt.Fprintf(s.out, "Enter a number between 1 and %d.\n", len(display))
			continue
		}

		q := strings.ToLower(answer)
		var matches []int
		for i, name := range searchNames {
			if strings.Contains(strings.ToLower(name), q) {
				matches = append(matches, i)
			}
		}
		switch len(matches) {
		case 0:
			fmt.Fprintf(s.out, "No match for %q.\n", answer)
		case 1:
			return matches[0], true
		default:
			fmt.Fprintf(s.out, "%d matches for %q:\n", len(matches), answer)
			for i, idx := range matches {
				fmt.Fprintf(s.out, "  %d. %s\n", i+1, display[idx])
			}
			pick, ok := s.prompt("Select match", "")
			if !ok || isCancel(pick) {
				return 0, false
			}
			n, err := strconv.Atoi(pick)
			if err != nil || n < 1 || n > len(matches) {
				fmt.Fprintln(s.out, "Invalid selection.")
				continue
			}
			return matches[n-1], true
		}
	}
}
