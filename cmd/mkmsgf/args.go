package main

import (
	"os"
	"strings"
)

var subcommands = map[string]bool{
	"compile":   true,
	"inspect":   true,
	"languages": true,
	"serve":     true,
	"version":   true,
	"help":      true,
	"h":         true,
}

// Option letters of the classic command line. Value letters take the
// rest of the token or the next argument.
const (
	valueLetters = "pldi"
	boolLetters  = "vaceqh?"
)

// rewriteLegacyArgs turns the classic "mkmsgf infile [outfile] /V /P 437"
// form into "mkmsgf compile -v -p 437 infile [outfile]". Argument lists
// that already name a subcommand, or start with a long flag, are
// returned unchanged.
func rewriteLegacyArgs(args []string) []string {
	if len(args) < 2 {
		return args
	}
	if first := args[1]; subcommands[first] || strings.HasPrefix(first, "--") {
		return args
	}

	var flags, positional []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		if !isLegacyOption(tok) {
			positional = append(positional, tok)
			continue
		}
		letter := strings.ToLower(tok[1:2])
		attached := tok[2:]

		switch {
		case strings.Contains(valueLetters, letter):
			value := attached
			if value == "" && i+1 < len(rest) {
				i++
				value = rest[i]
			}
			flags = append(flags, "-"+letter)
			if value != "" {
				flags = append(flags, value)
			}
		case strings.Contains(boolLetters, letter) && allBoolLetters(attached):
			for _, c := range strings.ToLower(tok[1:]) {
				if c == '?' {
					c = 'h'
				}
				flags = append(flags, "-"+string(c))
			}
		default:
			// Left for the flag parser to reject.
			flags = append(flags, tok)
		}
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, args[0], "compile")
	out = append(out, flags...)
	return append(out, positional...)
}

// isLegacyOption reports whether tok is a "-x" or "/x" option. A token
// starting with '/' is a path instead when it contains another '/',
// names an existing file, or carries a value that is not a number list.
func isLegacyOption(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	switch tok[0] {
	case '-':
		return true
	case '/':
	default:
		return false
	}
	if strings.ContainsRune(tok[1:], '/') {
		return false
	}
	if _, err := os.Stat(tok); err == nil {
		return false
	}
	letter := strings.ToLower(tok[1:2])
	attached := tok[2:]
	switch {
	case letter == "p" || letter == "l":
		return isNumberList(attached)
	case letter == "d" || letter == "i":
		return true
	default:
		return strings.Contains(boolLetters, letter) && allBoolLetters(attached)
	}
}

func allBoolLetters(s string) bool {
	for _, c := range strings.ToLower(s) {
		if !strings.ContainsRune(boolLetters, c) {
			return false
		}
	}
	return true
}

func isNumberList(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && c != ',' {
			return false
		}
	}
	return true
}
