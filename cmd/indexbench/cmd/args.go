package cmd

import (
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// normalizeArgs rewrites single-dash long flags (-docs 5) to the double-dash
// form cobra parses. Negative numbers and single-letter flags are left alone,
// and nothing after a bare "--" is touched. The second result maps each
// rewritten flag name back to the spelling that was typed.
func normalizeArgs(args []string) ([]string, map[string]string) {
	out := make([]string, 0, len(args))
	typed := make(map[string]string)
	for i, a := range args {
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		if len(a) > 2 && a[0] == '-' && a[1] != '-' && unicode.IsLetter(rune(a[1])) {
			name, _, _ := strings.Cut(a, "=")
			typed["-"+name] = name
			a = "-" + a
		}
		out = append(out, a)
	}
	return out, typed
}

// setArgs normalizes args onto cmd. Flag errors then name the argument as
// it was typed.
func setArgs(cmd *cobra.Command, args []string) {
	normalized, typed := normalizeArgs(args)
	cmd.SetArgs(normalized)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return flagError(err, typed)
	})
}

// flagError converts pflag parse errors into the benchmark error taxonomy:
// unknown flags become UnknownArgument, bad values become invalid input.
// typed maps normalized flag names back to what the user wrote.
func flagError(err error, typed map[string]string) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unknown flag: "):
		name := strings.TrimPrefix(msg, "unknown flag: ")
		if orig, ok := typed[name]; ok {
			name = orig
		}
		return benchErrors.UnknownArgument(name)
	case strings.HasPrefix(msg, "unknown shorthand flag: "):
		arg := msg
		if i := strings.LastIndex(msg, " in "); i >= 0 {
			arg = msg[i+len(" in "):]
		}
		return benchErrors.UnknownArgument(arg)
	default:
		return benchErrors.ValidationError(msg, err)
	}
}

// noPositionalArgs rejects stray arguments with UnknownArgument.
func noPositionalArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return benchErrors.UnknownArgument(args[0])
	}
	return nil
}
