package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

// contextKeys rendered elsewhere in a diagnostic.
var excludeKeys = map[string]bool{
	"file": true, "line": true, "notes": true, "helps": true,
}

// FormatError formats an error for CLI display in Cargo style.
// Coded errors anywhere in the chain are rendered with their code,
// context, notes and help; other errors are rendered on one line.
//
//	error[E2001]: No database registered for name 'x'. Registered databases: []
//	   |
//	   | database: x
//	help: did you mean 'y'?
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatCodedError(ae)
	}
	return formatGenericError(err)
}

func formatCodedError(err *alerr.Error) string {
	var b strings.Builder
	ctx := err.GetContext()

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.GetCode())))
	b.WriteString("]: ")
	b.WriteString(err.GetMessage())
	b.WriteString("\n")

	if file, _ := ctx["file"].(string); file != "" {
		loc := file
		if line, _ := ctx["line"].(int); line > 0 {
			loc = fmt.Sprintf("%s:%d", file, line)
		}
		b.WriteString("  ")
		b.WriteString(Arrow())
		b.WriteString(" ")
		b.WriteString(FilePath(loc))
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !excludeKeys[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	if len(keys) > 0 {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		for _, k := range keys {
			b.WriteString("   ")
			b.WriteString(Pipe())
			b.WriteString(" ")
			b.WriteString(formatDetail(k, ctx[k]))
			b.WriteString("\n")
		}
	}

	for _, note := range err.Notes() {
		b.WriteString(FormatNote(note))
	}
	for _, help := range err.Helps() {
		b.WriteString(FormatHelp(help))
	}

	if cause := alerr.RootCause(err); cause != nil && cause != error(err) {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		b.WriteString(Note("cause"))
		b.WriteString(": ")
		b.WriteString(cause.Error())
		b.WriteString("\n")
	}

	return b.String()
}

// formatDetail renders one context entry; multi-line SQL is indented under its key.
func formatDetail(key string, value any) string {
	var s string
	switch v := value.(type) {
	case []string:
		s = "[" + strings.Join(v, ", ") + "]"
	default:
		s = fmt.Sprint(v)
	}
	if strings.Contains(s, "\n") {
		s = strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n   "+Pipe()+"   ")
	}
	return key + ": " + s
}

func formatGenericError(err error) string {
	var b strings.Builder
	b.WriteString(Error("error"))
	b.WriteString(": ")
	b.WriteString(err.Error())
	b.WriteString("\n")
	return b.String()
}

// FormatWarning formats a warning message.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help message.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
