package console

import (
	"fmt"
	"io"
	"os"
)

const PictoGauge = "🧭"
const PictoCheck = "✅"
const PictoWait = "⏳"
const PictoWind = "💨"
const PictoStop = "🚫"
const PictoPlug = "🔌"

var writer io.Writer = os.Stdout
var errWriter io.Writer = os.Stderr

// Trace enables Debugf output. It follows the global verbose flag.
var Trace bool

func Errorf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Red("ERROR"), fmt.Sprintf(msg, args...))
}

func Warnf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Yellow("WARN"), fmt.Sprintf(msg, args...))
}

func Infof(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", White("..."), fmt.Sprintf(msg, args...))
}

func Debugf(msg string, args ...interface{}) {
	if Trace {
		_, _ = fmt.Fprintf(writer, "%s %s\n", White("[DEBUG]"), fmt.Sprintf(msg, args...))
	}
}

// PInfof prints a message prefixed with a pictogram.
func PInfof(picto, msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", picto, fmt.Sprintf(msg, args...))
}

func Print(msg string) {
	_, _ = fmt.Fprintln(writer, msg)
}
