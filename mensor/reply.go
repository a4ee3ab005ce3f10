package mensor

import (
	"fmt"
	"strconv"
	"strings"
)

// trimReply removes the padding the controller surrounds its replies with.
// The order matters: line terminators first, then the echoed 'E' marker and
// the spaces that follow it.
func trimReply(reply string) string {
	reply = strings.TrimRight(reply, "\n")
	reply = strings.TrimRight(reply, "\r")
	reply = strings.TrimLeft(reply, "E")
	return strings.TrimLeft(reply, " ")
}

func parseYesNo(reply string) (bool, error) {
	switch trimReply(reply) {
	case "YES":
		return true, nil
	case "NO":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected YES or NO, got %q", ErrProtocol, reply)
}

func parseReading(reply string) (float64, error) {
	val, err := strconv.ParseFloat(trimReply(reply), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid pressure reading %q", ErrProtocol, reply)
	}
	return val, nil
}
