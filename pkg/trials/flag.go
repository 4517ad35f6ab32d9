package trials

import (
	"fmt"
	"strings"
)

// flag is a correctness cell. It accepts true/false, 1/0 and yes/no in any case.
type flag struct {
	value bool
	set   bool
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *flag) UnmarshalText(text []byte) error {
	v, err := parseFlag(string(text))
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "1.0":
		return true, nil
	case "false", "0", "no", "0.0":
		return false, nil
	case "":
		return false, fmt.Errorf("missing correctness value")
	default:
		return false, fmt.Errorf("invalid correctness value %q", s)
	}
}
