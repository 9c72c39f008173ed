package tablesync

import (
	"fmt"
	"strings"
)

// Mode is the direction of a run.
type Mode string

const (
	// ModeBackup copies the relational database into the key-value store.
	ModeBackup Mode = "backup"
	// ModeRecovery restores the relational database from the key-value store.
	ModeRecovery Mode = "recovery"
)

// ParseMode accepts the mode names and their short aliases bup and rec.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "backup", "bup":
		return ModeBackup, nil
	case "recovery", "rec":
		return ModeRecovery, nil
	default:
		return "", fmt.Errorf("unknown mode %q: use backup (bup) or recovery (rec)", s)
	}
}

func (m Mode) String() string { return string(m) }
