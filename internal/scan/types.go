package scan

import (
	"os"
	"time"
)

// Mode selects the metric computed for each entry.
type Mode int

const (
	// ModeDiskUsage measures entries in whole kilobytes of storage.
	ModeDiskUsage Mode = iota
	// ModeInodes counts filesystem entries, one per file, directory or symlink.
	ModeInodes
)

func (m Mode) String() string {
	if m == ModeInodes {
		return "inodes"
	}

	return "disk-usage"
}

// Basis reports which byte size backed the kilobyte metric.
type Basis string

const (
	// BasisAllocated means sizes reflect blocks actually allocated on storage.
	BasisAllocated Basis = "allocated"
	// BasisApparent means sizes reflect the logical file length.
	BasisApparent Basis = "apparent"
)

// Kind represents the type of a filesystem entry.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// Indicator returns the suffix appended to names in reports:
// "/" for directories, "@" for symlinks, nothing otherwise.
func (k Kind) Indicator() string {
	switch k {
	case KindDir:
		return "/"
	case KindSymlink:
		return "@"
	default:
		return ""
	}
}

// KindFromMode derives the Kind from an os.FileMode.
func KindFromMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Entry is one immediate child of the scanned root. Kind is fixed at scan
// time and Metric is never negative.
type Entry struct {
	// Name is the base name of the child.
	Name string `json:"name"`
	// Kind is the entry type as seen by lstat.
	Kind Kind `json:"kind"`
	// Metric is the aggregate in kilobytes or inodes, depending on Mode.
	Metric int64 `json:"metric"`
}

// Warning records a recoverable failure below the root. The affected subtree
// contributes zero instead of aborting the scan.
type Warning struct {
	// Path is where the failure occurred.
	Path string `json:"path"`
	// Err is the underlying error.
	Err error `json:"err"`
}

// Result holds the aggregate of one scan. Total always equals the sum of the
// entry metrics; the root's own metadata is not counted.
type Result struct {
	// Root is the cleaned path that was scanned.
	Root string `json:"root"`
	// Mode is the metric mode the scan ran with.
	Mode Mode `json:"mode"`
	// Basis tells callers which byte size backed kilobyte metrics.
	Basis Basis `json:"basis"`
	// Entries lists the immediate children in name order.
	Entries []Entry `json:"entries"`
	// Total is the grand total metric.
	Total int64 `json:"total"`
	// Warnings lists recoverable failures encountered during the walk.
	Warnings []Warning `json:"warnings,omitempty"`
	// Elapsed is the wall time of the scan.
	Elapsed time.Duration `json:"elapsed"`
}
