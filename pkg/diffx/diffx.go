// Package diffx wraps the diff-match-patch algorithm behind the small
// surface the note engine needs: computing a lossless diff between two
// texts, encoding a transportable patch, and applying a patch against a
// base text with an explicit success signal.
//
// Patch application tolerates minor context drift (fuzzy matching) and
// reports failure instead of corrupting the base text. That failure is
// the only conflict signal in the update protocol.
package diffx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op mirrors the three diff operations.
type Op int8

const (
	OpDelete Op = -1
	OpEqual  Op = 0
	OpInsert Op = 1
)

// Change is a single diff operation. A full []Change covers both input
// texts entirely, so either side can be rebuilt from it.
type Change struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

var dmp = diffmatchpatch.New()

// Diff computes the operation list turning oldText into newText.
func Diff(oldText, newText string) []Change {
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		changes = append(changes, Change{Op: Op(d.Type), Text: d.Text})
	}

	return changes
}

// OldText rebuilds the pre-change text from a diff.
func OldText(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		if c.Op != OpInsert {
			sb.WriteString(c.Text)
		}
	}

	return sb.String()
}

// NewText rebuilds the post-change text from a diff.
func NewText(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		if c.Op != OpDelete {
			sb.WriteString(c.Text)
		}
	}

	return sb.String()
}

// MakePatch encodes the difference between oldText and newText in the
// standard patch-text format. The encoding carries surrounding context,
// not the full texts, so it stays appliable under small drift.
func MakePatch(oldText, newText string) string {
	patches := dmp.PatchMake(oldText, newText)

	return dmp.PatchToText(patches)
}

// ApplyPatch applies an encoded patch to baseText. It returns the
// patched text and true only when every hunk applied. A malformed patch
// or a base that drifted beyond the matcher's tolerance yields ok=false
// and the base text unchanged.
func ApplyPatch(patchText, baseText string) (string, bool) {
	patches, err := dmp.PatchFromText(patchText)
	if err != nil {
		return baseText, false
	}

	result, applied := dmp.PatchApply(patches, baseText)
	for _, ok := range applied {
		if !ok {
			return baseText, false
		}
	}

	return result, true
}

// MarshalChanges serializes a diff for storage.
func MarshalChanges(changes []Change) ([]byte, error) {
	b, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("marshal changes: %w", err)
	}

	return b, nil
}

// UnmarshalChanges restores a stored diff.
func UnmarshalChanges(b []byte) ([]Change, error) {
	var changes []Change
	if err := json.Unmarshal(b, &changes); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}

	return changes, nil
}
