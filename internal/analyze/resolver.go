package analyze

import (
	"strings"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

// Resolve collapses working-tree counts and remote divergence into the one
// derived status. Local modifications always win: a tree with changed
// tracked files is dirty no matter how far upstream has moved, because
// uncommitted work is what the user has to deal with first. Untracked-only
// trees keep their remote overlay, so "untracked but behind" surfaces as
// behind.
func Resolve(changed, untracked, ahead, behind int) model.Status {
	if changed > 0 {
		return model.StatusDirty
	}

	switch {
	case ahead > 0 && behind > 0:
		return model.StatusDiverged
	case ahead > 0:
		return model.StatusAhead
	case behind > 0:
		return model.StatusBehind
	}

	if untracked > 0 {
		return model.StatusUntracked
	}
	return model.StatusClean
}

// IsMainBranch reports whether branch matches one of the configured
// main-branch names, case-insensitively.
func IsMainBranch(branch string, mainBranches []string) bool {
	for _, main := range mainBranches {
		if strings.EqualFold(branch, main) {
			return true
		}
	}
	return false
}

// DetectWarnings derives the advisory flags for a repository. The checks
// are independent of each other and of the status value; any combination
// can apply at once.
func DetectWarnings(branch string, status model.Status, isMain, hasUpstream, hasStash bool) []model.Warning {
	var warnings []model.Warning
	if isMain && status == model.StatusDirty {
		warnings = append(warnings, model.WarningDirtyMain)
	}
	if !hasUpstream {
		warnings = append(warnings, model.WarningNoRemote)
	}
	if branch == model.DetachedBranch {
		warnings = append(warnings, model.WarningDetached)
	}
	if hasStash {
		warnings = append(warnings, model.WarningHasStash)
	}
	return warnings
}
