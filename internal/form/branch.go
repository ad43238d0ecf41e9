package form

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// refNamePattern approximates git check-ref-format for a branch name.
var refNamePattern = regexp2.MustCompile(
	`^(?!-)(?!/)(?!\.)(?!@$)(?!.*\.\.)(?!.*@\{)(?!.*//)(?!.*/\.)[^\x00-\x20\x7f~^:?*\[\\]+(?<!/)(?<!\.)(?<!\.lock)$`,
	regexp2.None,
)

// ValidateBranchName rejects names git would refuse as a branch.
func ValidateBranchName(name string) error {
	ok, err := refNamePattern.MatchString(name)
	if err != nil {
		return fmt.Errorf("validate branch name %q: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("branch name %q is not a valid git ref", name)
	}
	return nil
}
