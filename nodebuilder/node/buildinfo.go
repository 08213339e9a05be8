package node

import "fmt"

const emptyValue = "unknown"

// BuildInfo stores all necessary information for the current build.
type BuildInfo struct {
	LastCommit      string
	SemanticVersion string
	SystemVersion   string
	GolangVersion   string
}

// GetSemanticVersion returns the semantic version of the build prefixed with 'v'.
func (b *BuildInfo) GetSemanticVersion() string {
	if b.SemanticVersion == "" {
		return emptyValue
	}
	return fmt.Sprintf("v%s", b.SemanticVersion)
}

// CommitShortSha returns the first 7 characters of the last commit.
func (b *BuildInfo) CommitShortSha() string {
	if b.LastCommit == "" {
		return emptyValue
	}
	if len(b.LastCommit) < 7 {
		return b.LastCommit
	}
	return b.LastCommit[:7]
}
