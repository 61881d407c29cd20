package version

import "testing"

func TestBuildInfoDefaults(t *testing.T) {
	for name, value := range map[string]string{
		"Version":   Version,
		"GitCommit": GitCommit,
		"BuildTime": BuildTime,
	} {
		if value == "" {
			t.Errorf("%s is empty; builds without ldflags should keep the defaults", name)
		}
	}

	if GitCommit != "unknown" && len(GitCommit) < 7 {
		t.Errorf("GitCommit %q should be 'unknown' or a git hash", GitCommit)
	}
}
