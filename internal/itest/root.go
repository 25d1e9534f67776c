//go:build integration

package itest

import (
	"os/exec"
	"testing"
)

// requireBinaries skips the test when the external toolkit is absent, so
// the integration suite degrades gracefully on minimal CI images.
func requireBinaries(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not installed: %v", name, err)
		}
	}
}
