package checkwise_test

import (
	"testing"

	checkwise "github.com/felixgeelhaar/checkwise"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	if checkwise.Version == "" {
		t.Error("Version should not be empty")
	}
	if checkwise.GetVersion() != checkwise.Version {
		t.Errorf("GetVersion() = %s, want %s", checkwise.GetVersion(), checkwise.Version)
	}
}
