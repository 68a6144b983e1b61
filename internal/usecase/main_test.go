package usecase_test

import (
	"os"
	"testing"

	"github.com/user/legaldoc-crawler/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}
