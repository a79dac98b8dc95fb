package inmem_test

import (
	"testing"

	"github.com/trezcool/darasa/storage/database/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func TestStore(t *testing.T) {
	testutil.RunStoreTests(t, inmem.NewStore())
}
