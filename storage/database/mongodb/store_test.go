package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/storage/database/mongodb"
	testutil "github.com/trezcool/darasa/tests"
)

// TestStore runs the cross-backend suite against a live server.
// Set TEST_MONGODB_URL to enable, e.g.
// mongodb://localhost:27017/darasa_test
func TestStore(t *testing.T) {
	url := os.Getenv("TEST_MONGODB_URL")
	if url == "" {
		t.Skip("TEST_MONGODB_URL is not set")
	}

	conf := &core.Config{TestMode: true}
	conf.Database.URL = url
	conf.Database.ConnectTimeout = 20 * time.Second
	conf.Database.SocketTimeout = 20 * time.Second
	conf.Database.MaxOpenConns = 5
	conf.Database.MaxIdleConns = 2

	db, err := mongodb.Open(conf)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if err = db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() failed: %v", err)
	}

	testutil.RunStoreTests(t, db)
}
