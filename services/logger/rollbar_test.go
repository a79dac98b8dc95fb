package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

func TestRollbarLogger(t *testing.T) {
	conf := &core.Config{Env: "TEST", Build: "test"}

	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), conf)
	logger.Enable(false) // keep everything local; no token is set

	tests := []struct {
		name string
		log  func(msg string, args ...interface{})
		msg  string
		args []interface{}
	}{
		{name: "debug", log: logger.Debug, msg: "checking schema"},
		{name: "info with user", log: logger.Info, msg: "user signed up", args: []interface{}{user.User{ID: "1", Username: "johndoe"}}},
		{name: "warn with fields", log: logger.Warn, msg: "slow query", args: []interface{}{map[string]interface{}{"ms": 150}}},
		{name: "error", log: logger.Error, msg: "insert failed", args: []interface{}{errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log(tt.msg, tt.args...)
			out := buf.String()
			if !strings.Contains(out, tt.msg) {
				t.Errorf("output %q does not contain %q", out, tt.msg)
			}
			for _, arg := range tt.args {
				if usr, ok := arg.(user.User); ok {
					if !strings.Contains(out, usr.Username) {
						t.Errorf("output %q does not echo user %q", out, usr.Username)
					}
					continue
				}
				if err, ok := arg.(error); ok && !strings.Contains(out, err.Error()) {
					t.Errorf("output %q does not echo error %q", out, err)
				}
			}
		})
	}
}
