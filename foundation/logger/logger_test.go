package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/superfeelapi/goRaphael/foundation/logger"
)

func TestNew(t *testing.T) {
	t.Run("writes to service file", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "logs")

		log, err := logger.New(dir, "raphael", "info")
		if err != nil {
			t.Fatal(err)
		}
		log.Infow("startup", "status", "ok")
		log.Debugw("hidden")
		_ = log.Sync()

		b, err := os.ReadFile(filepath.Join(dir, "raphael.log"))
		if err != nil {
			t.Fatal(err)
		}
		out := string(b)
		if !strings.Contains(out, `"msg":"startup"`) || !strings.Contains(out, `"service":"raphael"`) {
			t.Fatalf("unexpected log output: %s", out)
		}
		if strings.Contains(out, "hidden") {
			t.Fatal("debug entry written at info level")
		}
	})

	t.Run("bad level", func(t *testing.T) {
		t.Parallel()
		if _, err := logger.New(t.TempDir(), "raphael", "loud"); err == nil {
			t.Fatal("expected error")
		}
	})
}
