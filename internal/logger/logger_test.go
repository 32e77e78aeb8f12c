package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(nil)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestVerboseLines(t *testing.T) {
	buf := capture(t, true)

	Section("Ingestion")
	Debug("embedding %d chunks", 3)
	Info("ingested %d/%d chunks into %s", 2, 3, "merkuze-hospital-d384")
	Warn("chunk %s failed", "dept-1")

	assert.Equal(t,
		"\n=== Ingestion ===\n"+
			"[DEBUG] embedding 3 chunks\n"+
			"[INFO] ingested 2/3 chunks into merkuze-hospital-d384\n"+
			"[WARN] chunk dept-1 failed\n",
		buf.String())
}

func TestQuietDropsAllButErrors(t *testing.T) {
	buf := capture(t, false)

	Section("Answer")
	Debug("retrieved")
	Info("listening")
	Warn("slow embedder")
	Error("listing documents: %v", "disk full")

	assert.Equal(t, "[ERROR] listing documents: disk full\n", buf.String())
}

func TestScoped(t *testing.T) {
	buf := capture(t, true)
	log := For("req-42")

	log.Debug("%s", "embedding")
	log.Warn("answer too short (%d runes), using fallback", 2)

	assert.Equal(t, "req-42", log.Tag())
	assert.Equal(t,
		"[DEBUG] [req-42] embedding\n"+
			"[WARN] [req-42] answer too short (2 runes), using fallback\n",
		buf.String())
}

func TestScoped_ErrorWhenQuiet(t *testing.T) {
	buf := capture(t, false)

	For("req-7").Info("ignored")
	For("req-7").Error("generation failed")

	assert.Equal(t, "[ERROR] [req-7] generation failed\n", buf.String())
}

func TestSetOutput_NilRestoresStderr(t *testing.T) {
	SetOutput(nil)
	defer SetOutput(nil)

	mu.RLock()
	defer mu.RUnlock()
	assert.NotNil(t, output)
}

func TestConcurrentRequests(t *testing.T) {
	buf := capture(t, true)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			For(id).Debug("searching")
		}(id)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	for _, line := range lines {
		assert.Regexp(t, `^\[DEBUG\] \[[a-d]\] searching$`, line)
	}
}
