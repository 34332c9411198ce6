package machine_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/ember/internal/filetest"
	"github.com/mna/ember/lang/machine"
	"github.com/stretchr/testify/require"
)

var updateGoldenTests = flag.Bool("test.update-golden-tests", false, "If set, rewrites the golden .want files under testdata/golden with the actual output.")

// TestGoldenPrograms runs every testdata/golden/*.ember program to
// completion and diffs its stdout against the matching .want fixture,
// the concrete home for end-to-end scenario coverage.
func TestGoldenPrograms(t *testing.T) {
	const dir = "testdata/golden"
	for _, fi := range filetest.SourceFiles(t, dir, ".ember") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			th := machine.New()
			var out bytes.Buffer
			th.Stdout = &out
			require.NoError(t, th.Interpret(source))

			filetest.DiffOutput(t, fi, out.String(), dir, updateGoldenTests)
		})
	}
}
