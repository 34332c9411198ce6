package maincmd

import (
	"context"
	"os"

	"github.com/mna/ember/internal/config"
	"github.com/mna/ember/lang/machine"
	"github.com/mna/mainer"
)

// Run compiles and interprets the given source file, the primary entry
// point of the language.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(stdio, args...)
}

func RunFiles(stdio mainer.Stdio, files ...string) error {
	cfg, err := config.Load()
	if err != nil {
		return printError(stdio, err)
	}

	th := machine.NewSized(cfg.FrameMax, cfg.StackSlots)
	th.Stdout = stdio.Stdout
	th.Stderr = stdio.Stderr
	th.Stdin = stdio.Stdin
	th.GCStress = cfg.GCStress
	th.HeapGrowFactor = cfg.GCHeapGrowFactor

	var lastErr error
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			lastErr = wrapIOError(err)
			printError(stdio, lastErr)
			continue
		}
		if err := th.Interpret(source); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
