package maincmd

import (
	"context"
	"os"

	"github.com/mna/ember/internal/config"
	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/machine"
	"github.com/mna/mainer"
)

// Asm assembles each file's hand-written instruction listing into a chunk
// and runs it directly, bypassing the compiler — useful for exercising VM
// behavior the surface grammar can't reach on its own.
func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return AsmFiles(stdio, args...)
}

func AsmFiles(stdio mainer.Stdio, files ...string) error {
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

		chunk, err := compiler.Assemble(string(source))
		if err != nil {
			lastErr = err
			printError(stdio, lastErr)
			continue
		}

		if err := th.RunChunk(chunk); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
