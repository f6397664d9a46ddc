package picker

import (
	"context"
	"fmt"
)

// Auto answers pickers without asking: exports go to the first configured
// directory, imports take the newest matching file.
type Auto struct {
	Dirs      []string
	ImportDir string
}

func (a *Auto) PresentExport(ctx context.Context, artifact string) <-chan Outcome {
	if ctx.Err() != nil {
		return deliver(Cancelled())
	}
	if len(a.Dirs) == 0 {
		return deliver(Completed(artifact))
	}
	loc, err := MoveTo(artifact, a.Dirs[0])
	if err != nil {
		return deliver(Failed(err))
	}
	return deliver(Completed(loc))
}

func (a *Auto) PresentImport(ctx context.Context, kinds []string) <-chan Outcome {
	if ctx.Err() != nil {
		return deliver(Cancelled())
	}
	files, err := Candidates(a.ImportDir, kinds)
	if err != nil {
		return deliver(Failed(fmt.Errorf("listing %s: %w", a.ImportDir, err)))
	}
	if len(files) == 0 {
		return deliver(Cancelled())
	}
	return deliver(Completed(files[0]))
}
