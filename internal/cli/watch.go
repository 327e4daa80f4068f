package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/strata"
	loamAdapter "github.com/aretw0/strata/pkg/adapters/loam"
)

// settle lets editors finish writing before the document is reloaded.
const settle = 100 * time.Millisecond

// Watch loads the markdown document at path and reloads it every time its
// file changes, passing each result to onChange. It returns when ctx is done.
func Watch(ctx context.Context, path string, onChange func(*strata.Document, error), opts ...strata.Option) error {
	src, err := ResolveSource(path)
	if err != nil {
		return err
	}
	if !src.IsRepo() {
		return fmt.Errorf("watch needs a markdown document, got %s", path)
	}
	loader, err := loamAdapter.Open(src.Path)
	if err != nil {
		return err
	}
	events, err := loader.Watch(ctx)
	if err != nil {
		return err
	}

	reload := func() {
		doc, err := strata.Load(ctx, loader, src.ID, opts...)
		onChange(doc, err)
	}
	reload()

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			if id != src.ID {
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settle):
			}
			reload()
		}
	}
}
