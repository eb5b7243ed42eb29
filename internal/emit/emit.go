// Package emit serializes a typed module graph to the on-disk artifacts a
// consuming build erases types against: a JSON descriptor dump and a
// type-free JS re-export shim. Spec.md treats the concrete formats as an
// external collaborator's concern ("exact schema is frozen per release");
// this package ships one straightforward, internally consistent
// implementation rather than leaving the CLI with nothing to emit.
package emit

import (
	"os"
	"path/filepath"

	"github.com/plank-ts/plank/domain"
)

// ToFile writes both the JSON descriptor dump and the JS shim for tg/arena
// into dir, named "<stem>.arr.json" and "<stem>.arr.js". dir must already
// exist.
func ToFile(dir, stem string, tg *domain.TypedModuleGraph, arena *domain.TypeArena) error {
	jsonPath := filepath.Join(dir, stem+".arr.json")
	jf, err := os.Create(jsonPath)
	if err != nil {
		return domain.NewEmitError("emit", tg.Root, "creating %s: %v", jsonPath, err)
	}
	defer jf.Close()
	if err := JSON(jf, tg, arena); err != nil {
		return err
	}

	shimPath := filepath.Join(dir, stem+".arr.js")
	sf, err := os.Create(shimPath)
	if err != nil {
		return domain.NewEmitError("emit", tg.Root, "creating %s: %v", shimPath, err)
	}
	defer sf.Close()
	return JSShim(sf, tg.Root, stem, tg)
}
