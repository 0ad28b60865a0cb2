// Package secretcode issues the single-use codes users share to authorize a
// duty swap.
package secretcode

import (
	"strings"

	"github.com/google/uuid"
)

// Prefix starts every code so it is recognizable when pasted.
const Prefix = "code-"

const randomLen = 8

// New returns a fresh code: Prefix followed by eight hex characters taken from
// a random (version 4) UUID. Uniqueness is probabilistic; callers that need a
// code unused by anyone else should use NewUnique.
func New() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Prefix + raw[:randomLen]
}

// NewUnique draws codes from gen until inUse reports false. A nil gen means
// New.
func NewUnique(gen func() string, inUse func(code string) bool) string {
	if gen == nil {
		gen = New
	}
	for {
		code := gen()
		if !inUse(code) {
			return code
		}
	}
}
