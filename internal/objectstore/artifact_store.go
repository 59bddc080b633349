// Package objectstore persists verified audio artifacts. Two backends are
// provided: a local output directory and a MinIO bucket. Both key artifacts
// by pipeline stage plus the original input filename and honor the
// configured collision policy.
package objectstore

import (
	"context"
	"fmt"
)

// CollisionPolicy decides what happens when an artifact with the same key
// already exists. The historical behavior is overwrite; it is kept as the
// default but made an explicit, tunable choice.
type CollisionPolicy string

const (
	// Overwrite silently replaces the existing artifact.
	Overwrite CollisionPolicy = "overwrite"
	// Reject fails the write with ErrArtifactExists.
	Reject CollisionPolicy = "reject"
	// Rename stores the artifact under a numbered variant of the filename.
	Rename CollisionPolicy = "rename"
)

// Valid reports whether the policy is one of the supported values.
func (p CollisionPolicy) Valid() bool {
	switch p {
	case Overwrite, Reject, Rename:
		return true
	}
	return false
}

// ErrArtifactExists is returned under the Reject policy when the target key
// is already occupied.
var ErrArtifactExists = fmt.Errorf("artifact already exists")

// ArtifactStore writes one artifact per verified pipeline stage. Put returns
// the key the artifact was finally stored under, which differs from
// stage/filename only under the Rename policy. Implementations must be safe
// for concurrent use by independent pipeline tasks writing distinct keys.
type ArtifactStore interface {
	Put(ctx context.Context, stage, filename string, data []byte) (string, error)
}
