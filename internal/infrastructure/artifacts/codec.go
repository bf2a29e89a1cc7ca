package artifacts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

// Checksum is the hex SHA-256 of an artifact blob.
func Checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// verifyChecksum compares against a pinned digest; an empty pin accepts anything.
func verifyChecksum(kind constants.ArtifactKind, b []byte, pinned string) (string, error) {
	sum := Checksum(b)
	if pinned != "" && !strings.EqualFold(pinned, sum) {
		return "", errors.ErrArtifactLoad(kind, "checksum mismatch").
			WithMetadata("expected_sha256", pinned).
			WithMetadata("actual_sha256", sum)
	}
	return sum, nil
}

// DecodeTransform parses a transform artifact. Unknown fields are rejected.
func DecodeTransform(b []byte) (models.TransformSpec, error) {
	var spec models.TransformSpec
	if err := decodeStrict(b, &spec); err != nil {
		return spec, errors.ErrArtifactLoad(constants.ArtifactTransform, "malformed document").WithCause(err)
	}
	return spec, nil
}

// DecodeModel parses a model artifact. Unknown fields are rejected.
func DecodeModel(b []byte) (models.ModelSpec, error) {
	var spec models.ModelSpec
	if err := decodeStrict(b, &spec); err != nil {
		return spec, errors.ErrArtifactLoad(constants.ArtifactModel, "malformed document").WithCause(err)
	}
	return spec, nil
}

func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after document")
	}
	return nil
}
