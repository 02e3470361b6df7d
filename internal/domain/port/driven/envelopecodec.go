package driven

import "github.com/ericfisherdev/clipseal/internal/domain/model"

// EnvelopeCodec seals credentials into self-describing envelopes and opens
// them again under one configured key.
type EnvelopeCodec interface {
	// Seal encrypts the credential. Any failure wraps model.ErrEncryptionFailure.
	Seal(credential model.Credential) (model.Envelope, error)

	// Open decrypts and authenticates the envelope. Every failure, whether
	// malformed input, a wrong key or corrupted data, is reported as
	// model.ErrDecryptionFailure with no further detail, and no partial
	// plaintext is ever returned.
	Open(envelope model.Envelope) (model.Credential, error)
}
