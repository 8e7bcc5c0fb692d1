package velusqrt

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	sha256simd "github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// HybridKey pairs a CSIDH key with a classical secp256k1 key. The
// session key binds both shared secrets through HKDF-SHA256, so the
// exchange stays secure while either assumption holds.
type HybridKey struct {
	c     *CSIDH
	csidh []byte
	ec    *btcec.PrivateKey
}

// HybridPublic is the wire form of both public halves.
type HybridPublic struct {
	CSIDH []byte // affine coefficient, PublicKeySize bytes
	EC    []byte // compressed secp256k1 point, 33 bytes
}

// SessionKeySize is the width of the derived session key.
const SessionKeySize = 32

// NewHybridKey generates both halves on the given instance.
func NewHybridKey(c *CSIDH) (*HybridKey, error) {
	sk, err := c.SecretKey()
	if err != nil {
		return nil, err
	}
	ec, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &HybridKey{c: c, csidh: sk, ec: ec}, nil
}

// Public returns the public halves of the key.
func (k *HybridKey) Public() (HybridPublic, error) {
	pk, err := k.c.PublicKey(k.csidh)
	if err != nil {
		return HybridPublic{}, err
	}
	return HybridPublic{CSIDH: pk, EC: k.ec.PubKey().SerializeCompressed()}, nil
}

// Agree derives the SessionKeySize-byte session key from the peer's
// public halves. Errors from either half propagate; no partial key is
// ever returned.
func (k *HybridKey) Agree(peer HybridPublic, info []byte) ([]byte, error) {
	ss, err := k.c.DH(k.csidh, peer.CSIDH)
	if err != nil {
		return nil, err
	}
	ecPub, err := btcec.ParsePubKey(peer.EC)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	ecShared := btcec.GenerateSharedSecret(k.ec, ecPub)

	ikm := make([]byte, 0, len(ecShared)+len(ss))
	ikm = append(ikm, ecShared...)
	ikm = append(ikm, ss...)
	kdf := hkdf.New(sha256simd.New, ikm, nil, info)
	out := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, err
	}
	return out, nil
}
