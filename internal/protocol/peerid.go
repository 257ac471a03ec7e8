package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dkeye/Office/internal/domain"
)

// Purpose tells apart the signaling identities a single user owns.
type Purpose string

const (
	PurposeScreenShare Purpose = "ss"
	PurposeConference  Purpose = "av"
)

var ErrBadPeerID = errors.New("bad peer id")

// EncodePeerID derives the signaling identity of uid for the given purpose.
// ASCII letters and digits are kept, every other byte becomes "_" plus two
// hex digits, so the transform is reversible and the result never contains
// the "-" separating the purpose suffix.
func EncodePeerID(uid domain.UserID, p Purpose) string {
	var b strings.Builder
	for i := 0; i < len(uid); i++ {
		c := uid[i]
		if isAlnum(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "_%02x", c)
	}
	b.WriteByte('-')
	b.WriteString(string(p))
	return b.String()
}

// DecodePeerID reverses EncodePeerID.
func DecodePeerID(peerID string) (domain.UserID, Purpose, error) {
	i := strings.LastIndexByte(peerID, '-')
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q has no purpose", ErrBadPeerID, peerID)
	}
	p := Purpose(peerID[i+1:])
	if p != PurposeScreenShare && p != PurposeConference {
		return "", "", fmt.Errorf("%w: unknown purpose %q", ErrBadPeerID, p)
	}

	enc := peerID[:i]
	var b strings.Builder
	for j := 0; j < len(enc); j++ {
		c := enc[j]
		switch {
		case isAlnum(c):
			b.WriteByte(c)
		case c == '_' && j+2 < len(enc):
			v, err := strconv.ParseUint(enc[j+1:j+3], 16, 8)
			if err != nil {
				return "", "", fmt.Errorf("%w: %v", ErrBadPeerID, err)
			}
			b.WriteByte(byte(v))
			j += 2
		default:
			return "", "", fmt.Errorf("%w: unexpected %q", ErrBadPeerID, c)
		}
	}
	if b.Len() == 0 {
		return "", "", fmt.Errorf("%w: empty id", ErrBadPeerID)
	}
	return domain.UserID(b.String()), p, nil
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
