package foxess

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// The cloud API joins the signature parts with the two characters
// backslash and 'r' followed by backslash and 'n', not an actual
// CR/LF pair.
const signatureSeparator = `\r\n`

// Signature computes the per-request signature the FoxESS cloud
// expects: MD5 over path, token and the decimal millisecond
// timestamp, rendered as 32 lowercase hex characters. Pass an empty
// token before authentication.
func Signature(path, token string, timestampMillis int64) string {
	input := strings.Join([]string{path, token, strconv.FormatInt(timestampMillis, 10)}, signatureSeparator)
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
