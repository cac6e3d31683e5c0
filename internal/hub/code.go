package hub

import (
	"crypto/rand"
	"math/big"
)

// CodeLength is the size of a room code.
const CodeLength = 5

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces a random room code: uppercase alphanumeric, fixed
// length, human-typeable. Uniqueness is the hub's job, not the generator's.
func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := 0; i < CodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}
