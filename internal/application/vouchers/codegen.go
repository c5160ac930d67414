package vouchers

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/tu-usuario/wisp-core/internal/domain"
)

// Alfabetos por política de charset. Mismas cuatro políticas del generador
// original, con "mixed" en lugar de "random".
var charsets = map[string]string{
	CharsetUppercase: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	CharsetLowercase: "abcdefghijklmnopqrstuvwxyz",
	CharsetDigits:    "0123456789",
	CharsetMixed:     "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789",
}

// Políticas de charset aceptadas.
const (
	CharsetUppercase = "uppercase"
	CharsetLowercase = "lowercase"
	CharsetDigits    = "digits"
	CharsetMixed     = "mixed"
)

// randomCode genera un código de length caracteres del alfabeto indicado,
// con crypto/rand (los vouchers son secretos al portador).
func randomCode(length int, charset string) (string, error) {
	alphabet, ok := charsets[charset]
	if !ok {
		return "", fmt.Errorf("charset %q: %w", charset, domain.ErrInvalidInput)
	}
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("leer entropía: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
