package security

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/baechuer/coursehub/internal/domain"
)

var otpSpace = big.NewInt(1_000_000)

// OTPGenerator draws uniform six-digit codes from a CSPRNG.
type OTPGenerator struct {
	src io.Reader
}

func NewOTPGenerator() *OTPGenerator {
	return &OTPGenerator{src: rand.Reader}
}

func (g *OTPGenerator) Generate() (string, error) {
	n, err := rand.Int(g.src, otpSpace)
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
