package service

import (
	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
)

// PasscodeGenerator produces fresh passcodes.
type PasscodeGenerator interface {
	Generate() string
}

// RandomPasscodes draws domain.PasscodeLength uniform decimal digits from
// crypto/rand.
type RandomPasscodes struct{}

func (RandomPasscodes) Generate() string {
	return cryptox.MustRandomDigits(domain.PasscodeLength)
}
