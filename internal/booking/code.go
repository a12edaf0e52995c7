package booking

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const codePrefix = "HTL"

// CodeGenerator issues public booking codes of the form HTL + 10 upper-case
// hex characters, drawn from a version 4 UUID.
type CodeGenerator struct {
	maxAttempts int
	random      func() (string, error)
}

func NewCodeGenerator(maxAttempts int) *CodeGenerator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CodeGenerator{maxAttempts: maxAttempts, random: randomCode}
}

func randomCode() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	// The first five bytes of a v4 UUID carry no version or variant bits.
	return codePrefix + strings.ToUpper(hex.EncodeToString(u[:5])), nil
}

// Generate draws candidates until exists reports one as free. It gives up
// with ErrCodeExhausted after the configured number of attempts.
func (g *CodeGenerator) Generate(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := g.random()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted.Detail("%d attempts", g.maxAttempts)
}
