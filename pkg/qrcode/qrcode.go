package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator renders share links as PNG QR codes.
type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewGenerator creates a generator producing size x size images.
// level is one of L, M, Q, H and defaults to M.
func NewGenerator(size int, level string) *Generator {
	var recovery qrcode.RecoveryLevel
	switch level {
	case "L":
		recovery = qrcode.Low
	case "Q":
		recovery = qrcode.High
	case "H":
		recovery = qrcode.Highest
	default:
		recovery = qrcode.Medium
	}
	if size <= 0 {
		size = 256
	}
	return &Generator{size: size, level: recovery}
}

func (g *Generator) PNG(content string) ([]byte, error) {
	code, err := qrcode.New(content, g.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := code.PNG(g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
